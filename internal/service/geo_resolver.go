package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"traffic-monitor/internal/domain/traffic"
	"traffic-monitor/internal/metrics"
)

type CenterLocator interface {
	FindByCoordinate(ctx context.Context, c traffic.Coordinate) (*traffic.IncidentRecord, error)
}

// GeoResolver re-identifies an enforcement center from the coordinates of
// its map marker. Every call goes to the store.
type GeoResolver struct {
	store   CenterLocator
	timeout time.Duration
	log     zerolog.Logger
}

func NewGeoResolver(store CenterLocator, timeout time.Duration, log zerolog.Logger) *GeoResolver {
	return &GeoResolver{
		store:   store,
		timeout: timeout,
		log:     log.With().Str("component", "geo_resolver").Logger(),
	}
}

// ResolveCenter returns the record stored at c, within CenterMatchTolerance on
// each axis. ok is false when no center matches.
func (s *GeoResolver) ResolveCenter(ctx context.Context, c traffic.Coordinate) (view traffic.CenterView, ok bool, err error) {
	if err := c.Validate(); err != nil {
		return traffic.CenterView{}, false, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.store.FindByCoordinate(ctx, c)
	if err != nil {
		metrics.CenterLookups.WithLabelValues(metrics.LookupError).Inc()
		s.log.Error().
			Err(err).
			Float64("lat", c.Lat).
			Float64("lng", c.Lng).
			Msg("failed to find center by coordinate")
		return traffic.CenterView{}, false, storeError("find center by coordinate", err)
	}
	if rec == nil {
		metrics.CenterLookups.WithLabelValues(metrics.LookupNotFound).Inc()
		s.log.Debug().
			Float64("lat", c.Lat).
			Float64("lng", c.Lng).
			Msg("no center at coordinate")
		return traffic.CenterView{}, false, nil
	}

	metrics.CenterLookups.WithLabelValues(metrics.LookupFound).Inc()
	s.log.Debug().
		Str("center_id", rec.CenterID).
		Str("zone", rec.Location.Zone).
		Msg("center resolved")
	return traffic.NewCenterView(*rec), true, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
