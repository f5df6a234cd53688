package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"traffic-monitor/internal/aggregate"
	"traffic-monitor/internal/domain/traffic"
	"traffic-monitor/internal/metrics"
)

type IncidentLister interface {
	ListAll(ctx context.Context) ([]traffic.IncidentRecord, error)
	FindByCenterID(ctx context.Context, centerID string) ([]traffic.IncidentRecord, error)
}

type DashboardService struct {
	store   IncidentLister
	timeout time.Duration
	log     zerolog.Logger
}

func NewDashboardService(store IncidentLister, timeout time.Duration, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		store:   store,
		timeout: timeout,
		log:     log.With().Str("component", "dashboard").Logger(),
	}
}

// Records returns the raw current snapshot, one record per center.
func (s *DashboardService) Records(ctx context.Context) ([]traffic.IncidentRecord, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	recs, err := s.store.ListAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list incident records")
		return nil, storeError("list incident records", err)
	}
	return recs, nil
}

// Summary fetches the whole snapshot and aggregates it under filter.
func (s *DashboardService) Summary(ctx context.Context, filter traffic.Filter) (aggregate.Summary, error) {
	recs, err := s.Records(ctx)
	if err != nil {
		return aggregate.Summary{}, err
	}

	metrics.AggregatedRecords.Observe(float64(len(recs)))
	summary, err := aggregate.Aggregate(recs, filter)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("zone", filter.Zone).
			Str("center_id", filter.CenterID).
			Msg("failed to aggregate incident records")
		return aggregate.Summary{}, err
	}

	s.log.Debug().
		Int("records", len(recs)).
		Int("centers", len(summary.Centers)).
		Str("zone", filter.Zone).
		Str("center_id", filter.CenterID).
		Msg("dashboard summary built")
	return summary, nil
}

// Center aggregates only the records of one center. ok is false when the
// center has no records.
func (s *DashboardService) Center(ctx context.Context, centerID string) (center aggregate.CenterAggregate, ok bool, err error) {
	if centerID == "" {
		return aggregate.CenterAggregate{}, false, fmt.Errorf("%w: centerId is required", ErrInvalidInput)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	recs, err := s.store.FindByCenterID(ctx, centerID)
	if err != nil {
		s.log.Error().Err(err).Str("center_id", centerID).Msg("failed to load center records")
		return aggregate.CenterAggregate{}, false, storeError("load center records", err)
	}
	if len(recs) == 0 {
		return aggregate.CenterAggregate{}, false, nil
	}

	summary, err := aggregate.Aggregate(recs, traffic.Filter{Zone: traffic.AllSentinel, CenterID: centerID})
	if err != nil {
		return aggregate.CenterAggregate{}, false, err
	}
	center, ok = summary.Center(centerID)
	return center, ok, nil
}
