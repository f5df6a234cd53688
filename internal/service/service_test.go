package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"traffic-monitor/internal/domain/traffic"
	"traffic-monitor/internal/metrics"
)

type fakeIncidentStore struct {
	records []traffic.IncidentRecord
	err     error
	delay   bool
	calls   int
}

func (f *fakeIncidentStore) FindByCoordinate(ctx context.Context, c traffic.Coordinate) (*traffic.IncidentRecord, error) {
	f.calls++
	if f.delay {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		r := f.records[i]
		if c.Matches(r.Location.Latitude, r.Location.Longitude) {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeIncidentStore) ListAll(ctx context.Context) ([]traffic.IncidentRecord, error) {
	f.calls++
	if f.delay {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeIncidentStore) FindByCenterID(ctx context.Context, centerID string) ([]traffic.IncidentRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []traffic.IncidentRecord
	for _, r := range f.records {
		if r.CenterID == centerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func sampleRecord(centerID, zone string, lat, lng float64, violations int64) traffic.IncidentRecord {
	return traffic.IncidentRecord{
		CenterID:   centerID,
		Location:   traffic.Location{Zone: zone, District: 3, Latitude: lat, Longitude: lng},
		Violations: &traffic.Violations{Total: traffic.IntPtr(violations), Reported: traffic.IntPtr(1)},
		Challans: &traffic.Challans{
			Total:           traffic.IntPtr(2),
			CollectedAmount: traffic.FloatPtr(1000),
		},
		Accidents: &traffic.Accidents{Today: traffic.IntPtr(0), Overall: traffic.IntPtr(5)},
	}
}

func TestGeoResolver_PointMatch(t *testing.T) {
	store := &fakeIncidentStore{records: []traffic.IncidentRecord{
		sampleRecord("PUN-01", "West", 18.5, 73.85, 10),
		sampleRecord("PUN-02", "East", 18.52, 73.9, 4),
	}}
	r := NewGeoResolver(store, time.Second, zerolog.Nop())

	view, ok, err := r.ResolveCenter(context.Background(), traffic.Coordinate{Lat: 18.500005, Lng: 73.850005})
	if err != nil {
		t.Fatalf("ResolveCenter() error = %v", err)
	}
	if !ok {
		t.Fatal("ResolveCenter() did not find the center within tolerance")
	}
	if view.CenterID != "PUN-01" || view.Violations.Total != 10 || view.Challans.Breakdown.CollectedAmount != 1000 {
		t.Errorf("view = %+v", view)
	}

	_, ok, err = r.ResolveCenter(context.Background(), traffic.Coordinate{Lat: 18.6, Lng: 73.85})
	if err != nil {
		t.Fatalf("ResolveCenter() error = %v", err)
	}
	if ok {
		t.Error("ResolveCenter() matched a coordinate outside tolerance")
	}
}

func TestGeoResolver_Deterministic(t *testing.T) {
	store := &fakeIncidentStore{records: []traffic.IncidentRecord{sampleRecord("PUN-01", "West", 18.5, 73.85, 10)}}
	r := NewGeoResolver(store, time.Second, zerolog.Nop())
	c := traffic.Coordinate{Lat: 18.5, Lng: 73.85}

	first, _, err := r.ResolveCenter(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := r.ResolveCenter(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2 (no caching)", store.calls)
	}
}

func TestGeoResolver_Errors(t *testing.T) {
	t.Run("invalid coordinate", func(t *testing.T) {
		store := &fakeIncidentStore{}
		r := NewGeoResolver(store, time.Second, zerolog.Nop())
		_, _, err := r.ResolveCenter(context.Background(), traffic.Coordinate{Lat: math.NaN(), Lng: 73.85})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
		if store.calls != 0 {
			t.Error("store queried for an invalid coordinate")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.CenterLookups.WithLabelValues(metrics.LookupError))
		store := &fakeIncidentStore{err: errors.New("connection reset")}
		r := NewGeoResolver(store, time.Second, zerolog.Nop())

		_, ok, err := r.ResolveCenter(context.Background(), traffic.Coordinate{Lat: 1, Lng: 1})
		if !errors.Is(err, ErrStore) || ok {
			t.Errorf("got ok=%v err=%v, want ErrStore", ok, err)
		}
		after := testutil.ToFloat64(metrics.CenterLookups.WithLabelValues(metrics.LookupError))
		if after != before+1 {
			t.Errorf("error lookups went from %v to %v", before, after)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		store := &fakeIncidentStore{delay: true}
		r := NewGeoResolver(store, 10*time.Millisecond, zerolog.Nop())

		_, _, err := r.ResolveCenter(context.Background(), traffic.Coordinate{Lat: 1, Lng: 1})
		if !errors.Is(err, ErrStore) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("error = %v, want ErrStore wrapping DeadlineExceeded", err)
		}
		if !strings.Contains(err.Error(), "timed out") {
			t.Errorf("error %q does not mention the timeout", err)
		}
	})
}

func TestDashboardService_Summary(t *testing.T) {
	store := &fakeIncidentStore{records: []traffic.IncidentRecord{
		sampleRecord("A", "North", 1, 1, 10),
		sampleRecord("B", "North", 2, 2, 5),
		sampleRecord("C", "South", 3, 3, 1),
	}}
	s := NewDashboardService(store, time.Second, zerolog.Nop())

	summary, err := s.Summary(context.Background(), traffic.Filter{Zone: "North", CenterID: traffic.AllSentinel})
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Totals.Violations != 15 {
		t.Errorf("Totals.Violations = %d, want 15", summary.Totals.Violations)
	}
	if !reflect.DeepEqual(summary.Zones, []string{"North", "South"}) {
		t.Errorf("Zones = %v", summary.Zones)
	}
}

func TestDashboardService_MalformedRecord(t *testing.T) {
	bad := sampleRecord("B", "North", 2, 2, 5)
	bad.Accidents = nil
	store := &fakeIncidentStore{records: []traffic.IncidentRecord{sampleRecord("A", "North", 1, 1, 10), bad}}
	s := NewDashboardService(store, time.Second, zerolog.Nop())

	_, err := s.Summary(context.Background(), traffic.AllFilter())
	if !errors.Is(err, traffic.ErrMalformedRecord) {
		t.Errorf("error = %v, want ErrMalformedRecord", err)
	}
	if errors.Is(err, ErrStore) {
		t.Error("malformed record must not be reported as a store error")
	}
}

func TestDashboardService_StoreErrors(t *testing.T) {
	s := NewDashboardService(&fakeIncidentStore{err: errors.New("boom")}, time.Second, zerolog.Nop())
	if _, err := s.Records(context.Background()); !errors.Is(err, ErrStore) {
		t.Errorf("Records() error = %v, want ErrStore", err)
	}
	if _, err := s.Summary(context.Background(), traffic.AllFilter()); !errors.Is(err, ErrStore) {
		t.Errorf("Summary() error = %v, want ErrStore", err)
	}

	slow := NewDashboardService(&fakeIncidentStore{delay: true}, 10*time.Millisecond, zerolog.Nop())
	if _, err := slow.Records(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Records() error = %v, want DeadlineExceeded", err)
	}
}

func TestDashboardService_Center(t *testing.T) {
	store := &fakeIncidentStore{records: []traffic.IncidentRecord{
		sampleRecord("A", "North", 1, 1, 10),
		sampleRecord("A", "North", 1, 1, 3),
		sampleRecord("B", "South", 2, 2, 5),
	}}
	s := NewDashboardService(store, time.Second, zerolog.Nop())

	c, ok, err := s.Center(context.Background(), "A")
	if err != nil || !ok {
		t.Fatalf("Center(A) = %v, %v", ok, err)
	}
	if c.Violations.Total != 13 || c.Records != 2 {
		t.Errorf("Center(A) = %+v", c)
	}

	if _, ok, err := s.Center(context.Background(), "Z"); err != nil || ok {
		t.Errorf("Center(Z) = %v, %v; want not found", ok, err)
	}
	if _, _, err := s.Center(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Center(\"\") error = %v, want ErrInvalidInput", err)
	}
}
