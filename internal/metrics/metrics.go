package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

var (
	StoreQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "traffic_store_query_duration_seconds",
		Help:    "Duration of store reads by operation",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"operation"})
	StoreQueryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "traffic_store_query_errors_total",
		Help: "Store reads that failed, including timeouts",
	}, []string{"operation"})
	CenterLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "traffic_center_lookups_total",
		Help: "Center lookups by coordinate, by outcome",
	}, []string{"result"})
	AggregatedRecords = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "traffic_aggregated_records",
		Help:    "Number of incident records fed to one aggregation",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(StoreQueryDuration)
	prometheus.MustRegister(StoreQueryErrors)
	prometheus.MustRegister(CenterLookups)
	prometheus.MustRegister(AggregatedRecords)
}

// ObserveStoreQuery records the duration of one store read started at start
// and counts it as failed when err is non-nil.
func ObserveStoreQuery(operation string, start time.Time, err error) {
	StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation).Inc()
	}
}

func Handler() http.Handler { return promhttp.Handler() }
