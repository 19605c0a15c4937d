// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_store_mutations_total",
			Help: "Record store mutations by operation and result",
		},
		[]string{"op", "result"},
	)

	StorePersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_store_persist_duration_seconds",
			Help:    "Time spent writing the record list to durable storage",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"backend"},
	)

	StoreRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_store_records",
			Help: "Number of application records currently held",
		},
	)

	StoreLoadFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_store_load_fallbacks_total",
			Help: "Times the store fell back to the bundled dataset at startup",
		},
		[]string{"reason"},
	)

	CodecOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_codec_operations_total",
			Help: "Import and export operations by direction, format and result",
		},
		[]string{"direction", "format", "result"},
	)

	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_admin_logins_total",
			Help: "Admin gate login attempts by result",
		},
		[]string{"result"},
	)
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ResultOf maps an error onto a result label.
func ResultOf(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
