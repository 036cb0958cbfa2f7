package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BoardOperations counts lifecycle operations applied to the board.
	BoardOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablero_board_operations_total",
			Help: "Total number of board lifecycle operations applied",
		},
		[]string{"operation"},
	)

	// PersistDuration tracks how long collection writes take.
	PersistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablero_persist_duration_seconds",
			Help:    "Collection persistence duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"key"},
	)

	// PersistFailures counts collection writes that returned an error.
	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablero_persist_failures_total",
			Help: "Total number of failed collection writes",
		},
		[]string{"key"},
	)
)

// IncBoardOperation records one applied lifecycle operation.
func IncBoardOperation(operation string) {
	BoardOperations.WithLabelValues(operation).Inc()
}

// ObservePersist records the duration of a successful collection write.
func ObservePersist(key string, duration time.Duration) {
	PersistDuration.WithLabelValues(key).Observe(duration.Seconds())
}

// IncPersistFailure records a failed collection write.
func IncPersistFailure(key string) {
	PersistFailures.WithLabelValues(key).Inc()
}
