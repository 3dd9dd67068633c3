package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the item service collectors. A nil *Metrics records nothing.
type Metrics struct {
	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Item metrics
	ItemOperationsCounter *prometheus.CounterVec

	// Query metrics, labelled by the filter that served the list request
	ItemQueriesCounter *prometheus.CounterVec
}

// InitMetrics creates the item service collectors on reg using prefix
func InitMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		ItemOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_item_operations_total",
				Help: "Total number of item operations",
			},
			[]string{"operation"},
		),
		ItemQueriesCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_item_queries_total",
				Help: "Total number of item list queries by filter",
			},
			[]string{"filter"},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		m.DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordItemOperation increments the counter for item operations
func (m *Metrics) RecordItemOperation(operation string) {
	if m == nil {
		return
	}
	m.ItemOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordItemQuery increments the counter for list queries served by filter
func (m *Metrics) RecordItemQuery(filter string) {
	if m == nil {
		return
	}
	m.ItemQueriesCounter.WithLabelValues(filter).Inc()
}
