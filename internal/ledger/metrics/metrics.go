package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
type Metrics struct {
	ProductsCreated     prometheus.Counter
	EventsRecorded      *prometheus.CounterVec
	RecordEventDuration prometheus.Histogram
	TracesServed        prometheus.Counter
}

// New creates a Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		ProductsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "supplytrack_products_created_total",
			Help: "Total number of products created",
		}),
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "supplytrack_events_recorded_total",
			Help: "Total number of ledger events recorded, by event type",
		}, []string{"event_type"}),
		RecordEventDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "supplytrack_record_event_duration_seconds",
			Help:    "Duration of RecordEvent operations (append plus projection)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		TracesServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "supplytrack_traces_served_total",
			Help: "Total number of product traces served",
		}),
	}
}

// IncrementProductsCreated records a successful product creation.
func (m *Metrics) IncrementProductsCreated() {
	m.ProductsCreated.Inc()
}

// IncrementEventsRecorded records a successfully appended event.
func (m *Metrics) IncrementEventsRecorded(eventType string) {
	m.EventsRecorded.WithLabelValues(eventType).Inc()
}

// ObserveRecordEvent records the duration of a RecordEvent operation. Call
// with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveRecordEvent(start time.Time) {
	m.RecordEventDuration.Observe(time.Since(start).Seconds())
}

// IncrementTracesServed records a served trace read.
func (m *Metrics) IncrementTracesServed() {
	m.TracesServed.Inc()
}
