package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the transaction core. Components
// accept a nil *Metrics and skip recording, which keeps tests quiet.
type Metrics struct {
	// Sequencer & dispatch
	EventsPublished *prometheus.CounterVec
	EventsProcessed *prometheus.CounterVec
	EventsDuplicate *prometheus.CounterVec
	ProcessorErrors *prometheus.CounterVec
	ProcessDuration *prometheus.HistogramVec
	SequencerDepth  prometheus.Gauge
	SequencerFree   prometheus.Gauge

	// Fan-out & caches
	ResultsFanned    prometheus.Counter
	FanoutEntityErrs *prometheus.CounterVec
	FlushBatchSize   *prometheus.HistogramVec
	FlushDuration    *prometheus.HistogramVec
	StoreErrors      *prometheus.CounterVec
	NotifyErrors     *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on the default registry.
func NewMetrics() *Metrics {
	durationBuckets := []float64{
		0.00001, 0.000025, 0.00005, 0.0001, 0.00025,
		0.0005, 0.001, 0.002, 0.005, 0.01, 0.05,
	}

	return &Metrics{
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "exc_events_published_total",
			Help: "Events accepted by the sequencer",
		}, []string{"family"}),

		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "exc_events_processed_total",
			Help: "Events dispatched to a domain processor",
		}, []string{"family", "operation"}),

		EventsDuplicate: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "exc_events_duplicate_total",
			Help: "Events skipped by the dedup cache",
		}, []string{"family"}),

		ProcessorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "exc_processor_errors_total",
			Help: "Domain processor failures (validation errors and panics)",
		}, []string{"family"}),

		ProcessDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exc_process_duration_seconds",
			Help:    "Time to process one event in the dispatcher",
			Buckets: durationBuckets,
		}, []string{"family"}),

		SequencerDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "exc_sequencer_depth",
			Help: "Events waiting in the sequencer",
		}),

		SequencerFree: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "exc_sequencer_remaining_capacity",
			Help: "Free slots in the sequencer ring",
		}),

		ResultsFanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "exc_results_fanned_total",
			Help: "Process results consumed by the output workers",
		}),

		FanoutEntityErrs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "exc_fanout_entity_errors_total",
			Help: "Per-entity staging/notification failures in the fan-out",
		}, []string{"entity"}),

		FlushBatchSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exc_flush_batch_size",
			Help:    "Entities written per cache flush",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"cache"}),

		FlushDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exc_flush_duration_seconds",
			Help:    "Time to flush one cache batch to the store",
			Buckets: durationBuckets,
		}, []string{"cache"}),

		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "exc_store_errors_total",
			Help: "Durable store write failures (batch dropped, system live)",
		}, []string{"cache"}),

		NotifyErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "exc_notify_errors_total",
			Help: "Notification channel failures (logged, never propagated)",
		}, []string{"family"}),
	}
}
