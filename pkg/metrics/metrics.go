package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Records service client metrics
	RemoteRequests *prometheus.CounterVec
	RemoteLatency  *prometheus.HistogramVec
	RemoteFailures *prometheus.CounterVec

	// Poller metrics
	PollerSweeps       prometheus.Counter
	PollerRefreshes    prometheus.Counter
	PollerTransitions  *prometheus.CounterVec
	PollerSweepLatency prometheus.Histogram

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		RemoteRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "remote_requests_total",
			Help:      "Total number of requests sent to the records service",
		}, []string{"operation", "status"}),
		RemoteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of records service requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		RemoteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "remote_failures_total",
			Help:      "Total number of failed records service requests",
		}, []string{"operation", "kind"}),

		PollerSweeps: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poller_sweeps_total",
			Help:      "Total number of poller sweeps over unfinished exams",
		}),
		PollerRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poller_refreshes_total",
			Help:      "Total number of exam status refreshes issued by the poller",
		}),
		PollerTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poller_transitions_total",
			Help:      "Exam status transitions observed by the poller",
		}, []string{"status"}),
		PollerSweepLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poller_sweep_duration_seconds",
			Help:      "Time spent per poller sweep",
			Buckets:   prometheus.DefBuckets,
		}),

		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_published_total",
			Help:      "Lifecycle events published to the broker",
		}, []string{"event_type"}),
		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_failed_total",
			Help:      "Lifecycle events that could not be published",
		}, []string{"event_type"}),
	}
}
