package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduling engine metrics
	BookingAttempts   prometheus.Counter
	Rejections        *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	Reschedules       prometheus.Counter
	LockContention    prometheus.Counter
	SchedulingLatency *prometheus.HistogramVec

	// Notification metrics
	NotificationsDispatched *prometheus.CounterVec
	NotificationFailures    prometheus.Counter

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		BookingAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_attempts_total",
			Help:      "Total number of booking attempts",
		}),
		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduling_rejections_total",
			Help:      "Scheduling operations rejected, by reason",
		}, []string{"reason"}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Accepted appointment status transitions, by target status",
		}, []string{"status"}),
		Reschedules: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reschedules_total",
			Help:      "Total number of accepted reschedules",
		}),
		LockContention: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doctor_lock_contention_total",
			Help:      "Booking or reschedule attempts that failed to acquire the doctor lock",
		}),
		SchedulingLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduling_operation_duration_seconds",
			Help:      "Time spent in scheduling engine operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		NotificationsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Notifications created, by type",
		}, []string{"type"}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notification persist or publish failures (best effort, never escalated)",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}
