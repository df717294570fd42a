package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stallbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stallbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stallbook_bookings_created_total",
			Help: "Total number of bookings created",
		},
		[]string{"status"},
	)

	BookingConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stallbook_booking_conflicts_total",
			Help: "Total number of booking attempts rejected by the overlap check",
		},
	)

	BookingRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stallbook_booking_tx_retries_total",
			Help: "Total number of serialization retries during booking creation",
		},
	)

	BookingStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stallbook_booking_status_changes_total",
			Help: "Total number of booking status transitions",
		},
		[]string{"status"},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stallbook_notifications_queued_total",
			Help: "Total number of notifications queued",
		},
		[]string{"type"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stallbook_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingCreated(status string) {
	BookingsCreatedTotal.WithLabelValues(status).Inc()
}

func RecordBookingConflict() {
	BookingConflictsTotal.Inc()
}

func RecordBookingRetry() {
	BookingRetriesTotal.Inc()
}

func RecordStatusChange(status string) {
	BookingStatusChangesTotal.WithLabelValues(status).Inc()
}

func RecordNotificationQueued(notificationType string) {
	NotificationsQueuedTotal.WithLabelValues(notificationType).Inc()
}
