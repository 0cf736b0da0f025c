package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_booking_attempts_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	bookingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seat_booking_duration_seconds",
			Help:    "Time from lock request to commit or rollback of a booking",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"outcome"},
	)

	reviewsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_reviews_recorded_total",
			Help: "Stored reviews by overall rating",
		},
		[]string{"rating"},
	)

	eventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_event_publish_failures_total",
			Help: "Domain events that could not be handed to the broker",
		},
		[]string{"event"},
	)

	httpRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// TrackBooking records the outcome of one booking attempt and how long it
// held (or waited for) the seat lock.
func TrackBooking(outcome string, d time.Duration) {
	bookingAttempts.WithLabelValues(outcome).Inc()
	bookingDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// TrackReview counts a stored review.
func TrackReview(rating string) {
	reviewsRecorded.WithLabelValues(rating).Inc()
}

// TrackPublishFailure counts an event that was dropped.
func TrackPublishFailure(event string) {
	eventPublishFailures.WithLabelValues(event).Inc()
}

// TrackRequest observes one served HTTP request.
func TrackRequest(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
