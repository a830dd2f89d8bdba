package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_reservations_total",
		Help: "Total number of ticket reservation attempts by outcome.",
	}, []string{"outcome"})

	ticketsReservedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_reserved_total",
		Help: "Total number of tickets taken out of inventory.",
	})

	cancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_cancellations_total",
		Help: "Total number of booking cancellation attempts by outcome.",
	}, []string{"outcome"})

	ticketsRefundedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_refunded_total",
		Help: "Total number of tickets credited back to inventory.",
	})

	eventStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_status_transitions_total",
		Help: "Total number of admin status transitions by target status.",
	}, []string{"status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})
)

// RecordReservation records a reservation attempt. reason is "success" or the
// failure class.
func RecordReservation(outcome string, tickets int) {
	reservationsTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		ticketsReservedTotal.Add(float64(tickets))
	}
}

// RecordCancellation records a cancellation attempt and the refunded count.
func RecordCancellation(outcome string, refunded int) {
	cancellationsTotal.WithLabelValues(outcome).Inc()
	if refunded > 0 {
		ticketsRefundedTotal.Add(float64(refunded))
	}
}

// RecordStatusTransition records an admin-driven event status change.
func RecordStatusTransition(status string) {
	eventStatusTransitionsTotal.WithLabelValues(status).Inc()
}

// Middleware observes request durations per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
