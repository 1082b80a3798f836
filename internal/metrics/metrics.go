package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hanapp",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hanapp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hanapp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	otpSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hanapp",
			Subsystem: "otp",
			Name:      "sends_total",
			Help:      "OTP send attempts by outcome.",
		},
		[]string{"result"},
	)

	otpVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hanapp",
			Subsystem: "otp",
			Name:      "verifications_total",
			Help:      "OTP verification attempts by outcome.",
		},
		[]string{"result"},
	)

	otpCleaned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hanapp",
			Subsystem: "otp",
			Name:      "cleaned_rows_total",
			Help:      "Expired OTP rows removed by the cleanup job.",
		},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hanapp",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events handed to the publisher.",
		},
		[]string{"type", "success"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		otpSends,
		otpVerifications,
		otpCleaned,
		eventsPublished,
	)
}

// Handler serves the registry in the Prometheus text format
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latencies per matched route
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if coder, ok := err.(interface{ StatusCode() int }); ok {
				status = coder.StatusCode()
			}
		}
		// route template keeps label cardinality bounded
		path := c.Route().Path
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

func RecordOTPSend(result string) {
	otpSends.WithLabelValues(result).Inc()
}

func RecordOTPVerification(result string) {
	otpVerifications.WithLabelValues(result).Inc()
}

func RecordOTPCleanup(rows int64) {
	otpCleaned.Add(float64(rows))
}

func RecordEventPublished(eventType string, success bool) {
	eventsPublished.WithLabelValues(eventType, strconv.FormatBool(success)).Inc()
}
