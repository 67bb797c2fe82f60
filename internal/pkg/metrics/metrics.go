package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pinmeasure",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pinmeasure",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pinmeasure",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Measurement metrics
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pinmeasure",
		Subsystem: "session",
		Name:      "commands_total",
		Help:      "Total commands applied to sessions",
	}, []string{"type"})

	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pinmeasure",
		Subsystem: "session",
		Name:      "command_errors_total",
		Help:      "Total commands rejected",
	}, []string{"type"})

	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pinmeasure",
		Subsystem: "session",
		Name:      "created_total",
		Help:      "Total sessions created",
	})

	SessionsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pinmeasure",
		Subsystem: "session",
		Name:      "deleted_total",
		Help:      "Total sessions deleted explicitly",
	})

	SessionPoints = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pinmeasure",
		Subsystem: "session",
		Name:      "points",
		Help:      "Number of pins in a session after each command",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 50, 100},
	}, []string{"mode"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pinmeasure",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pinmeasure",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total session store hits",
	}, []string{"backend"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pinmeasure",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total session store misses",
	}, []string{"backend"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// route pattern, not the raw path, keeps session ids out of labels
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
