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
		Namespace: "eiremap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eiremap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eiremap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Catalog metrics
	DocumentLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eiremap",
		Subsystem: "catalog",
		Name:      "document_loads_total",
		Help:      "Remote document loads by outcome",
	}, []string{"document", "result"})

	DocumentFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eiremap",
		Subsystem: "catalog",
		Name:      "document_fetch_duration_seconds",
		Help:      "Duration of remote document fetches",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"document"})

	CatalogPlaces = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eiremap",
		Subsystem: "catalog",
		Name:      "places",
		Help:      "Places in the current catalog snapshot, custom markers included",
	})

	CatalogCategories = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eiremap",
		Subsystem: "catalog",
		Name:      "categories",
		Help:      "Categories in the current catalog snapshot",
	})

	CustomMarkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eiremap",
		Subsystem: "catalog",
		Name:      "custom_markers",
		Help:      "User-dropped markers in the current catalog snapshot",
	})

	ProximityQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eiremap",
		Subsystem: "catalog",
		Name:      "proximity_query_duration_seconds",
		Help:      "Latency of degree-box proximity queries",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eiremap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eiremap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eiremap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
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
