package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/eiremap/internal/pkg/metrics"
)

const (
	queryTimeout  = 15 * time.Second
	reloadTimeout = 30 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/status", StatusHandler(deps))
	v1.Get("/region", RegionHandler(deps))
	v1.Get("/categories", ListCategoriesHandler(deps))
	v1.Get("/categories/:id", GetCategoryHandler(deps))
	v1.Get("/places", ListPlacesHandler(deps))
	v1.Get("/places/nearby", timeout.NewWithContext(NearbyPlacesHandler(deps), queryTimeout))
	v1.Get("/places/:id", GetPlaceHandler(deps))
	v1.Get("/places/:id/callout", CalloutHandler(deps))
	v1.Get("/places/:id/nearby", PlaceNeighborsHandler(deps))
	v1.Get("/markers", ListMarkersHandler(deps))
	v1.Post("/markers", timeout.NewWithContext(AddMarkerHandler(deps), queryTimeout))
	v1.Delete("/markers/:id", timeout.NewWithContext(DeleteMarkerHandler(deps), queryTimeout))
	v1.Post("/catalog/reload", timeout.NewWithContext(ReloadHandler(deps), reloadTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
