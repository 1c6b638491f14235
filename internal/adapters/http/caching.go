package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

// cacheControlFor picks a policy per endpoint. Anything that changes when a
// marker is dropped or the catalog reloads is never cached by clients.
func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics" || path == "/v1/status":
		return "no-cache"
	case path == "/v1/region":
		return "public, max-age=3600"
	case strings.HasPrefix(path, "/v1/categories"):
		return "public, max-age=300"
	case strings.HasPrefix(path, "/v1/places"), strings.HasPrefix(path, "/v1/markers"):
		return "no-cache" // revalidate through the ETag
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	}
	return ""
}
