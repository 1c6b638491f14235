package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/eiremap/internal/adapters/valkey"
	"github.com/samirrijal/eiremap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Catalog *usecases.CatalogService
	NATS    *nats.Conn    // nil disables the WebSocket relay
	Cache   *valkey.Cache // nil when caching is disabled

	// NearbyThreshold is used when a request omits ?threshold, in degrees.
	NearbyThreshold float64
}
