package ports

import (
	"context"

	"github.com/samirrijal/eiremap/internal/core/domain"
)

// EventPublisher publishes catalog changes to a message broker.
type EventPublisher interface {
	PublishCatalogEvent(ctx context.Context, event *domain.CatalogEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
