package ports

import (
	"context"

	"github.com/samirrijal/eiremap/internal/core/domain"
)

// PlaceSource fetches the two remote catalog documents. The calls are
// independent; callers may issue them concurrently.
type PlaceSource interface {
	FetchPlaces(ctx context.Context) ([]domain.Place, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}
