package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/eiremap/internal/core/catalog"
	"github.com/samirrijal/eiremap/internal/core/domain"
	"github.com/samirrijal/eiremap/internal/core/ports"
	"github.com/samirrijal/eiremap/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/eiremap/internal/core/usecases")

// CatalogOptions carries presentation defaults for the map.
type CatalogOptions struct {
	PlaceholderImage string
	Region           domain.Region
	CacheTTLSeconds  int
}

// CatalogService owns the place catalog and answers the map's queries.
type CatalogService struct {
	store     *catalog.Store
	source    ports.PlaceSource
	cache     ports.CacheService
	publisher ports.EventPublisher
	opts      CatalogOptions
}

// NewCatalogService creates a new CatalogService. cache and publisher may be nil.
func NewCatalogService(source ports.PlaceSource, cache ports.CacheService, publisher ports.EventPublisher, opts CatalogOptions) *CatalogService {
	if opts.CacheTTLSeconds <= 0 {
		opts.CacheTTLSeconds = 300
	}
	return &CatalogService{
		store:     catalog.NewStore(),
		source:    source,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
	}
}

// Load fetches both documents concurrently. Each one is applied as soon as it
// arrives; a failure keeps the previous value and is only logged and
// reflected in Status. Load returns once both fetches have settled.
func (s *CatalogService) Load(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "catalog.load")
	defer span.End()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loadPlaces(ctx)
	}()
	go func() {
		defer wg.Done()
		s.loadCategories(ctx)
	}()
	wg.Wait()

	span.SetAttributes(attribute.String("catalog.status", string(s.Status().Overall())))
}

func (s *CatalogService) loadPlaces(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "catalog.load.places")
	defer span.End()

	start := time.Now()
	places, err := s.source.FetchPlaces(ctx)
	metrics.DocumentFetchDuration.WithLabelValues("places").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.DocumentLoads.WithLabelValues("places", "failed").Inc()
		slog.Error("places load failed", "error", err)

		snap := s.store.FailPlaces(err)
		s.publish(ctx, &domain.CatalogEvent{Kind: domain.EventPlacesFailed, Revision: snap.Revision, Error: err.Error()})
		return
	}

	snap, dropped := s.store.ApplyPlaces(places)
	if dropped > 0 {
		slog.Warn("dropped places with duplicate ids", "dropped", dropped)
	}
	span.SetAttributes(attribute.Int("catalog.places", len(places)-dropped))
	metrics.DocumentLoads.WithLabelValues("places", "ready").Inc()
	s.observe(snap)
	slog.Info("places loaded", "count", len(places)-dropped, "revision", snap.Revision)

	s.publish(ctx, &domain.CatalogEvent{Kind: domain.EventPlacesLoaded, Revision: snap.Revision, Count: len(places) - dropped})
}

func (s *CatalogService) loadCategories(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "catalog.load.categories")
	defer span.End()

	start := time.Now()
	cats, err := s.source.FetchCategories(ctx)
	metrics.DocumentFetchDuration.WithLabelValues("categories").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.DocumentLoads.WithLabelValues("categories", "failed").Inc()
		slog.Error("categories load failed", "error", err)

		snap := s.store.FailCategories(err)
		s.publish(ctx, &domain.CatalogEvent{Kind: domain.EventCategoriesFailed, Revision: snap.Revision, Error: err.Error()})
		return
	}

	snap, dropped := s.store.ApplyCategories(cats)
	if dropped > 0 {
		slog.Warn("dropped categories with duplicate ids", "dropped", dropped)
	}
	span.SetAttributes(attribute.Int("catalog.categories", len(cats)-dropped))
	metrics.DocumentLoads.WithLabelValues("categories", "ready").Inc()
	s.observe(snap)
	slog.Info("categories loaded", "count", len(cats)-dropped, "revision", snap.Revision)

	s.publish(ctx, &domain.CatalogEvent{Kind: domain.EventCategoriesLoaded, Revision: snap.Revision, Count: len(cats) - dropped})
}

// Snapshot returns the current catalog view.
func (s *CatalogService) Snapshot() *catalog.Snapshot {
	return s.store.Snapshot()
}

// Status returns the per-document load status.
func (s *CatalogService) Status() domain.LoadStatus {
	return s.store.Snapshot().Status
}

// Region returns the initial map viewport.
func (s *CatalogService) Region() domain.Region {
	return s.opts.Region
}

// Categories returns the categories in dropdown order.
func (s *CatalogService) Categories() []domain.Category {
	return s.store.Snapshot().Categories().All()
}

// CategoryName returns the name for a category id.
func (s *CatalogService) CategoryName(id int) (string, bool) {
	return s.store.Snapshot().Categories().NameFor(id)
}

// CategoryNames returns the dropdown options.
func (s *CatalogService) CategoryNames() []string {
	return s.store.Snapshot().Categories().AllNames()
}

// Places returns the places visible under view.
func (s *CatalogService) Places(view domain.ViewState) []domain.Place {
	return catalog.Visible(s.store.Snapshot(), view)
}

// GetByID returns a single place.
func (s *CatalogService) GetByID(id int) (*domain.Place, error) {
	p, ok := s.store.Snapshot().Place(id)
	if !ok {
		return nil, fmt.Errorf("place %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// Callout returns the info panel for a place.
func (s *CatalogService) Callout(id int) (domain.Callout, error) {
	return catalog.Callout(s.store.Snapshot(), id, s.opts.PlaceholderImage)
}

// FindNearby runs a proximity query around center.
func (s *CatalogService) FindNearby(ctx context.Context, center domain.GeoPoint, threshold float64) (domain.Proximity, error) {
	snap := s.store.Snapshot()

	// Try cache
	cacheKey := nearbyCacheKey(snap.Revision, center, threshold)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var prox domain.Proximity
			if err := json.Unmarshal(data, &prox); err == nil {
				metrics.CacheHits.WithLabelValues("nearby").Inc()
				return prox, nil
			}
			_ = s.cache.Delete(ctx, cacheKey)
		}
		metrics.CacheMisses.WithLabelValues("nearby").Inc()
	}

	start := time.Now()
	prox, err := catalog.Near(snap, center, threshold)
	metrics.ProximityQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Proximity{}, err
	}

	// Keyed by revision, so a stale entry is never read back.
	if s.cache != nil {
		if data, err := json.Marshal(prox); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTLSeconds)
		}
	}

	return prox, nil
}

// nearbyCacheKey groups entries by geohash cell but keys on the exact
// centre: two centres in one cell can pick different nearest places.
func nearbyCacheKey(revision uint64, center domain.GeoPoint, threshold float64) string {
	return fmt.Sprintf("places:nearby:%d:%s:%s,%s:%s",
		revision,
		geohash.EncodeWithPrecision(center.Lat, center.Lon, 12),
		strconv.FormatFloat(center.Lat, 'g', -1, 64),
		strconv.FormatFloat(center.Lon, 'g', -1, 64),
		strconv.FormatFloat(threshold, 'g', -1, 64))
}

// NearPlace runs a proximity query centred on an existing place.
func (s *CatalogService) NearPlace(id int, threshold float64) (domain.Proximity, error) {
	snap := s.store.Snapshot()
	p, ok := snap.Place(id)
	if !ok {
		return domain.Proximity{}, fmt.Errorf("place %d: %w", id, domain.ErrNotFound)
	}
	return catalog.NearPlace(snap, p, threshold)
}

// AddCustomMarker drops a user marker and announces it.
func (s *CatalogService) AddCustomMarker(ctx context.Context, lat, lon float64) domain.Place {
	m, snap := s.store.AddCustomMarker(lat, lon)
	s.observe(snap)
	slog.Info("custom marker added", "id", m.ID, "lat", lat, "lon", lon)

	s.publish(ctx, &domain.CatalogEvent{Kind: domain.EventMarkerAdded, Revision: snap.Revision, Place: &m})
	return m
}

// RemoveCustomMarker deletes a user marker.
func (s *CatalogService) RemoveCustomMarker(ctx context.Context, id int) error {
	m, snap, err := s.store.RemoveCustomMarker(id)
	if err != nil {
		return err
	}
	s.observe(snap)

	s.publish(ctx, &domain.CatalogEvent{Kind: domain.EventMarkerRemoved, Revision: snap.Revision, Place: &m})
	return nil
}

// Markers returns every custom marker with its neighbourhood report.
func (s *CatalogService) Markers(threshold float64) ([]domain.MarkerReport, error) {
	return catalog.MarkerReports(s.store.Snapshot(), threshold)
}

func (s *CatalogService) observe(snap *catalog.Snapshot) {
	metrics.CatalogPlaces.Set(float64(snap.Len()))
	metrics.CatalogCategories.Set(float64(snap.Categories().Len()))
	metrics.CustomMarkers.Set(float64(len(catalog.Markers(snap))))
}

func (s *CatalogService) publish(ctx context.Context, ev *domain.CatalogEvent) {
	if s.publisher == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Time = time.Now().UTC()
	if err := s.publisher.PublishCatalogEvent(ctx, ev); err != nil {
		slog.Warn("publish catalog event", "kind", ev.Kind, "error", err)
	}
}
