package catalog_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/eiremap/internal/core/catalog"
	"github.com/samirrijal/eiremap/internal/core/domain"
)

// --- Fixtures ---

func place(id int, lat, lon float64, cat int) domain.Place {
	return domain.NewCatalogPlace(id, "Place", "", domain.GeoPoint{Lat: lat, Lon: lon}, cat)
}

func loadedStore(places []domain.Place, cats []domain.Category) *catalog.Store {
	s := catalog.NewStore()
	s.ApplyPlaces(places)
	s.ApplyCategories(cats)
	return s
}

var dublin = []domain.Place{
	domain.NewCatalogPlace(1, "Dublin Castle", "Caisleán Bhaile Átha Cliath", domain.GeoPoint{Lat: 53.3429, Lon: -6.2674}, 1),
	domain.NewCatalogPlace(2, "Howth Beach", "", domain.GeoPoint{Lat: 53.3786, Lon: -6.0597}, 2),
	domain.NewCatalogPlace(3, "Malahide Castle", "Caisleán Mhullach Íde", domain.GeoPoint{Lat: 53.4433, Lon: -6.1668}, 1),
	domain.NewCatalogPlace(4, "Glendalough", "Gleann Dá Loch", domain.GeoPoint{Lat: 53.0104, Lon: -6.3298}, 3),
}

var types = []domain.Category{{ID: 1, Name: "Castle"}, {ID: 2, Name: "Beach"}, {ID: 3, Name: "Monastery"}}

// --- Filter ---

func TestFilter_ExactCategory(t *testing.T) {
	snap := loadedStore(dublin, types).Snapshot()

	for _, k := range []int{0, 1, 2, 3, 99} {
		got := catalog.Filter(snap, k)
		for _, p := range got {
			if p.CategoryID() != k {
				t.Errorf("filter(%d) returned place %d with category %d", k, p.ID, p.CategoryID())
			}
		}
		want := 0
		for _, p := range snap.Places() {
			if p.CategoryID() == k {
				want++
			}
		}
		if len(got) != want {
			t.Errorf("filter(%d): expected %d places, got %d", k, want, len(got))
		}
	}
}

func TestFilter_EmptyCatalog(t *testing.T) {
	snap := catalog.NewStore().Snapshot()
	got := catalog.Filter(snap, 1)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestFilter_IsNotDestructive(t *testing.T) {
	snap := loadedStore(dublin, types).Snapshot()

	castles := catalog.Filter(snap, 1)
	if len(castles) != 2 {
		t.Fatalf("expected 2 castles, got %d", len(castles))
	}
	// A second selection must see the full catalog, not the castles.
	beaches := catalog.Filter(snap, 2)
	if len(beaches) != 1 || beaches[0].ID != 2 {
		t.Fatalf("expected Howth Beach, got %v", beaches)
	}
	if snap.Len() != len(dublin) {
		t.Errorf("snapshot was narrowed to %d places", snap.Len())
	}
}

func TestVisible_NoSelectionShowsAll(t *testing.T) {
	s := loadedStore(dublin, types)
	s.AddCustomMarker(53.35, -6.26)
	snap := s.Snapshot()

	if got := catalog.Visible(snap, domain.ViewState{}); len(got) != 5 {
		t.Errorf("expected 5 visible, got %d", len(got))
	}
	if got := catalog.Visible(snap, domain.Select(3)); len(got) != 1 || got[0].Name != "Glendalough" {
		t.Errorf("unexpected monastery view: %v", got)
	}
}

// --- Proximity ---

func TestNear_Scenario(t *testing.T) {
	snap := loadedStore([]domain.Place{
		place(1, 53.35, -6.26, 1),
		place(2, 53.40, -6.20, 1),
	}, nil).Snapshot()

	prox, err := catalog.Near(snap, domain.GeoPoint{Lat: 53.35, Lon: -6.26}, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prox.Count != 2 {
		t.Fatalf("expected count 2, got %d", prox.Count)
	}
	if prox.Nearest == nil || prox.Nearest.ID != 2 {
		t.Fatalf("expected nearest place 2, got %v", prox.Nearest)
	}
	if prox.Neighbors[0].Place.ID != 1 || prox.Neighbors[0].Distance != 0 {
		t.Errorf("expected centre place first, got %+v", prox.Neighbors[0])
	}
	box := prox.Box
	if math.Abs(box.MinLat-53.25) > 1e-9 || math.Abs(box.MaxLon+6.16) > 1e-9 {
		t.Errorf("unexpected search box %+v", box)
	}
}

func TestNear_OnlyCenterQualifies(t *testing.T) {
	snap := loadedStore([]domain.Place{
		place(1, 53.35, -6.26, 1),
		place(2, 54.00, -7.00, 1),
	}, nil).Snapshot()

	prox, err := catalog.Near(snap, domain.GeoPoint{Lat: 53.35, Lon: -6.26}, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prox.Count != 1 {
		t.Errorf("expected count 1, got %d", prox.Count)
	}
	if prox.Nearest != nil {
		t.Errorf("expected no nearest neighbour, got %v", prox.Nearest)
	}
}

func TestNear_EmptyCatalog(t *testing.T) {
	prox, err := catalog.Near(catalog.NewStore().Snapshot(), domain.GeoPoint{Lat: 53, Lon: -6}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prox.Count != 0 || prox.Nearest != nil || len(prox.Neighbors) != 0 {
		t.Errorf("expected empty result, got %+v", prox)
	}
}

func TestNear_BoundaryIsExclusive(t *testing.T) {
	snap := loadedStore([]domain.Place{
		place(1, 53.0, -6.0, 1),
		place(2, 53.5, -6.0, 1), // exactly on the edge
		place(3, 53.0, -6.25, 1),
	}, nil).Snapshot()

	prox, err := catalog.Near(snap, domain.GeoPoint{Lat: 53.0, Lon: -6.0}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if prox.Count != 2 {
		t.Fatalf("expected 2 inside the open box, got %d", prox.Count)
	}
	if prox.Nearest == nil || prox.Nearest.ID != 3 {
		t.Errorf("expected nearest 3, got %v", prox.Nearest)
	}
}

func TestNear_OrderedByManhattanDistance(t *testing.T) {
	snap := loadedStore([]domain.Place{
		place(1, 53.30, -6.30, 1), // 0.05 + 0.04 = 0.09
		place(2, 53.36, -6.26, 1), // 0.01
		place(3, 53.33, -6.24, 1), // 0.02 + 0.02 = 0.04
	}, nil).Snapshot()

	prox, err := catalog.Near(snap, domain.GeoPoint{Lat: 53.35, Lon: -6.26}, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 3, 1}
	for i, n := range prox.Neighbors {
		if n.Place.ID != want[i] {
			t.Errorf("position %d: expected %d, got %d", i, want[i], n.Place.ID)
		}
	}
	if prox.Nearest == nil || prox.Nearest.ID != 2 {
		t.Errorf("expected nearest 2 when centre is not a place, got %v", prox.Nearest)
	}
}

func TestNear_InvalidThreshold(t *testing.T) {
	snap := loadedStore(dublin, types).Snapshot()
	for _, th := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err := catalog.Near(snap, domain.GeoPoint{Lat: 53, Lon: -6}, th)
		if !errors.Is(err, domain.ErrInvalidThreshold) {
			t.Errorf("threshold %v: expected ErrInvalidThreshold, got %v", th, err)
		}
	}
}

func TestNearPlace_ExcludesItself(t *testing.T) {
	s := loadedStore(dublin, types)
	m, _ := s.AddCustomMarker(53.3429, -6.2674) // on top of Dublin Castle
	snap := s.Snapshot()

	prox, err := catalog.NearPlace(snap, m, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if prox.Count != 2 {
		t.Fatalf("expected marker and castle, got %d", prox.Count)
	}
	if prox.Nearest == nil || prox.Nearest.ID != 1 {
		t.Errorf("expected Dublin Castle as nearest, got %v", prox.Nearest)
	}
}

// --- Markers & callouts ---

func TestMarkerReports(t *testing.T) {
	s := loadedStore(dublin, types)
	s.AddCustomMarker(53.44, -6.17)
	s.AddCustomMarker(10, 10)
	snap := s.Snapshot()

	markers := catalog.Markers(snap)
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if got := catalog.Filter(snap, domain.CustomCategoryID); len(got) != 2 {
		t.Errorf("expected category 0 to select the markers, got %d", len(got))
	}

	reports, err := catalog.MarkerReports(snap, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if reports[0].Proximity.Nearest == nil || reports[0].Proximity.Nearest.ID != 3 {
		t.Errorf("expected Malahide near first marker, got %v", reports[0].Proximity.Nearest)
	}
	if reports[1].Proximity.Count != 1 || reports[1].Proximity.Nearest != nil {
		t.Errorf("expected lonely second marker, got %+v", reports[1].Proximity)
	}
}

func TestCallout(t *testing.T) {
	s := loadedStore(dublin, types)
	m, _ := s.AddCustomMarker(53.0, -6.0)
	snap := s.Snapshot()

	c, err := catalog.Callout(snap, 1, "https://picsum.photos/300/200")
	if err != nil {
		t.Fatal(err)
	}
	if c.CategoryName != "Castle" || c.PinColour != "red" || c.GaelicName == "" {
		t.Errorf("unexpected callout: %+v", c)
	}
	if c.ImageURI != "https://picsum.photos/300/200" {
		t.Errorf("expected placeholder image, got %s", c.ImageURI)
	}

	c, err = catalog.Callout(snap, m.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if c.CategoryName != "" || c.PinColour != catalog.DefaultPinColour {
		t.Errorf("unexpected marker callout: %+v", c)
	}

	if _, err := catalog.Callout(snap, 404, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
