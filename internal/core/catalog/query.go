package catalog

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/samirrijal/eiremap/internal/core/domain"
	"github.com/samirrijal/eiremap/internal/pkg/geospatial"
)

// Filter returns every place whose category equals categoryID, in snapshot
// order. The snapshot itself is left untouched.
func Filter(s *Snapshot, categoryID int) []domain.Place {
	out := make([]domain.Place, 0)
	for _, p := range s.places {
		if p.CategoryID() == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// Visible returns the places the map should draw for a view.
func Visible(s *Snapshot, view domain.ViewState) []domain.Place {
	if view.Selected == nil {
		return s.Places()
	}
	return Filter(s, *view.Selected)
}

// Markers returns the user-dropped markers in creation order.
func Markers(s *Snapshot) []domain.Place {
	out := make([]domain.Place, 0)
	for _, p := range s.places {
		if p.IsCustom() {
			out = append(out, p)
		}
	}
	return out
}

// Near counts the places inside the square of half-side threshold degrees
// around center and ranks them by |Δlat|+|Δlon|. Nearest is the closest
// place not sitting exactly on the centre.
func Near(s *Snapshot, center domain.GeoPoint, threshold float64) (domain.Proximity, error) {
	return near(s, center, threshold, func(n domain.Neighbor) bool { return n.Distance == 0 })
}

// NearPlace is Near centred on a place; the place itself is never reported
// as its own nearest neighbour.
func NearPlace(s *Snapshot, p domain.Place, threshold float64) (domain.Proximity, error) {
	return near(s, p.Location, threshold, func(n domain.Neighbor) bool { return n.Place.ID == p.ID })
}

// MarkerReports runs NearPlace for every custom marker.
func MarkerReports(s *Snapshot, threshold float64) ([]domain.MarkerReport, error) {
	markers := Markers(s)
	reports := make([]domain.MarkerReport, 0, len(markers))
	for _, m := range markers {
		prox, err := NearPlace(s, m, threshold)
		if err != nil {
			return nil, err
		}
		reports = append(reports, domain.MarkerReport{Marker: m, Proximity: prox})
	}
	return reports, nil
}

// Callout builds the info panel for a place.
func Callout(s *Snapshot, id int, placeholderImage string) (domain.Callout, error) {
	p, ok := s.Place(id)
	if !ok {
		return domain.Callout{}, fmt.Errorf("place %d: %w", id, domain.ErrNotFound)
	}

	name, _ := s.categories.NameFor(p.CategoryID())
	image := p.ImageURI
	if image == "" {
		image = placeholderImage
	}

	return domain.Callout{
		PlaceID:      p.ID,
		CategoryName: name,
		Name:         p.Name,
		GaelicName:   p.GaelicName,
		Location:     p.Location,
		ImageURI:     image,
		PinColour:    PinColour(p.CategoryID()),
	}, nil
}

func near(s *Snapshot, center domain.GeoPoint, threshold float64, isCenter func(domain.Neighbor) bool) (domain.Proximity, error) {
	if !geospatial.ValidThreshold(threshold) {
		return domain.Proximity{}, fmt.Errorf("threshold %v: %w", threshold, domain.ErrInvalidThreshold)
	}

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(center.Lat, center.Lon, threshold)
	result := domain.Proximity{
		Center:    center,
		Threshold: threshold,
		Box:       domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon},
		Neighbors: []domain.Neighbor{},
	}

	box, err := rtreego.NewRect(rtreego.Point{minLon, minLat}, []float64{2 * threshold, 2 * threshold})
	if err != nil {
		return domain.Proximity{}, fmt.Errorf("query box: %w", err)
	}

	type hit struct {
		pos int
		n   domain.Neighbor
	}
	var hits []hit
	for _, obj := range s.tree.SearchIntersect(box) {
		ip := obj.(*indexedPlace)
		p := s.places[ip.pos]
		// The tree works on closed boxes; the neighbourhood is open.
		if !geospatial.WithinBox(center.Lat, center.Lon, p.Location.Lat, p.Location.Lon, threshold) {
			continue
		}
		d := geospatial.Manhattan(center.Lat, center.Lon, p.Location.Lat, p.Location.Lon)
		hits = append(hits, hit{pos: ip.pos, n: domain.Neighbor{Place: p, Distance: d}})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].n.Distance != hits[j].n.Distance {
			return hits[i].n.Distance < hits[j].n.Distance
		}
		return hits[i].pos < hits[j].pos
	})

	for _, h := range hits {
		result.Neighbors = append(result.Neighbors, h.n)
		if result.Nearest == nil && !isCenter(h.n) {
			p := h.n.Place
			result.Nearest = &p
		}
	}
	result.Count = len(result.Neighbors)

	return result, nil
}
