package catalog

import (
	"github.com/dhconnelly/rtreego"

	"github.com/samirrijal/eiremap/internal/core/domain"
)

// pointTolerance gives each place a tiny non-degenerate box in the R-tree.
const pointTolerance = 1e-9

// Snapshot is an immutable view of the catalog. Every mutation of a Store
// produces a new Snapshot; holders of an old one keep a consistent view.
type Snapshot struct {
	Revision uint64
	Status   domain.LoadStatus

	places     []domain.Place
	byID       map[int]int
	categories *CategoryIndex
	tree       *rtreego.Rtree
}

// indexedPlace adapts a snapshot position to rtreego.Spatial.
type indexedPlace struct {
	pos int
	pt  rtreego.Point
}

// Bounds implements rtreego.Spatial.
func (p *indexedPlace) Bounds() rtreego.Rect {
	return p.pt.ToRect(pointTolerance)
}

func newSnapshot(rev uint64, status domain.LoadStatus, places []domain.Place, cats []domain.Category) *Snapshot {
	s := &Snapshot{
		Revision:   rev,
		Status:     status,
		places:     places,
		byID:       make(map[int]int, len(places)),
		categories: NewCategoryIndex(cats),
	}

	s.tree = rtreego.NewTree(2, 25, 50)
	for i, p := range places {
		s.byID[p.ID] = i
		s.tree.Insert(&indexedPlace{pos: i, pt: rtreego.Point{p.Location.Lon, p.Location.Lat}})
	}

	return s
}

// Places returns every place: fetched places in document order, then custom
// markers in creation order. The slice is a copy.
func (s *Snapshot) Places() []domain.Place {
	out := make([]domain.Place, len(s.places))
	copy(out, s.places)
	return out
}

// Len returns the number of places.
func (s *Snapshot) Len() int { return len(s.places) }

// Place looks up a place by id.
func (s *Snapshot) Place(id int) (domain.Place, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Place{}, false
	}
	return s.places[i], true
}

// Categories returns the category index of this snapshot.
func (s *Snapshot) Categories() *CategoryIndex { return s.categories }
