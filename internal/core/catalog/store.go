package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samirrijal/eiremap/internal/core/domain"
)

// Store owns the catalog state. Reads are lock-free through an atomic
// snapshot pointer; writers serialise on mu and publish a fresh snapshot.
type Store struct {
	mu         sync.Mutex
	current    atomic.Pointer[Snapshot]
	fetched    []domain.Place
	markers    []domain.Place
	categories []domain.Category
	status     domain.LoadStatus
	revision   uint64
	lastID     int // highest place id seen or issued this session

	now func() time.Time
}

// NewStore creates an empty store with both documents pending.
func NewStore() *Store {
	s := &Store{
		status: domain.LoadStatus{
			Places:     domain.DocumentStatus{State: domain.LoadPending},
			Categories: domain.DocumentStatus{State: domain.LoadPending},
		},
		now: time.Now,
	}
	s.publishLocked()
	return s
}

// Snapshot returns the current catalog view.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// ApplyPlaces replaces the fetched places wholesale. Custom markers survive.
// Later duplicate ids within the document are dropped and counted. A fetched
// id always wins over a marker: a marker holding that id is given a fresh one.
func (s *Store) ApplyPlaces(places []domain.Place) (*Snapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool, len(places))
	kept := make([]domain.Place, 0, len(places))
	dropped := 0
	for _, p := range places {
		if seen[p.ID] {
			dropped++
			continue
		}
		seen[p.ID] = true
		p.Kind = domain.KindCatalog
		kept = append(kept, p)
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}

	if len(s.markers) > 0 {
		markers := make([]domain.Place, len(s.markers))
		copy(markers, s.markers)
		for i := range markers {
			if seen[markers[i].ID] {
				s.lastID++
				markers[i].ID = s.lastID
			}
		}
		s.markers = markers
	}

	s.fetched = kept
	s.status.Places = s.readyLocked()
	return s.publishLocked(), dropped
}

// ApplyCategories replaces the category list. Later duplicates are dropped.
func (s *Store) ApplyCategories(cats []domain.Category) (*Snapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool, len(cats))
	kept := make([]domain.Category, 0, len(cats))
	dropped := 0
	for _, c := range cats {
		if seen[c.ID] {
			dropped++
			continue
		}
		seen[c.ID] = true
		kept = append(kept, c)
	}

	s.categories = kept
	s.status.Categories = s.readyLocked()
	return s.publishLocked(), dropped
}

// FailPlaces records a failed places load. The previous places stay.
func (s *Store) FailPlaces(err error) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Places = s.failedLocked(err)
	return s.publishLocked()
}

// FailCategories records a failed categories load. The previous list stays.
func (s *Store) FailCategories(err error) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Categories = s.failedLocked(err)
	return s.publishLocked()
}

// AddCustomMarker appends a user marker at lat/lon. Coordinates are taken
// as given. The id is one past the highest id seen or issued so far.
func (s *Store) AddCustomMarker(lat, lon float64) (domain.Place, *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	m := domain.NewCustomMarker(s.lastID, domain.GeoPoint{Lat: lat, Lon: lon}, s.now().UTC())
	s.markers = append(s.markers, m)
	return m, s.publishLocked()
}

// RemoveCustomMarker deletes a custom marker. Fetched places cannot be removed.
func (s *Store) RemoveCustomMarker(id int) (domain.Place, *Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.markers {
		if m.ID != id {
			continue
		}
		s.markers = append(s.markers[:i:i], s.markers[i+1:]...)
		return m, s.publishLocked(), nil
	}
	return domain.Place{}, nil, fmt.Errorf("custom marker %d: %w", id, domain.ErrNotFound)
}

func (s *Store) readyLocked() domain.DocumentStatus {
	t := s.now().UTC()
	return domain.DocumentStatus{State: domain.LoadReady, UpdatedAt: &t}
}

func (s *Store) failedLocked(err error) domain.DocumentStatus {
	t := s.now().UTC()
	return domain.DocumentStatus{State: domain.LoadFailed, Error: err.Error(), UpdatedAt: &t}
}

func (s *Store) publishLocked() *Snapshot {
	places := make([]domain.Place, 0, len(s.fetched)+len(s.markers))
	places = append(places, s.fetched...)
	places = append(places, s.markers...)

	cats := make([]domain.Category, len(s.categories))
	copy(cats, s.categories)

	s.revision++
	snap := newSnapshot(s.revision, s.status, places, cats)
	s.current.Store(snap)
	return snap
}
