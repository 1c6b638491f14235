package domain

import "time"

// LoadState is the lifecycle of one remote document.
type LoadState string

const (
	LoadPending LoadState = "pending"
	LoadReady   LoadState = "ready"
	LoadFailed  LoadState = "failed"
)

// DocumentStatus reports the last load outcome of a document.
type DocumentStatus struct {
	State     LoadState  `json:"state"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// LoadStatus lets the map render a spinner or an error banner.
type LoadStatus struct {
	Places     DocumentStatus `json:"places"`
	Categories DocumentStatus `json:"categories"`
}

// Overall folds both documents into one state: failed wins, then pending.
func (s LoadStatus) Overall() LoadState {
	switch {
	case s.Places.State == LoadFailed || s.Categories.State == LoadFailed:
		return LoadFailed
	case s.Places.State == LoadReady && s.Categories.State == LoadReady:
		return LoadReady
	default:
		return LoadPending
	}
}

// ViewState is the dropdown selection owned by the caller. A nil Selected
// shows every place.
type ViewState struct {
	Selected *int `json:"selected,omitempty"`
}

// Select returns a view narrowed to one category.
func Select(categoryID int) ViewState { return ViewState{Selected: &categoryID} }

// Catalog event kinds, appended to the "catalog." subject prefix.
const (
	EventPlacesLoaded     = "loaded.places"
	EventCategoriesLoaded = "loaded.categories"
	EventPlacesFailed     = "failed.places"
	EventCategoriesFailed = "failed.categories"
	EventMarkerAdded      = "marker.added"
	EventMarkerRemoved    = "marker.removed"
)

// CatalogEvent is broadcast to live map clients.
type CatalogEvent struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Revision uint64    `json:"revision"`
	Time     time.Time `json:"time"`
	Place    *Place    `json:"place,omitempty"`
	Count    int       `json:"count,omitempty"`
	Error    string    `json:"error,omitempty"`
}
