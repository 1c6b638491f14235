package domain

import (
	"errors"
	"time"
)

// CustomCategoryID is the category reported by user-dropped markers.
const CustomCategoryID = 0

var (
	// ErrNetwork means a document could not be fetched (transport failure or non-2xx).
	ErrNetwork = errors.New("network failure")
	// ErrParse means a document was fetched but does not decode.
	ErrParse = errors.New("parse failure")
	// ErrNotFound is returned for unknown place or category ids.
	ErrNotFound = errors.New("not found")
	// ErrInvalidThreshold is returned for thresholds that are not finite and positive.
	ErrInvalidThreshold = errors.New("threshold must be a positive number of degrees")
)

// PlaceKind discriminates fetched places from user-created markers.
type PlaceKind string

const (
	KindCatalog PlaceKind = "catalog"
	KindCustom  PlaceKind = "custom"
)

// Place is a point of interest on the map.
type Place struct {
	ID         int       `json:"id"`
	Kind       PlaceKind `json:"kind"`
	Name       string    `json:"name"`
	GaelicName string    `json:"gaelic_name,omitempty"`
	Location   GeoPoint  `json:"location"`
	Category   int       `json:"place_type_id"`
	ImageURI   string    `json:"image_uri,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsCustom reports whether the place was dropped by the user.
func (p Place) IsCustom() bool { return p.Kind == KindCustom }

// CategoryID returns the category used for filtering. Custom markers always
// report CustomCategoryID.
func (p Place) CategoryID() int {
	if p.IsCustom() {
		return CustomCategoryID
	}
	return p.Category
}

// NewCatalogPlace builds a fetched place.
func NewCatalogPlace(id int, name, gaelicName string, loc GeoPoint, category int) Place {
	return Place{ID: id, Kind: KindCatalog, Name: name, GaelicName: gaelicName, Location: loc, Category: category}
}

// NewCustomMarker builds a user-dropped marker.
func NewCustomMarker(id int, loc GeoPoint, at time.Time) Place {
	return Place{ID: id, Kind: KindCustom, Name: "Custom marker", Location: loc, Category: CustomCategoryID, CreatedAt: at}
}

// Category is a place type (castle, beach, monastery...).
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Neighbor is a place that qualified for a proximity query.
type Neighbor struct {
	Place    Place   `json:"place"`
	Distance float64 `json:"distance"` // |Δlat| + |Δlon|, degrees
}

// Proximity is the result of a degree-box neighbourhood query.
type Proximity struct {
	Center    GeoPoint   `json:"center"`
	Threshold float64    `json:"threshold"`
	Box       Bounds     `json:"box"` // the open square that was searched
	Count     int        `json:"count"`
	Neighbors []Neighbor `json:"neighbors"`
	Nearest   *Place     `json:"nearest"` // nil when nothing but the centre qualifies
}

// MarkerReport pairs a custom marker with its neighbourhood.
type MarkerReport struct {
	Marker    Place     `json:"marker"`
	Proximity Proximity `json:"proximity"`
}

// Callout is the info panel shown for a tapped marker.
type Callout struct {
	PlaceID      int      `json:"place_id"`
	CategoryName string   `json:"category_name,omitempty"`
	Name         string   `json:"name"`
	GaelicName   string   `json:"gaelic_name,omitempty"`
	Location     GeoPoint `json:"location"`
	ImageURI     string   `json:"image_uri"`
	PinColour    string   `json:"pin_colour"`
}
