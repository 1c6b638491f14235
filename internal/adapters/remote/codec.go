package remote

import (
	"encoding/json"
	"fmt"

	"github.com/samirrijal/eiremap/internal/core/domain"
)

// placeDoc is one entry of the places document.
type placeDoc struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	GaelicName  string  `json:"gaelic_name,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	PlaceTypeID int     `json:"place_type_id"`
}

// categoryDoc is one entry of the place types document.
type categoryDoc struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DecodePlaces parses a places document.
func DecodePlaces(data []byte) ([]domain.Place, error) {
	var docs []placeDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode places: %v: %w", err, domain.ErrParse)
	}

	places := make([]domain.Place, 0, len(docs))
	for _, d := range docs {
		places = append(places, domain.NewCatalogPlace(d.ID, d.Name, d.GaelicName,
			domain.GeoPoint{Lat: d.Latitude, Lon: d.Longitude}, d.PlaceTypeID))
	}
	return places, nil
}

// EncodePlaces writes places in the places document format. Custom markers
// are encoded like any other place.
func EncodePlaces(places []domain.Place) ([]byte, error) {
	docs := make([]placeDoc, 0, len(places))
	for _, p := range places {
		docs = append(docs, placeDoc{
			ID:          p.ID,
			Name:        p.Name,
			GaelicName:  p.GaelicName,
			Latitude:    p.Location.Lat,
			Longitude:   p.Location.Lon,
			PlaceTypeID: p.CategoryID(),
		})
	}
	return json.Marshal(docs)
}

// DecodeCategories parses a place types document.
func DecodeCategories(data []byte) ([]domain.Category, error) {
	var docs []categoryDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode place types: %v: %w", err, domain.ErrParse)
	}

	cats := make([]domain.Category, 0, len(docs))
	for _, d := range docs {
		cats = append(cats, domain.Category{ID: d.ID, Name: d.Name})
	}
	return cats, nil
}

// EncodeCategories writes categories in the place types document format.
func EncodeCategories(cats []domain.Category) ([]byte, error) {
	docs := make([]categoryDoc, 0, len(cats))
	for _, c := range cats {
		docs = append(docs, categoryDoc{ID: c.ID, Name: c.Name})
	}
	return json.Marshal(docs)
}
