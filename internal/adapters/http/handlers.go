package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/eiremap/internal/core/catalog"
	"github.com/samirrijal/eiremap/internal/core/domain"
	"github.com/samirrijal/eiremap/internal/pkg/geospatial"
)

// CatalogStatus summarises what the map can currently render.
type CatalogStatus struct {
	Status     domain.LoadState  `json:"status"`
	Revision   uint64            `json:"revision"`
	Places     int               `json:"places"`
	Categories int               `json:"categories"`
	Markers    int               `json:"markers"`
	Documents  domain.LoadStatus `json:"documents"`
}

// CategoryView is a dropdown row.
type CategoryView struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	PinColour string `json:"pin_colour"`
}

// PlaceList is the body of place listings.
type PlaceList struct {
	Category *int           `json:"category,omitempty"`
	Count    int            `json:"count"`
	Data     []domain.Place `json:"data"`
}

type markerRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func statusOf(snap *catalog.Snapshot) CatalogStatus {
	return CatalogStatus{
		Status:     snap.Status.Overall(),
		Revision:   snap.Revision,
		Places:     snap.Len(),
		Categories: snap.Categories().Len(),
		Markers:    len(catalog.Markers(snap)),
		Documents:  snap.Status,
	}
}

// StatusHandler returns per-document load state so clients can show a
// spinner or an error banner.
func StatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(statusOf(deps.Catalog.Snapshot()))
	}
}

// RegionHandler returns the initial map viewport.
func RegionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Catalog.Region())
	}
}

// ListCategoriesHandler returns the dropdown options in document order.
func ListCategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats := deps.Catalog.Categories()
		out := make([]CategoryView, 0, len(cats))
		for _, cat := range cats {
			out = append(out, CategoryView{ID: cat.ID, Name: cat.Name, PinColour: catalog.PinColour(cat.ID)})
		}
		return c.JSON(out)
	}
}

// GetCategoryHandler returns one category by id.
func GetCategoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "category id must be an integer")
		}
		name, ok := deps.Catalog.CategoryName(id)
		if !ok {
			return errNotFound(c, "category "+strconv.Itoa(id)+" not found")
		}
		return c.JSON(CategoryView{ID: id, Name: name, PinColour: catalog.PinColour(id)})
	}
}

// ListPlacesHandler returns every place, or only those of ?category=.
// Category 0 lists the custom markers.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var view domain.ViewState
		if raw := c.Query("category"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return errBadRequest(c, "category must be an integer")
			}
			view = domain.Select(id)
		}

		places := deps.Catalog.Places(view)
		return c.JSON(PlaceList{Category: view.Selected, Count: len(places), Data: places})
	}
}

// GetPlaceHandler returns a single place by id.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "place id must be an integer")
		}
		place, err := deps.Catalog.GetByID(id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(place)
	}
}

// CalloutHandler returns the info panel for a tapped marker.
func CalloutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "place id must be an integer")
		}
		callout, err := deps.Catalog.Callout(id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(callout)
	}
}

// NearbyPlacesHandler counts and orders places inside the degree box around
// ?lat,?lon.
func NearbyPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
		if latErr != nil || lonErr != nil {
			return errBadRequest(c, "lat and lon are required")
		}
		if !geospatial.Valid(lat, lon) {
			return errBadRequest(c, "lat must be within -90..90 and lon within -180..180")
		}
		threshold, err := thresholdParam(c, deps)
		if err != nil {
			return errBadRequest(c, "threshold must be a number")
		}

		prox, err := deps.Catalog.FindNearby(c.UserContext(), domain.GeoPoint{Lat: lat, Lon: lon}, threshold)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(prox)
	}
}

// PlaceNeighborsHandler runs the proximity query centred on a known place.
func PlaceNeighborsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "place id must be an integer")
		}
		threshold, err := thresholdParam(c, deps)
		if err != nil {
			return errBadRequest(c, "threshold must be a number")
		}

		prox, err := deps.Catalog.NearPlace(id, threshold)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(prox)
	}
}

// ListMarkersHandler returns every custom marker with its neighbourhood.
func ListMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold, err := thresholdParam(c, deps)
		if err != nil {
			return errBadRequest(c, "threshold must be a number")
		}
		reports, err := deps.Catalog.Markers(threshold)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(reports)
	}
}

// AddMarkerHandler drops a custom marker at the posted coordinate.
func AddMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req markerRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lon == nil {
			return errBadRequest(c, "lat and lon are required")
		}
		if !geospatial.Valid(*req.Lat, *req.Lon) {
			return errBadRequest(c, "lat must be within -90..90 and lon within -180..180")
		}

		marker := deps.Catalog.AddCustomMarker(c.UserContext(), *req.Lat, *req.Lon)
		LoggerFromCtx(c.UserContext()).Debug("marker dropped", "id", marker.ID)

		c.Location("/v1/places/" + strconv.Itoa(marker.ID))
		return c.Status(fiber.StatusCreated).JSON(marker)
	}
}

// DeleteMarkerHandler removes a custom marker. Catalog places cannot be deleted.
func DeleteMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "marker id must be an integer")
		}
		if err := deps.Catalog.RemoveCustomMarker(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ReloadHandler refetches both documents and reports the outcome. A failed
// document keeps its previous contents.
func ReloadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Catalog.Load(c.UserContext())

		st := statusOf(deps.Catalog.Snapshot())
		LoggerFromCtx(c.UserContext()).Info("catalog reloaded", "status", st.Status, "revision", st.Revision)
		return c.JSON(st)
	}
}

// thresholdParam reads ?threshold, falling back to the configured default.
// Range checks are left to the query so every caller reports the same error.
func thresholdParam(c *fiber.Ctx, deps *Dependencies) (float64, error) {
	raw := c.Query("threshold")
	if raw == "" {
		return deps.NearbyThreshold, nil
	}
	return strconv.ParseFloat(raw, 64)
}
