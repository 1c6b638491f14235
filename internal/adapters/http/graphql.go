package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/eiremap/internal/core/catalog"
	"github.com/samirrijal/eiremap/internal/core/domain"
	"github.com/samirrijal/eiremap/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to the catalog service.
// Struct fields resolve through their json tags.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	categoryType :=graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
			"pin_colour": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.PinColour(p.Source.(domain.Category).ID), nil
				},
			},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.Int},
			"kind":          &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"gaelic_name":   &graphql.Field{Type: graphql.String},
			"location":      &graphql.Field{Type: geoPointType},
			"place_type_id": &graphql.Field{Type: graphql.Int},
			"image_uri":     &graphql.Field{Type: graphql.String},
		},
	})

	neighborType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Neighbor",
		Fields: graphql.Fields{
			"place":    &graphql.Field{Type: placeType},
			"distance": &graphql.Field{Type: graphql.Float},
		},
	})

	proximityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Proximity",
		Fields: graphql.Fields{
			"center":    &graphql.Field{Type: geoPointType},
			"threshold": &graphql.Field{Type: graphql.Float},
			"box":       &graphql.Field{Type: boundsType},
			"count":     &graphql.Field{Type: graphql.Int},
			"neighbors": &graphql.Field{Type: graphql.NewList(neighborType)},
			"nearest":   &graphql.Field{Type: placeType},
		},
	})

	markerReportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MarkerReport",
		Fields: graphql.Fields{
			"marker":    &graphql.Field{Type: placeType},
			"proximity": &graphql.Field{Type: proximityType},
		},
	})

	calloutType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Callout",
		Fields: graphql.Fields{
			"place_id":      &graphql.Field{Type: graphql.Int},
			"category_name": &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"gaelic_name":   &graphql.Field{Type: graphql.String},
			"location":      &graphql.Field{Type: geoPointType},
			"image_uri":     &graphql.Field{Type: graphql.String},
			"pin_colour":    &graphql.Field{Type: graphql.String},
		},
	})

	regionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Region",
		Fields: graphql.Fields{
			"center":          &graphql.Field{Type: geoPointType},
			"latitude_delta":  &graphql.Field{Type: graphql.Float},
			"longitude_delta": &graphql.Field{Type: graphql.Float},
		},
	})

	documentStatusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DocumentStatus",
		Fields: graphql.Fields{
			"state": &graphql.Field{Type: graphql.String},
			"error": &graphql.Field{Type: graphql.String},
		},
	})

	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CatalogStatus",
		Fields: graphql.Fields{
			"status":     &graphql.Field{Type: graphql.String},
			"revision":   &graphql.Field{Type: graphql.Int},
			"places":     &graphql.Field{Type: graphql.Int},
			"categories": &graphql.Field{Type: graphql.Int},
			"markers":    &graphql.Field{Type: graphql.Int},
			"documents": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
				Name: "Documents",
				Fields: graphql.Fields{
					"places":     &graphql.Field{Type: documentStatusType},
					"categories": &graphql.Field{Type: documentStatusType},
				},
			})},
		},
	})

	thresholdArg := &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: deps.NearbyThreshold}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"status": &graphql.Field{
				Type:        statusType,
				Description: "Catalog load state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return statusOf(deps.Catalog.Snapshot()), nil
				},
			},
			"region": &graphql.Field{
				Type:        regionType,
				Description: "Initial map viewport",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Region(), nil
				},
			},
			"categories": &graphql.Field{
				Type:        graphql.NewList(categoryType),
				Description: "Place types in dropdown order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Categories(), nil
				},
			},
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "All places, or those of one category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var view domain.ViewState
					if id, ok := p.Args["category"].(int); ok {
						view = domain.Select(id)
					}
					return deps.Catalog.Places(view), nil
				},
			},
			"place": &graphql.Field{
				Type:        placeType,
				Description: "Get a place by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.GetByID(p.Args["id"].(int))
				},
			},
			"callout": &graphql.Field{
				Type:        calloutType,
				Description: "Info panel for a place",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Callout(p.Args["id"].(int))
				},
			},
			"nearby": &graphql.Field{
				Type:        proximityType,
				Description: "Places inside the degree box around a coordinate",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"threshold": thresholdArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					if !geospatial.Valid(center.Lat, center.Lon) {
						return nil, errInvalidCoordinate
					}
					return deps.Catalog.FindNearby(p.Context, center, p.Args["threshold"].(float64))
				},
			},
			"markers": &graphql.Field{
				Type:        graphql.NewList(markerReportType),
				Description: "Custom markers with their neighbourhoods",
				Args: graphql.FieldConfigArgument{
					"threshold": thresholdArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Markers(p.Args["threshold"].(float64))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addMarker": &graphql.Field{
				Type:        placeType,
				Description: "Drop a custom marker",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat, lon := p.Args["lat"].(float64), p.Args["lon"].(float64)
					if !geospatial.Valid(lat, lon) {
						return nil, errInvalidCoordinate
					}
					return deps.Catalog.AddCustomMarker(p.Context, lat, lon), nil
				},
			},
			"removeMarker": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Delete a custom marker",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := deps.Catalog.RemoveCustomMarker(p.Context, p.Args["id"].(int)); err != nil {
						return false, err
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

var errInvalidCoordinate = errors.New("lat must be within -90..90 and lon within -180..180")

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		ctx := c.UserContext()
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})
		if result.HasErrors() {
			LoggerFromCtx(ctx).Warn("graphql errors", "errors", len(result.Errors), "first", result.Errors[0].Message)
		}
		if rid := RequestIDFromCtx(ctx); rid != "" {
			result.Extensions = map[string]interface{}{"request_id": rid}
		}

		return c.JSON(result)
	}
}
