//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/eiremap/internal/adapters/http"
	"github.com/samirrijal/eiremap/internal/adapters/remote"
	"github.com/samirrijal/eiremap/internal/core/domain"
	"github.com/samirrijal/eiremap/internal/core/usecases"
	"github.com/samirrijal/eiremap/internal/pkg/config"
)

// setupLiveApp loads the catalog from the configured remote documents.
func setupLiveApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg, err := config.Load("eiremap-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	src := remote.NewSource(cfg.Source.PlacesURL, cfg.Source.PlaceTypesURL, time.Duration(cfg.Source.Timeout)*time.Second)
	svc := usecases.NewCatalogService(src, nil, nil, usecases.CatalogOptions{PlaceholderImage: cfg.Map.PlaceholderImage})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	svc.Load(ctx)
	if st := svc.Status(); st.Overall() != domain.LoadReady {
		t.Fatalf("live catalog did not load: %+v", st)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, &handler.Dependencies{Catalog: svc, NearbyThreshold: cfg.Map.NearbyThreshold})
	return app
}

func TestIntegration_LiveCatalog(t *testing.T) {
	app := setupLiveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/categories", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	var cats []handler.CategoryView
	if err := json.NewDecoder(resp.Body).Decode(&cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) == 0 {
		t.Fatal("expected categories from the live document")
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/places?category="+strconv.Itoa(cats[0].ID), nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	var list handler.PlaceList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	for _, p := range list.Data {
		if p.Category != cats[0].ID {
			t.Errorf("place %d has category %d, expected %d", p.ID, p.Category, cats[0].ID)
		}
	}
	t.Logf("live catalog: %d categories, %d places in %q", len(cats), list.Count, cats[0].Name)
}

func TestIntegration_NearbyDublin(t *testing.T) {
	app := setupLiveApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/places/nearby?lat=53.3498&lon=-6.2603&threshold=1", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var prox domain.Proximity
	if err := json.NewDecoder(resp.Body).Decode(&prox); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(prox.Neighbors); i++ {
		if prox.Neighbors[i].Distance < prox.Neighbors[i-1].Distance {
			t.Fatalf("neighbors out of order at %d", i)
		}
	}
	t.Logf("%d places within 1 degree of Dublin", prox.Count)
}
