package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/samirrijal/eiremap/internal/adapters/remote"
	"github.com/samirrijal/eiremap/internal/core/domain"
)

const placesJSON = `[
  {"id": 1, "name": "Dublin Castle", "gaelic_name": "Caisleán Bhaile Átha Cliath", "latitude": 53.3429, "longitude": -6.2674, "place_type_id": 1},
  {"id": 2, "name": "Howth Beach", "gaelic_name": null, "latitude": 53.3786, "longitude": -6.0597, "place_type_id": 2}
]`

const typesJSON = `[{"id": 1, "name": "Castle"}, {"id": 2, "name": "Beach"}]`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/places.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(placesJSON))
	})
	mux.HandleFunc("/place_types.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(typesJSON))
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "name": `))
	})
	mux.HandleFunc("/missing.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSource_FetchPlaces(t *testing.T) {
	srv := newServer(t)
	src := remote.NewSource(srv.URL+"/places.json", srv.URL+"/place_types.json", 5*time.Second)

	places, err := src.FetchPlaces(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if places[0].GaelicName != "Caisleán Bhaile Átha Cliath" || places[0].Kind != domain.KindCatalog {
		t.Errorf("unexpected first place %+v", places[0])
	}
	if places[1].GaelicName != "" || places[1].Location.Lon != -6.0597 || places[1].Category != 2 {
		t.Errorf("unexpected second place %+v", places[1])
	}
}

func TestSource_FetchCategories(t *testing.T) {
	srv := newServer(t)
	src := remote.NewSource(srv.URL+"/places.json", srv.URL+"/place_types.json", 0)

	cats, err := src.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 2 || cats[1].Name != "Beach" {
		t.Errorf("unexpected categories %v", cats)
	}
}

func TestSource_ParseFailure(t *testing.T) {
	srv := newServer(t)
	src := remote.NewSource(srv.URL+"/broken.json", srv.URL+"/broken.json", time.Second)

	if _, err := src.FetchPlaces(context.Background()); !errors.Is(err, domain.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
	if _, err := src.FetchCategories(context.Background()); !errors.Is(err, domain.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestSource_NetworkFailure(t *testing.T) {
	srv := newServer(t)
	src := remote.NewSource(srv.URL+"/missing.json", srv.URL+"/missing.json", time.Second)

	if _, err := src.FetchPlaces(context.Background()); !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("expected ErrNetwork for 404, got %v", err)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	src = remote.NewSource(url+"/places.json", url+"/place_types.json", time.Second)
	if _, err := src.FetchCategories(context.Background()); !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("expected ErrNetwork for refused connection, got %v", err)
	}
}

func TestSource_CancelledContext(t *testing.T) {
	srv := newServer(t)
	src := remote.NewSource(srv.URL+"/places.json", srv.URL+"/place_types.json", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.FetchPlaces(ctx); !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	places, err := remote.DecodePlaces([]byte(placesJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := remote.EncodePlaces(places)
	if err != nil {
		t.Fatal(err)
	}
	again, err := remote.DecodePlaces(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(places, again) {
		t.Errorf("places changed across round trip:\n%+v\n%+v", places, again)
	}

	cats, err := remote.DecodeCategories([]byte(typesJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err = remote.EncodeCategories(cats)
	if err != nil {
		t.Fatal(err)
	}
	catsAgain, err := remote.DecodeCategories(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cats, catsAgain) {
		t.Errorf("categories changed across round trip: %v vs %v", cats, catsAgain)
	}
}
