package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Source: SourceConfig{
			PlacesURL:     defaultPlacesURL,
			PlaceTypesURL: defaultPlaceTypesURL,
			Timeout:       15,
		},
		Map:    MapConfig{CenterLat: 53.3498, CenterLon: -6.2603, NearbyThreshold: 0.1},
		NATS:   NATSConfig{URL: "nats://localhost:4222", Enabled: true},
		Valkey: ValkeyConfig{Addr: "localhost:6379", Enabled: true},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Source.PlacesURL = "ftp://example.com/places.json"
	cfg.Map.NearbyThreshold = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "source.places_url", "map.nearby_threshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_OptionalBackends(t *testing.T) {
	cfg := validConfig()
	cfg.NATS = NATSConfig{Enabled: false}
	cfg.Valkey = ValkeyConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled backends need no address: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EIREMAP_SERVER_PORT", "9090")
	t.Setenv("EIREMAP_MAP_NEARBY_THRESHOLD", "0.25")

	cfg, err := Load("eiremap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Map.NearbyThreshold != 0.25 {
		t.Errorf("expected threshold 0.25, got %v", cfg.Map.NearbyThreshold)
	}
	if cfg.Source.PlacesURL != defaultPlacesURL {
		t.Errorf("expected default places url, got %s", cfg.Source.PlacesURL)
	}
	if cfg.Telemetry.ServiceName != "eiremap-test" {
		t.Errorf("expected service name default, got %s", cfg.Telemetry.ServiceName)
	}
}
