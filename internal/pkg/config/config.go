package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Default document locations: the gist the original map screen reads.
const (
	defaultPlacesURL     = "https://gist.githubusercontent.com/saravanabalagi/541a511eb71c366e0bf3eecbee2dab0a/raw/bb1529d2e5b71fd06760cb030d6e15d6d56c34b3/places.json"
	defaultPlaceTypesURL = "https://gist.githubusercontent.com/saravanabalagi/541a511eb71c366e0bf3eecbee2dab0a/raw/bb1529d2e5b71fd06760cb030d6e15d6d56c34b3/place_types.json"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	Map       MapConfig       `mapstructure:"map"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// SourceConfig locates the two remote catalog documents.
type SourceConfig struct {
	PlacesURL     string `mapstructure:"places_url"`
	PlaceTypesURL string `mapstructure:"place_types_url"`
	Timeout       int    `mapstructure:"timeout"` // seconds, 0 = none
}

// MapConfig holds presentation defaults handed to map clients.
type MapConfig struct {
	CenterLat        float64 `mapstructure:"center_lat"`
	CenterLon        float64 `mapstructure:"center_lon"`
	LatitudeDelta    float64 `mapstructure:"latitude_delta"`
	LongitudeDelta   float64 `mapstructure:"longitude_delta"`
	NearbyThreshold  float64 `mapstructure:"nearby_threshold"` // degrees
	PlaceholderImage string  `mapstructure:"placeholder_image"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr       string `mapstructure:"addr"`
	Enabled    bool   `mapstructure:"enabled"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("source.places_url", defaultPlacesURL)
	v.SetDefault("source.place_types_url", defaultPlaceTypesURL)
	v.SetDefault("source.timeout", 15)
	v.SetDefault("map.center_lat", 53.3498)
	v.SetDefault("map.center_lon", -6.2603)
	v.SetDefault("map.latitude_delta", 0.015)
	v.SetDefault("map.longitude_delta", 0.0121)
	v.SetDefault("map.nearby_threshold", 0.1)
	v.SetDefault("map.placeholder_image", "https://picsum.photos/300/200")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("valkey.ttl_seconds", 300)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: EIREMAP_SOURCE_PLACES_URL → source.places_url
	v.SetEnvPrefix("EIREMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	for _, src := range []struct{ key, raw string }{
		{"source.places_url", c.Source.PlacesURL},
		{"source.place_types_url", c.Source.PlaceTypesURL},
	} {
		u, err := url.Parse(src.raw)
		if src.raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("%s must be an http(s) URL, got %q", src.key, src.raw))
		}
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, "source.timeout must not be negative")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, "map.center_lat must be within -90..90")
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, "map.center_lon must be within -180..180")
	}
	if c.Map.NearbyThreshold <= 0 {
		errs = append(errs, "map.nearby_threshold must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
