package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/eiremap/internal/adapters/http"
	natsadapter "github.com/samirrijal/eiremap/internal/adapters/nats"
	"github.com/samirrijal/eiremap/internal/adapters/remote"
	"github.com/samirrijal/eiremap/internal/adapters/valkey"
	"github.com/samirrijal/eiremap/internal/core/domain"
	"github.com/samirrijal/eiremap/internal/core/ports"
	"github.com/samirrijal/eiremap/internal/core/usecases"
	"github.com/samirrijal/eiremap/internal/pkg/config"
	"github.com/samirrijal/eiremap/internal/pkg/logging"
	"github.com/samirrijal/eiremap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("eiremap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var (
		cache     *valkey.Cache
		cachePort ports.CacheService
	)
	if cfg.Valkey.Enabled {
		if cache, err = valkey.New(cfg.Valkey.Addr, "eiremap:"); err != nil {
			slog.Warn("valkey unavailable", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			cachePort = cache
		}
	}

	// NATS
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		if natsConn, err = natsadapter.RawConn(cfg.NATS.URL); err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	source := remote.NewSource(cfg.Source.PlacesURL, cfg.Source.PlaceTypesURL,
		time.Duration(cfg.Source.Timeout)*time.Second)

	catalogSvc := usecases.NewCatalogService(source, cachePort, publisher, usecases.CatalogOptions{
		PlaceholderImage: cfg.Map.PlaceholderImage,
		CacheTTLSeconds:  cfg.Valkey.TTLSeconds,
		Region: domain.Region{
			Center:         domain.GeoPoint{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
			LatitudeDelta:  cfg.Map.LatitudeDelta,
			LongitudeDelta: cfg.Map.LongitudeDelta,
		},
	})

	// The map is served while the documents load; /v1/status reports progress.
	go catalogSvc.Load(ctx)

	deps := &http.Dependencies{
		Catalog:         catalogSvc,
		NATS:            natsConn,
		Cache:           cache,
		NearbyThreshold: cfg.Map.NearbyThreshold,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "EireMap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
