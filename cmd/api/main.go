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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/citrusfield/internal/adapters/http"
	"github.com/samirrijal/citrusfield/internal/adapters/memory"
	natsadapter "github.com/samirrijal/citrusfield/internal/adapters/nats"
	"github.com/samirrijal/citrusfield/internal/adapters/postgres"
	"github.com/samirrijal/citrusfield/internal/adapters/tmap"
	"github.com/samirrijal/citrusfield/internal/adapters/valkey"
	"github.com/samirrijal/citrusfield/internal/adapters/vworld"
	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
	"github.com/samirrijal/citrusfield/internal/pkg/config"
	"github.com/samirrijal/citrusfield/internal/pkg/logging"
	"github.com/samirrijal/citrusfield/internal/pkg/telemetry"
	"github.com/samirrijal/citrusfield/internal/workflows"
)

type repositories struct {
	surveys  ports.SurveyRepository
	changes  ports.LandChangeRepository
	requests ports.CivilRequestRepository
}

func main() {
	cfg, err := config.Load("citrusfield-api")
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

	// Storage
	var repos repositories
	var db *postgres.DB
	switch cfg.Storage.Driver {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repos = repositories{
			surveys:  postgres.NewSurveyRepo(db),
			changes:  postgres.NewLandChangeRepo(db),
			requests: postgres.NewCivilRequestRepo(db),
		}
	default:
		store, err := memory.NewStore()
		if err != nil {
			log.Fatalf("memory store: %v", err)
		}
		repos = repositories{surveys: store.Surveys, changes: store.LandChanges, requests: store.CivilRequests}
		slog.Info("using in-memory store seeded from fixtures")
	}

	// Cache: Valkey when enabled, otherwise in-process
	var parcelCache ports.CacheService
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr, "citrusfield:")
		if err != nil {
			slog.Warn("valkey unavailable, using in-process cache", "error", err)
		} else {
			defer cache.Close()
			parcelCache = cache
		}
	}
	if parcelCache == nil {
		parcelCache = memory.NewCache(cfg.Cache.Size)
	}

	// NATS
	var publisher ports.EventPublisher
	var events http.EventSource
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = natsadapter.Connect(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer natsConn.Close()
			if p, err := natsadapter.NewPublisher(natsConn); err != nil {
				slog.Warn("event publishing disabled", "error", err)
			} else {
				publisher = p
			}
			events = natsadapter.NewSubscriber(natsConn)
		}
	}

	// Temporal: only with a shared store, the worker runs in another process
	var starter ports.WorkflowStarter
	if cfg.Temporal.Enabled {
		if cfg.Storage.Driver != "postgres" {
			slog.Warn("temporal requires storage.driver=postgres; processing civil requests inline")
		} else {
			tc, err := client.Dial(client.Options{
				HostPort:  cfg.Temporal.HostPort,
				Namespace: cfg.Temporal.Namespace,
				Logger:    slog.Default(),
			})
			if err != nil {
				slog.Warn("temporal unavailable; processing civil requests inline", "error", err)
			} else {
				defer tc.Close()
				starter = workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
			}
		}
	}

	// Providers
	vw := vworld.New(vworld.Config{
		APIKey:  cfg.VWorld.APIKey,
		BaseURL: cfg.VWorld.BaseURL,
		TileURL: cfg.VWorld.TileURL,
		Domain:  cfg.VWorld.Domain,
		Timeout: time.Duration(cfg.VWorld.Timeout) * time.Second,
	})
	tm := tmap.New(tmap.Config{
		AppKey:        cfg.TMAP.AppKey,
		PredictionURL: cfg.TMAP.PredictionURL,
		Timeout:       time.Duration(cfg.TMAP.Timeout) * time.Second,
	})
	if !vw.Configured() {
		slog.Warn("vworld key missing; parcel lookup disabled and map style falls back to OpenStreetMap")
	}
	if !tm.Configured() {
		slog.Warn("TMAP_APP_KEY or TMAP_PREDICTION_URL missing; route prediction disabled")
	}

	// Use cases
	parcelSvc := usecases.NewParcelService(vw, parcelCache, cfg.Cache.ParcelTTL)
	routeSvc := usecases.NewRouteService(tm)
	deps := &http.Dependencies{
		Surveys:       usecases.NewSurveyService(repos.surveys, publisher),
		LandChanges:   usecases.NewLandChangeService(repos.changes, repos.surveys, publisher),
		CivilRequests: usecases.NewCivilRequestService(repos.requests, repos.surveys, publisher, starter),
		Dashboard:     usecases.NewDashboardService(repos.surveys, repos.changes, repos.requests),
		Routes:        routeSvc,
		Maps: usecases.NewMapService(repos.surveys, repos.changes, repos.requests, parcelSvc, routeSvc,
			cfg.Map.MaxSessions, time.Duration(cfg.Map.SessionTTL)*time.Second),
		Parcels:        parcelSvc,
		Tiles:          vw,
		Events:         events,
		NATS:           natsConn,
		DB:             db,
		Cache:          cache,
		Providers:      map[string]bool{"vworld": vw.Configured(), "tmap": tm.Configured()},
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		MapTick:        cfg.Map.Tick(),
		SpecPath:       http.DefaultSpecPath,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Citrusfield API",
	})
	app.Use(recover.New())
	if cfg.Log.Format == "text" {
		// Console request lines for local runs.
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
