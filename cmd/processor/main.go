package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/citrusfield/internal/adapters/nats"
	"github.com/samirrijal/citrusfield/internal/adapters/postgres"
	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
	"github.com/samirrijal/citrusfield/internal/pkg/config"
	"github.com/samirrijal/citrusfield/internal/pkg/logging"
	"github.com/samirrijal/citrusfield/internal/workflows"
)

func main() {
	cfg, err := config.Load("citrusfield-processor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// The worker shares records with the API, so it needs the database.
	if cfg.Storage.Driver != "postgres" {
		log.Fatalf("processor requires storage.driver=postgres, got %q", cfg.Storage.Driver)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		nc, err := natsadapter.Connect(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer nc.Close()
			if p, err := natsadapter.NewPublisher(nc); err != nil {
				slog.Warn("event publishing disabled", "error", err)
			} else {
				publisher = p
			}
		}
	}

	surveys := postgres.NewSurveyRepo(db)
	requests := usecases.NewCivilRequestService(postgres.NewCivilRequestRepo(db), surveys, publisher, nil)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ProcessCivilRequestWorkflow)
	w.RegisterActivity(&workflows.CivilRequestActivities{Requests: requests})

	slog.Info("civil request worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
