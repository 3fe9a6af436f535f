package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samirrijal/citrusfield/internal/adapters/postgres"
	"github.com/samirrijal/citrusfield/internal/fixtures"
	"github.com/samirrijal/citrusfield/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed>")
	}

	cfg, err := config.Load("citrusfield-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		applied, err := db.MigrateUp(ctx)
		report(applied, err)
		log.Println("all migrations applied")
		seed(ctx, db)
	case "down":
		applied, err := db.MigrateDown(ctx)
		report(applied, err)
		log.Println("all migrations reverted")
	case "seed":
		seed(ctx, db)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func report(applied []string, err error) {
	for _, f := range applied {
		fmt.Printf("OK  %s\n", f)
	}
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

// seed inserts the fixture records that are not in the database yet.
func seed(ctx context.Context, db *postgres.DB) {
	data, err := fixtures.Load()
	if err != nil {
		log.Fatalf("fixtures: %v", err)
	}
	res, err := postgres.Seed(ctx, db, data)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("seeded %d surveys, %d land changes, %d civil requests\n",
		res.Surveys, res.LandChanges, res.CivilRequests)
}
