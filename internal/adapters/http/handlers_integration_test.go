//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	handler "github.com/samirrijal/citrusfield/internal/adapters/http"
	"github.com/samirrijal/citrusfield/internal/adapters/postgres"
	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
	"github.com/samirrijal/citrusfield/internal/fixtures"
	"github.com/samirrijal/citrusfield/internal/pkg/config"
)

// setupTestDB connects to the test database, migrates it and seeds the fixtures.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("citrusfield-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if _, err := db.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	seed, err := fixtures.Load()
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	if _, err := postgres.Seed(ctx, db, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with real repositories and no providers.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	surveys := postgres.NewSurveyRepo(db)
	changes := postgres.NewLandChangeRepo(db)
	requests := postgres.NewCivilRequestRepo(db)

	return &handler.Dependencies{
		Surveys:       usecases.NewSurveyService(surveys, nil),
		LandChanges:   usecases.NewLandChangeService(changes, surveys, nil),
		CivilRequests: usecases.NewCivilRequestService(requests, surveys, nil, nil),
		Dashboard:     usecases.NewDashboardService(surveys, changes, requests),
		DB:            db,
	}
}

func TestDashboard_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats domain.DashboardStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.TotalSurveys < 4 || stats.LandChanges < 3 || stats.CivilRequests < 3 {
		t.Errorf("seeded records missing: %+v", stats)
	}
}

func TestGetSurvey_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/surveys/s-1", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var s domain.SurveyRecord
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if s.ID != "s-1" || len(s.Boundary) < 4 || len(s.SubRecords) == 0 {
		t.Errorf("JSONB round trip lost data: %+v", s)
	}
}

func TestDraftLandChange_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(t, db))

	// The first run creates the draft; later runs find it.
	resp, err := app.Test(httptest.NewRequest("POST", "/api/land-changes/lc-2/draft", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 201 && resp.StatusCode != 200 {
		t.Fatalf("expected 201 or 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("POST", "/api/land-changes/lc-2/draft", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("repeat draft: expected 200, got %d", resp.StatusCode)
	}
}
