package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPISpec locates api/openapi.yaml by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()
	data, err := os.ReadFile(findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return doc
}

// TestOpenAPISpec validates the OpenAPI document and checks it covers the routes.
func TestOpenAPISpec(t *testing.T) {
	doc := loadOpenAPI(t)

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/api/dashboard",
		"/api/surveys",
		"/api/surveys/regions",
		"/api/surveys/varieties",
		"/api/surveys/{id}",
		"/api/surveys/{id}/boundary",
		"/api/surveys/{id}/sub-records",
		"/api/surveys/{id}/sub-records/{subId}",
		"/api/land-changes",
		"/api/land-changes/months",
		"/api/land-changes/{id}",
		"/api/land-changes/{id}/draft",
		"/api/civil-requests",
		"/api/civil-requests/{id}",
		"/api/civil-requests/{id}/process",
		"/api/land",
		"/api/tmap/route-prediction",
		"/api/map/style",
		"/api/tiles/{layer}/{z}/{y}/{x}",
		"/api/map/sessions",
		"/api/map/sessions/{id}",
		"/api/map/sessions/{id}/parcel",
		"/api/map/sessions/{id}/route",
		"/api/map/sessions/{id}/layers",
		"/api/map/sessions/{id}/summary",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found", path)
		}
	}

	expectedSchemas := []string{
		"SurveyRecord",
		"SurveySubRecord",
		"LandChange",
		"CivilRequest",
		"DashboardStats",
		"FeatureCollection",
		"RouteRequest",
		"MapSession",
		"Layer",
		"APIError",
		"Pagination",
	}
	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI document valid: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

// TestOpenAPIInfo verifies document metadata.
func TestOpenAPIInfo(t *testing.T) {
	doc := loadOpenAPI(t)

	if doc.Info.Title != "Citrusfield Field Survey API" {
		t.Errorf("expected title 'Citrusfield Field Survey API', got %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}
	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(doc.Servers) == 0 {
		t.Fatal("expected at least one server")
	}
}

func TestDocsServeParsedDocument(t *testing.T) {
	deps := makeDeps(t, providers{})
	deps.SpecPath = findOpenAPISpec(t)
	app := setupApp(deps)

	resp := do(t, app, "GET", "/docs/openapi.json", "")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	decode(t, resp, &doc)
	if doc.Info.Title != "Citrusfield Field Survey API" || doc.OpenAPI != "3.0.3" {
		t.Errorf("unexpected document header: %+v", doc)
	}

	if resp := do(t, app, "GET", "/docs", ""); resp.StatusCode != 200 {
		t.Errorf("swagger ui: expected 200, got %d", resp.StatusCode)
	}
}

func TestDocsMissingDocument(t *testing.T) {
	deps := makeDeps(t, providers{})
	deps.SpecPath = filepath.Join(t.TempDir(), "missing.yaml")
	app := setupApp(deps)

	resp := do(t, app, "GET", "/docs/openapi.yaml", "")
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
