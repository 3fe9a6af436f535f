package http

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestMatchesETag(t *testing.T) {
	etag := weakETag([]byte(`{"id":"s-1"}`))
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{etag, true},
		{"*", true},
		{`W/"deadbeef", ` + etag, true},
		{etag[2:], true}, // strong form of the same tag
		{`W/"deadbeef"`, false},
	}
	for _, tt := range tests {
		if got := matchesETag(tt.header, etag); got != tt.want {
			t.Errorf("matchesETag(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestETagMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ETagMiddleware())
	app.Get("/json", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/png", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send([]byte{0x89, 'P', 'N', 'G'})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/json", nil))
	if err != nil {
		t.Fatal(err)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag on JSON response")
	}

	req := httptest.NewRequest("GET", "/json", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotModified {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/png", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get("ETag") != "" {
		t.Error("tiles must not be tagged")
	}
}

func TestAccessLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/api/surveys", 200, slog.LevelInfo},
		{"/api/tiles/satellite/10/1/2", 200, slog.LevelDebug},
		{"/api/tiles/satellite/10/1/2", 502, slog.LevelError},
		{"/metrics", 200, slog.LevelDebug},
		{"/api/surveys/nope", 404, slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := accessLevel(tt.path, tt.status); got != tt.want {
			t.Errorf("accessLevel(%q, %d) = %v, want %v", tt.path, tt.status, got, tt.want)
		}
	}
}
