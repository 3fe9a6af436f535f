package vworld

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
)

func fakeProvider(t *testing.T, body string, capture *http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			*capture = *r
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParcelAt_NoKey(t *testing.T) {
	_, err := New(Config{BaseURL: "http://127.0.0.1:1"}).ParcelAt(context.Background(), 126.6, 33.3)
	if !errors.Is(err, domain.ErrProviderNotConfigured) {
		t.Fatalf("err = %v, want ErrProviderNotConfigured", err)
	}
}

func TestParcelAt_NotFound(t *testing.T) {
	srv := fakeProvider(t, `{"response":{"status":"NOT_FOUND"}}`, nil)
	fc, err := New(Config{APIKey: "k", BaseURL: srv.URL}).ParcelAt(context.Background(), 126.6, 33.3)
	if err != nil {
		t.Fatalf("ParcelAt: %v", err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("features = %d, want 0", len(fc.Features))
	}
}

func TestParcelAt_OK(t *testing.T) {
	var req http.Request
	srv := fakeProvider(t, `{"response":{"status":"OK","result":{"featureCollection":{
		"type":"FeatureCollection",
		"features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[126,33],[126.1,33],[126.1,33.1],[126,33]]]},"properties":{"pnu":"5013032022100010000"}}]
	}}}}`, &req)

	fc, err := New(Config{APIKey: "k", BaseURL: srv.URL}).ParcelAt(context.Background(), 126.05, 33.02)
	if err != nil {
		t.Fatalf("ParcelAt: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
	if fc.Features[0].Properties.MustString("pnu") != "5013032022100010000" {
		t.Errorf("pnu = %v", fc.Features[0].Properties["pnu"])
	}

	q := req.URL.Query()
	if q.Get("geomFilter") != "POINT(126.05 33.02)" {
		t.Errorf("geomFilter = %q", q.Get("geomFilter"))
	}
	if q.Get("data") != ParcelLayer || q.Get("crs") != "EPSG:4326" || q.Get("geometry") != "true" {
		t.Errorf("query = %v", q)
	}
}

func TestParcelAt_ProviderError(t *testing.T) {
	srv := fakeProvider(t, `{"response":{"status":"ERROR","error":{"code":"INVALID_KEY","text":"등록되지 않은 인증키입니다."}}}`, nil)
	_, err := New(Config{APIKey: "bad", BaseURL: srv.URL}).ParcelAt(context.Background(), 126.6, 33.3)

	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *domain.ProviderError", err)
	}
	if pe.Message != "INVALID_KEY: 등록되지 않은 인증키입니다." {
		t.Errorf("message = %q", pe.Message)
	}
}

func TestParcelAt_Garbage(t *testing.T) {
	srv := fakeProvider(t, `<html>oops</html>`, nil)
	_, err := New(Config{APIKey: "k", BaseURL: srv.URL}).ParcelAt(context.Background(), 126.6, 33.3)
	if err == nil {
		t.Fatal("expected decode error")
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		t.Error("decode failure should not be a provider error")
	}
}

func TestTile_ClampsZoom(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xff, 0xd8})
	}))
	defer srv.Close()

	tile, err := New(Config{APIKey: "k", TileURL: srv.URL + "/wmts"}).Tile(context.Background(), mapview.TileSatellite, 21, 100, 200)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}
	if path != "/wmts/k/Satellite/18/100/200.jpeg" {
		t.Errorf("path = %q", path)
	}
	if tile.ContentType != "image/jpeg" || len(tile.Data) != 2 {
		t.Errorf("tile = %+v", tile)
	}
}
