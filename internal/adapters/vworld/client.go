// Package vworld is a client for the VWorld cadastral data and map tile APIs.
package vworld

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
	"github.com/samirrijal/citrusfield/internal/pkg/telemetry"
)

const (
	providerName = "vworld"
	// ParcelLayer is the continuous cadastral map layer.
	ParcelLayer = "LP_PA_CBND_BUBUN"

	statusOK       = "OK"
	statusNotFound = "NOT_FOUND"
)

// Config is the provider configuration, built once at startup.
type Config struct {
	APIKey  string
	BaseURL string // data API, e.g. https://api.vworld.kr/req/data
	TileURL string // WMTS root, e.g. https://api.vworld.kr/req/wmts/1.0.0
	Domain  string // registered referrer domain
	Timeout time.Duration
}

// Client implements ports.ParcelProvider.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a client. A zero timeout means 10s.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Domain == "" {
		cfg.Domain = "localhost"
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Configured reports whether the client has a key.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type envelope struct {
	Response struct {
		Status string          `json:"status"`
		Error  json.RawMessage `json:"error"`
		Result struct {
			FeatureCollection json.RawMessage `json:"featureCollection"`
		} `json:"result"`
	} `json:"response"`
}

// ParcelAt returns the parcels whose polygon contains the point, with full
// geometry in EPSG:4326. A point on no parcel yields an empty collection.
func (c *Client) ParcelAt(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("vworld key: %w", domain.ErrProviderNotConfigured)
	}

	ctx, span := otel.Tracer(telemetry.TracerProviders).Start(ctx, telemetry.SpanParcelLookup)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrProvider, providerName),
		attribute.Float64(telemetry.AttrLng, lng),
		attribute.Float64(telemetry.AttrLat, lat),
	)

	started := time.Now()
	fc, err := c.parcelAt(ctx, lng, lat)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.ObserveProvider(providerName, outcome, started)
	return fc, err
}

func (c *Client) parcelAt(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.parcelURL(lng, lat), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vworld request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read vworld response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode vworld response (HTTP %d): %w", resp.StatusCode, err)
	}

	switch env.Response.Status {
	case statusNotFound:
		return geojson.NewFeatureCollection(), nil
	case statusOK:
	default:
		slog.ErrorContext(ctx, "vworld error", "status", env.Response.Status, "error", string(env.Response.Error))
		return nil, &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    errorText(env.Response.Error, env.Response.Status),
			Details:    string(env.Response.Error),
		}
	}

	if len(env.Response.Result.FeatureCollection) == 0 {
		return nil, errors.New("vworld response has no feature collection")
	}
	fc, err := geojson.UnmarshalFeatureCollection(env.Response.Result.FeatureCollection)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	return fc, nil
}

func (c *Client) parcelURL(lng, lat float64) string {
	q := url.Values{}
	q.Set("service", "data")
	q.Set("request", "GetFeature")
	q.Set("data", ParcelLayer)
	q.Set("key", c.cfg.APIKey)
	q.Set("domain", c.cfg.Domain)
	q.Set("format", "json")
	q.Set("geomFilter", "POINT("+formatCoord(lng)+" "+formatCoord(lat)+")")
	q.Set("geometry", "true")
	q.Set("crs", "EPSG:4326")
	return c.cfg.BaseURL + "?" + q.Encode()
}

// errorText pulls the human message out of the provider's error object,
// which is either a string or {"code":..., "text":...}.
func errorText(raw json.RawMessage, status string) string {
	if len(raw) == 0 {
		return status
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Code string `json:"code"`
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.Text != "" {
		if obj.Code != "" {
			return obj.Code + ": " + obj.Text
		}
		return obj.Text
	}
	return strings.TrimSpace(string(raw))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
