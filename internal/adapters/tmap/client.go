// Package tmap forwards route-prediction requests to the TMAP API.
package tmap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
	"github.com/samirrijal/citrusfield/internal/pkg/telemetry"
)

const providerName = "tmap"

// Default query values.
const (
	DefaultVersion   = "1"
	DefaultCoordType = "WGS84GEO"
	DefaultSort      = "index"
)

// Config is the provider configuration, built once at startup.
type Config struct {
	AppKey        string
	PredictionURL string
	Timeout       time.Duration
}

// Client implements ports.RoutePredictor.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a client. A zero timeout means 15s.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Configured reports whether both the key and the endpoint are set.
func (c *Client) Configured() bool {
	return c.cfg.AppKey != "" && c.cfg.PredictionURL != ""
}

// PredictRoute posts {routesInfo} to the prediction endpoint and returns the
// provider's JSON body unchanged. The key travels in the appKey header only.
func (c *Client) PredictRoute(ctx context.Context, r ports.RouteRequest) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("TMAP_APP_KEY or TMAP_PREDICTION_URL is missing: %w", domain.ErrProviderNotConfigured)
	}

	ctx, span := otel.Tracer(telemetry.TracerProviders).Start(ctx, telemetry.SpanRoutePrediction)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrProvider, providerName))

	started := time.Now()
	body, status, err := c.predict(ctx, r)
	if status != 0 {
		span.SetAttributes(attribute.Int(telemetry.AttrStatusCode, status))
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.ObserveProvider(providerName, outcome, started)
	return body, err
}

func (c *Client) predict(ctx context.Context, r ports.RouteRequest) ([]byte, int, error) {
	routesInfo := r.RoutesInfo
	if len(routesInfo) == 0 {
		routesInfo = json.RawMessage("null")
	}
	payload, err := json.Marshal(struct {
		RoutesInfo json.RawMessage `json:"routesInfo"`
	}{routesInfo})
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	u, err := c.endpoint(r.Query)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("appKey", c.cfg.AppKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tmap request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read tmap response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.ErrorContext(ctx, "tmap error", "status", resp.StatusCode, "body", string(body))
		return nil, resp.StatusCode, &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    "TMAP request failed",
			Details:    string(body),
		}
	}
	return body, resp.StatusCode, nil
}

// endpoint merges the query into the configured URL. Optional flags are only
// sent when truthy.
func (c *Client) endpoint(q ports.RouteQuery) (string, error) {
	u, err := url.Parse(c.cfg.PredictionURL)
	if err != nil {
		return "", fmt.Errorf("parse prediction url: %w", err)
	}
	v := u.Query()
	v.Set("version", or(q.Version, DefaultVersion))
	v.Set("reqCoordType", or(q.ReqCoordType, DefaultCoordType))
	v.Set("resCoordType", or(q.ResCoordType, DefaultCoordType))
	v.Set("sort", or(q.Sort, DefaultSort))
	for name, val := range map[string]ports.QueryValue{
		"totalValue":       q.TotalValue,
		"tollgateFareInfo": q.TollgateFareInfo,
		"trafficInfo":      q.TrafficInfo,
	} {
		if truthy(val) {
			v.Set(name, string(val))
		}
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}

func or(v ports.QueryValue, def string) string {
	if v == "" {
		return def
	}
	return string(v)
}

// truthy follows the JSON the caller sent: false, 0 and "" arrive as "" and
// every other value, the strings "false" and "0" included, is forwarded.
func truthy(v ports.QueryValue) bool {
	return v != ""
}
