package vworld

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
	"github.com/samirrijal/citrusfield/internal/pkg/telemetry"
)

// Tile is a fetched map tile.
type Tile struct {
	ContentType string
	Data        []byte
}

// Tile fetches one WMTS tile. Zoom levels past the deepest served level are
// clamped so over-zoomed maps still get imagery.
func (c *Client) Tile(ctx context.Context, layer mapview.TileLayer, z, y, x int) (*Tile, error) {
	if c.cfg.APIKey == "" || c.cfg.TileURL == "" {
		return nil, fmt.Errorf("vworld tiles: %w", domain.ErrProviderNotConfigured)
	}
	z = mapview.ClampTileZoom(z)

	ctx, span := otel.Tracer(telemetry.TracerProviders).Start(ctx, telemetry.SpanTileFetch)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrTileLayer, string(layer)),
		attribute.Int(telemetry.AttrTileZoom, z),
	)

	u := fmt.Sprintf("%s/%s/%s/%d/%d/%d.%s", c.cfg.TileURL, c.cfg.APIKey, layer, z, y, x, layer.Ext())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveProvider(providerName+"_tiles", "error", started)
		return nil, fmt.Errorf("vworld tile: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveProvider(providerName+"_tiles", "error", started)
		return nil, fmt.Errorf("read tile: %w", err)
	}
	span.SetAttributes(attribute.Int(telemetry.AttrStatusCode, resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		metrics.ObserveProvider(providerName+"_tiles", "error", started)
		return nil, &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    "tile " + strconv.Itoa(z) + "/" + strconv.Itoa(y) + "/" + strconv.Itoa(x) + " unavailable",
		}
	}
	metrics.ObserveProvider(providerName+"_tiles", "ok", started)

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "image/" + layer.Ext()
	}
	return &Tile{ContentType: ct, Data: data}, nil
}
