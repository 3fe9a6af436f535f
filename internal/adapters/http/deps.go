package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/citrusfield/internal/adapters/postgres"
	"github.com/samirrijal/citrusfield/internal/adapters/valkey"
	"github.com/samirrijal/citrusfield/internal/adapters/vworld"
	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
)

// TileSource serves base map tiles.
type TileSource interface {
	Tile(ctx context.Context, layer mapview.TileLayer, z, y, x int) (*vworld.Tile, error)
	Configured() bool
}

// EventSource delivers entity-changed events for live relays.
type EventSource interface {
	SubscribeEntityEvents(kind domain.EntityKind, handler func(domain.EntityEvent)) (func(), error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Surveys       *usecases.SurveyService
	LandChanges   *usecases.LandChangeService
	CivilRequests *usecases.CivilRequestService
	Dashboard     *usecases.DashboardService
	Routes        *usecases.RouteService
	Maps          *usecases.MapService
	Parcels       ports.ParcelProvider
	Tiles         TileSource  // optional
	Events        EventSource // optional
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache

	// Providers reports which external providers have credentials, for /v1/ready.
	Providers map[string]bool

	RequestTimeout time.Duration
	MapTick        time.Duration
	SpecPath       string // OpenAPI document served under /docs
}

func (d *Dependencies) timeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return 15 * time.Second
}

func (d *Dependencies) mapTick() time.Duration {
	if d.MapTick > 0 {
		return d.MapTick
	}
	return 50 * time.Millisecond
}
