package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

// EventPublisher publishes entity-changed events to a message broker.
type EventPublisher interface {
	PublishEntityEvent(ctx context.Context, event domain.EntityEvent) error
}

// ErrCacheMiss is returned by CacheService.Get for an absent or expired key.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ParcelProvider looks up the cadastral parcel containing a point.
// A point outside every parcel yields an empty collection, not an error.
type ParcelProvider interface {
	ParcelAt(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error)
}

// RouteRequest is the body forwarded to the route-prediction provider.
type RouteRequest struct {
	RoutesInfo json.RawMessage `json:"routesInfo"`
	Query      RouteQuery      `json:"query"`
}

// RouteQuery tunes the route-prediction call. Empty fields take provider defaults.
type RouteQuery struct {
	Version          QueryValue `json:"version,omitempty"`
	ReqCoordType     QueryValue `json:"reqCoordType,omitempty"`
	ResCoordType     QueryValue `json:"resCoordType,omitempty"`
	Sort             QueryValue `json:"sort,omitempty"`
	TotalValue       QueryValue `json:"totalValue,omitempty"`
	TollgateFareInfo QueryValue `json:"tollgateFareInfo,omitempty"`
	TrafficInfo      QueryValue `json:"trafficInfo,omitempty"`
}

// QueryValue is a query parameter given as a JSON string, number or boolean.
// false and 0 decode to "" so that only truthy values are forwarded; any
// non-empty string, including "false" and "0", is kept as sent.
type QueryValue string

// UnmarshalJSON implements json.Unmarshaler.
func (q *QueryValue) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*q = ""
	case string:
		*q = QueryValue(t)
	case bool:
		*q = ""
		if t {
			*q = "true"
		}
	case float64:
		*q = ""
		if t != 0 {
			*q = QueryValue(strconv.FormatFloat(t, 'f', -1, 64))
		}
	default:
		return fmt.Errorf("query value must be a string, number or boolean")
	}
	return nil
}

// RoutePredictor forwards route-prediction requests and returns the raw JSON body.
type RoutePredictor interface {
	PredictRoute(ctx context.Context, req RouteRequest) ([]byte, error)
}

// WorkflowStarter starts long-running processing outside the request.
type WorkflowStarter interface {
	StartCivilRequestProcessing(ctx context.Context, requestID string) (string, error)
}
