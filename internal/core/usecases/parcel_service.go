package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
)

// ParcelService looks up cadastral parcels through a cache.
// Parcels change rarely, so lookups are keyed on the point rounded to ~1cm.
type ParcelService struct {
	provider ports.ParcelProvider
	cache    ports.CacheService // optional
	ttl      int                // seconds
}

// NewParcelService creates a new ParcelService. cache may be nil.
func NewParcelService(provider ports.ParcelProvider, cache ports.CacheService, ttlSeconds int) *ParcelService {
	return &ParcelService{provider: provider, cache: cache, ttl: ttlSeconds}
}

// ParcelAt returns the parcels containing the point. Provider errors are
// returned unchanged and never cached.
func (s *ParcelService) ParcelAt(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error) {
	key := fmt.Sprintf("parcel:%.7f:%.7f", lng, lat)

	if s.cache != nil {
		if b, err := s.cache.Get(ctx, key); err == nil {
			fc, derr := geojson.UnmarshalFeatureCollection(b)
			if derr == nil {
				metrics.CacheRequests.WithLabelValues("parcel", "hit").Inc()
				return fc, nil
			}
			slog.Warn("discarding undecodable cached parcel", "key", key, "error", derr)
		} else if !errors.Is(err, ports.ErrCacheMiss) {
			slog.Warn("parcel cache get failed", "key", key, "error", err)
		}
		metrics.CacheRequests.WithLabelValues("parcel", "miss").Inc()
	}

	fc, err := s.provider.ParcelAt(ctx, lng, lat)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if b, err := json.Marshal(fc); err == nil {
			if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
				slog.Warn("parcel cache set failed", "key", key, "error", err)
			}
		}
	}
	return fc, nil
}
