package usecases_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// --- In-memory repositories ---

type fakeRepo[T any] struct {
	mu     sync.Mutex
	order  []string
	items  map[string]T
	idOf   func(*T) string
	saveFn func(v *T) error
}

func newFakeRepo[T any](idOf func(*T) string, items ...T) *fakeRepo[T] {
	r := &fakeRepo[T]{items: map[string]T{}, idOf: idOf}
	for i := range items {
		r.put(&items[i])
	}
	return r
}

func (r *fakeRepo[T]) put(v *T) {
	id := r.idOf(v)
	if _, ok := r.items[id]; !ok {
		r.order = append(r.order, id)
	}
	r.items[id] = deepCopy(*v)
}

func (r *fakeRepo[T]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, deepCopy(r.items[id]))
	}
	return out, nil
}

func (r *fakeRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	cp := deepCopy(v)
	return &cp, nil
}

func (r *fakeRepo[T]) Save(ctx context.Context, v *T) error {
	if r.saveFn != nil {
		if err := r.saveFn(v); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(v)
	return nil
}

func deepCopy[T any](v T) T {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

func surveyRepo(items ...domain.SurveyRecord) *fakeRepo[domain.SurveyRecord] {
	return newFakeRepo(func(s *domain.SurveyRecord) string { return s.ID }, items...)
}

func landChangeRepo(items ...domain.LandChange) *fakeRepo[domain.LandChange] {
	return newFakeRepo(func(lc *domain.LandChange) string { return lc.ID }, items...)
}

func civilRequestRepo(items ...domain.CivilRequest) *fakeRepo[domain.CivilRequest] {
	return newFakeRepo(func(cr *domain.CivilRequest) string { return cr.ID }, items...)
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.EntityEvent
	err    error
}

func (m *mockPublisher) PublishEntityEvent(ctx context.Context, ev domain.EntityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

func (m *mockPublisher) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Action
	}
	return out
}

// --- Mock ParcelProvider ---

type mockParcels struct {
	parcelAtFn func(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error)
}

func (m *mockParcels) ParcelAt(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error) {
	if m.parcelAtFn != nil {
		return m.parcelAtFn(ctx, lng, lat)
	}
	return geojson.NewFeatureCollection(), nil
}

// --- Mock RoutePredictor ---

type mockPredictor struct {
	predictFn func(ctx context.Context, req ports.RouteRequest) ([]byte, error)
}

func (m *mockPredictor) PredictRoute(ctx context.Context, req ports.RouteRequest) ([]byte, error) {
	if m.predictFn != nil {
		return m.predictFn(ctx, req)
	}
	return []byte(`{"type":"FeatureCollection","features":[]}`), nil
}

// --- Mock WorkflowStarter ---

type mockStarter struct {
	startFn func(ctx context.Context, id string) (string, error)
}

func (m *mockStarter) StartCivilRequestProcessing(ctx context.Context, id string) (string, error) {
	if m.startFn != nil {
		return m.startFn(ctx, id)
	}
	return "process-civil-request-" + id, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return b, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// routeBody is a minimal prediction response: start point with totals and one segment.
const routeBody = `{"type":"FeatureCollection","features":[
	{"type":"Feature","geometry":{"type":"Point","coordinates":[126.6,33.28]},"properties":{"index":0,"pointType":"S","totalDistance":12345,"totalTime":1020}},
	{"type":"Feature","geometry":{"type":"LineString","coordinates":[[126.6,33.28],[126.61,33.281],[126.62,33.282]]},"properties":{"index":1,"lineIndex":0,"distance":"800","time":60}},
	{"type":"Feature","geometry":{"type":"Point","coordinates":[126.62,33.282]},"properties":{"index":2,"pointType":"E"}}
]}`
