package usecases_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
)

func newMapService(parcels ports.ParcelProvider, predictor ports.RoutePredictor) *usecases.MapService {
	surveys := sampleSurveys()
	surveys[0].Coordinates = domain.Coordinates{Lng: 126.6005, Lat: 33.2805}
	surveys[0].Boundary = [][]float64{{126.6, 33.28}, {126.601, 33.28}, {126.601, 33.281}, {126.6, 33.281}, {126.6, 33.28}}
	surveys[1].Coordinates = domain.Coordinates{Lng: 126.65, Lat: 33.3}

	if parcels == nil {
		parcels = &mockParcels{}
	}
	if predictor == nil {
		predictor = &mockPredictor{}
	}
	return usecases.NewMapService(
		surveyRepo(surveys...),
		landChangeRepo(sampleLandChanges()...),
		civilRequestRepo(sampleCivilRequests()...),
		parcels,
		usecases.NewRouteService(predictor),
		16,
		time.Minute,
	)
}

func layerIDs(layers []mapview.Layer) []string {
	return ids(layers, func(l mapview.Layer) string { return l.ID })
}

func TestMapService_Create(t *testing.T) {
	svc := newMapService(nil, nil)

	v, err := svc.Create(context.Background(), usecases.SessionOptions{Source: domain.KindSurvey, SelectedID: "s-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Entities) != 3 || v.Mode != mapview.ModeSatellite || v.SelectedID != "s-2" {
		t.Errorf("unexpected session: %+v", v)
	}
	if v.Start == nil || v.End == nil || v.Start.Lng != 126.6005 || v.End.Lng != 126.65 {
		t.Errorf("endpoints should default to the first two entities: %+v %+v", v.Start, v.End)
	}

	civil, err := svc.Create(context.Background(), usecases.SessionOptions{Source: domain.KindCivilRequest, IDs: []string{"cr-3", "cr-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(civil.Entities) != 2 || civil.Entities[0].Status != "pending" || civil.Entities[1].Status != "completed" {
		t.Errorf("civil entities = %+v", civil.Entities)
	}

	if _, err := svc.Create(context.Background(), usecases.SessionOptions{Source: "farms"}); err == nil {
		t.Error("unknown source should fail")
	}
}

func TestMapService_RouteAndLayers(t *testing.T) {
	svc := newMapService(nil, &mockPredictor{predictFn: func(ctx context.Context, req ports.RouteRequest) ([]byte, error) {
		return []byte(routeBody), nil
	}})
	ctx := context.Background()
	v, _ := svc.Create(ctx, usecases.SessionOptions{Source: domain.KindSurvey})

	if _, err := svc.Summary(v.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("summary before route: expected ErrNotFound, got %v", err)
	}

	v, err := svc.Route(ctx, v.ID)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if !v.HasRoute || v.Summary == nil || v.Summary.TotalDistance != 12345 {
		t.Errorf("route not stored: %+v", v)
	}

	layers, err := svc.Layers(v.ID, 42)
	if err != nil {
		t.Fatalf("layers: %v", err)
	}
	want := []string{
		mapview.LayerIDTrees, mapview.LayerIDInfoLabels,
		mapview.LayerIDRouteBase, mapview.LayerIDRoutePulse,
		mapview.LayerIDRoutePoints, mapview.LayerIDRouteLabels, mapview.LayerIDRouteInfoText,
	}
	got := layerIDs(layers)
	if len(got) != len(want) {
		t.Fatalf("layers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("layer %d = %s, want %s", i, got[i], want[i])
		}
	}

	start := domain.Coordinates{Lng: 126.7, Lat: 33.3}
	v, _ = svc.Update(v.ID, usecases.SessionUpdate{Start: &start})
	if v.HasRoute {
		t.Error("moving an endpoint should drop the route")
	}
}

func TestMapService_RouteWithoutEndpoints(t *testing.T) {
	called := false
	svc := newMapService(nil, &mockPredictor{predictFn: func(ctx context.Context, req ports.RouteRequest) ([]byte, error) {
		called = true
		return nil, nil
	}})
	v, _ := svc.Create(context.Background(), usecases.SessionOptions{Source: domain.KindSurvey, IDs: []string{"s-1"}})

	if _, err := svc.Route(context.Background(), v.ID); !errors.Is(err, domain.ErrMissingEndpoints) {
		t.Errorf("expected ErrMissingEndpoints, got %v", err)
	}
	if called {
		t.Error("predictor must not be called")
	}
}

func TestMapService_Parcel(t *testing.T) {
	var empty atomic.Bool
	svc := newMapService(&mockParcels{parcelAtFn: func(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error) {
		if empty.Load() {
			return geojson.NewFeatureCollection(), nil
		}
		return parcelCollection("pnu-1"), nil
	}}, nil)
	ctx := context.Background()
	v, _ := svc.Create(ctx, usecases.SessionOptions{Source: domain.KindSurvey})

	v, err := svc.Parcel(ctx, v.ID, 126.6005, 33.2805)
	if err != nil {
		t.Fatalf("parcel: %v", err)
	}
	if v.Parcel == nil || v.Parcel.Properties.MustString("pnu") != "pnu-1" {
		t.Errorf("parcel not selected: %+v", v.Parcel)
	}
	if v.SelectedID != "s-1" {
		t.Errorf("point inside s-1 should select it, got %q", v.SelectedID)
	}

	layers, _ := svc.Layers(v.ID, 0)
	if got := layerIDs(layers); len(got) < 3 || got[2] != mapview.LayerIDSelectedLand {
		t.Errorf("layers = %v, want selected parcel after the entity layers", got)
	}

	empty.Store(true)
	v, err = svc.Parcel(ctx, v.ID, 127, 34)
	if err != nil {
		t.Fatalf("parcel: %v", err)
	}
	if v.Parcel != nil {
		t.Error("a point on no parcel should clear the selection")
	}
}

func TestMapService_ParcelLookupFailureKeepsSelection(t *testing.T) {
	var fail atomic.Bool
	svc := newMapService(&mockParcels{parcelAtFn: func(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error) {
		if fail.Load() {
			return nil, errors.New("connection reset")
		}
		return parcelCollection("pnu-1"), nil
	}}, nil)
	ctx := context.Background()
	v, _ := svc.Create(ctx, usecases.SessionOptions{Source: domain.KindSurvey})
	svc.Parcel(ctx, v.ID, 126.6005, 33.2805)

	fail.Store(true)
	if _, err := svc.Parcel(ctx, v.ID, 126.6005, 33.2805); err == nil {
		t.Fatal("expected error")
	}
	v, _ = svc.Get(v.ID)
	if v.Parcel == nil {
		t.Error("a failed lookup must not clear the selected parcel")
	}
}

func TestMapService_NewerParcelLookupWins(t *testing.T) {
	var calls atomic.Int32
	firstStarted := make(chan struct{})
	svc := newMapService(&mockParcels{parcelAtFn: func(ctx context.Context, lng, lat float64) (*geojson.FeatureCollection, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return parcelCollection("newer"), nil
	}}, nil)
	ctx := context.Background()
	v, _ := svc.Create(ctx, usecases.SessionOptions{Source: domain.KindSurvey})

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Parcel(ctx, v.ID, 1, 1)
		firstErr <- err
	}()
	<-firstStarted

	got, err := svc.Parcel(ctx, v.ID, 2, 2)
	if err != nil {
		t.Fatalf("newer lookup: %v", err)
	}
	if got.Parcel.Properties.MustString("pnu") != "newer" {
		t.Errorf("parcel = %v", got.Parcel.Properties)
	}

	select {
	case err := <-firstErr:
		if !errors.Is(err, domain.ErrSuperseded) {
			t.Errorf("older lookup: expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("older lookup was not cancelled")
	}

	v, _ = svc.Get(v.ID)
	if v.Parcel.Properties.MustString("pnu") != "newer" {
		t.Error("older lookup must not overwrite the newer result")
	}
}

func TestMapService_EndpointChangeDropsRouteInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := newMapService(nil, &mockPredictor{predictFn: func(ctx context.Context, req ports.RouteRequest) ([]byte, error) {
		close(started)
		<-release // answers for the old endpoints even after cancellation
		return []byte(routeBody), nil
	}})
	ctx := context.Background()
	v, _ := svc.Create(ctx, usecases.SessionOptions{Source: domain.KindSurvey})

	routeErr := make(chan error, 1)
	go func() {
		_, err := svc.Route(ctx, v.ID)
		routeErr <- err
	}()
	<-started

	if _, err := svc.Update(v.ID, usecases.SessionUpdate{Start: &domain.Coordinates{Lng: 127, Lat: 34}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	close(release)

	select {
	case err := <-routeErr:
		if !errors.Is(err, domain.ErrSuperseded) {
			t.Errorf("route for old endpoints: expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("route did not return")
	}

	v, err := svc.Get(v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.HasRoute || v.Summary != nil {
		t.Errorf("stale route applied to new endpoints: %+v", v)
	}
	if v.Start == nil || v.Start.Lng != 127 {
		t.Errorf("start = %+v", v.Start)
	}
	for _, id := range layerIDs(mustLayers(t, svc, v.ID)) {
		if id == mapview.LayerIDRouteInfoText || id == mapview.LayerIDRouteBase {
			t.Errorf("unexpected route layer %q", id)
		}
	}
}

func mustLayers(t *testing.T, svc *usecases.MapService, id string) []mapview.Layer {
	t.Helper()
	layers, err := svc.Layers(id, 0)
	if err != nil {
		t.Fatalf("layers: %v", err)
	}
	return layers
}

func TestMapService_UpdateAndDelete(t *testing.T) {
	svc := newMapService(nil, nil)
	v, _ := svc.Create(context.Background(), usecases.SessionOptions{Source: domain.KindLandChange})
	if v.Entities[0].Type != "new" {
		t.Errorf("land change entities keep their type: %+v", v.Entities[0])
	}

	bad := "hybrid"
	if _, err := svc.Update(v.ID, usecases.SessionUpdate{Mode: &bad}); err == nil {
		t.Error("unknown mode should fail")
	}
	mode := "standard"
	v, err := svc.Update(v.ID, usecases.SessionUpdate{Mode: &mode})
	if err != nil || v.Mode != mapview.ModeStandard {
		t.Errorf("mode not updated: %v %+v", err, v)
	}

	if err := svc.Delete(v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(v.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(v.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
