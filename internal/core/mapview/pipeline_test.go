package mapview_test

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
)

func routeFixture() []domain.Feature {
	return []domain.Feature{
		domain.PointFeature{
			Coordinates: orb.Point{126.6, 33.3},
			Properties: domain.PointProperties{
				PointType:     "S",
				TotalDistance: 12345,
				TotalTime:     1020,
			},
		},
		domain.LineFeature{
			Coordinates: orb.LineString{{126.6, 33.3}, {126.61, 33.31}, {126.62, 33.32}},
			Properties:  domain.LineProperties{LineIndex: 1},
		},
		domain.OtherFeature{GeometryType: "Polygon", Raw: json.RawMessage(`{"type":"Feature"}`)},
		domain.PointFeature{
			Coordinates: orb.Point{126.62, 33.32},
			Properties:  domain.PointProperties{PointType: "E"},
		},
		domain.LineFeature{
			Coordinates: orb.LineString{{126.62, 33.32}, {126.63, 33.33}},
			Properties:  domain.LineProperties{LineIndex: 2},
		},
	}
}

func TestClassify_DisjointAndOrdered(t *testing.T) {
	points, lines := mapview.Classify(routeFixture())

	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if points[0].Properties.PointType != "S" || points[1].Properties.PointType != "E" {
		t.Errorf("points out of order: %+v", points)
	}
	if lines[0].Properties.LineIndex != 1 || lines[1].Properties.LineIndex != 2 {
		t.Errorf("lines out of order: %+v", lines)
	}
}

func TestClassify_Empty(t *testing.T) {
	points, lines := mapview.Classify(nil)
	if len(points) != 0 || len(lines) != 0 {
		t.Fatalf("expected nothing, got %d points %d lines", len(points), len(lines))
	}
}

func TestClassify_Idempotent(t *testing.T) {
	in := routeFixture()
	p1, l1 := mapview.Classify(in)
	p2, l2 := mapview.Classify(in)
	if !reflect.DeepEqual(p1, p2) || !reflect.DeepEqual(l1, l2) {
		t.Fatal("classification differs between calls")
	}
}

func TestTimestamps(t *testing.T) {
	tests := []struct {
		n    int
		want []float64
	}{
		{0, []float64{}},
		{1, []float64{0}},
		{2, []float64{0, 100}},
		{5, []float64{0, 25, 50, 75, 100}},
	}
	for _, tt := range tests {
		got := mapview.Timestamps(tt.n)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Timestamps(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestTrips_SinglePointHasNoNaN(t *testing.T) {
	trips := mapview.Trips([]domain.LineFeature{{Coordinates: orb.LineString{{126.5, 33.2}}}})
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	for _, ts := range trips[0].Timestamps {
		if math.IsNaN(ts) || math.IsInf(ts, 0) {
			t.Fatalf("bad timestamp %v", ts)
		}
	}
	if trips[0].Timestamps[0] != 0 {
		t.Errorf("expected 0, got %v", trips[0].Timestamps[0])
	}
}

func TestTrips_NonDecreasingOverFullSpan(t *testing.T) {
	_, lines := mapview.Classify(routeFixture())
	for _, trip := range mapview.Trips(lines) {
		if len(trip.Path) != len(trip.Timestamps) {
			t.Fatalf("path/timestamp length mismatch: %d vs %d", len(trip.Path), len(trip.Timestamps))
		}
		for i := 1; i < len(trip.Timestamps); i++ {
			if trip.Timestamps[i] < trip.Timestamps[i-1] {
				t.Fatalf("timestamps decrease: %v", trip.Timestamps)
			}
		}
		if trip.Timestamps[0] != 0 || trip.Timestamps[len(trip.Timestamps)-1] != mapview.TripSpan {
			t.Errorf("timestamps do not span [0,100]: %v", trip.Timestamps)
		}
	}
}

func TestSummary(t *testing.T) {
	s, ok := mapview.Summary(routeFixture())
	if !ok {
		t.Fatal("expected a summary")
	}
	if s.TotalDistance != 12345 || s.TotalTime != 1020 {
		t.Errorf("unexpected summary %+v", s)
	}
	if got := mapview.SummaryText(s); got != "12.3km | 17분" {
		t.Errorf("unexpected summary text %q", got)
	}
}

func TestSummary_Absent(t *testing.T) {
	features := []domain.Feature{
		domain.PointFeature{Properties: domain.PointProperties{PointType: "E"}},
	}
	if _, ok := mapview.Summary(features); ok {
		t.Fatal("expected no summary")
	}
}

func sceneFixture() mapview.Scene {
	return mapview.Scene{
		Entities: []domain.MapEntity{
			{ID: "s-1", Coordinates: domain.Coordinates{Lat: 33.28, Lng: 126.71}, Address: "남원읍 1", TreeCount: 120},
			{ID: "s-2", Coordinates: domain.Coordinates{Lat: 33.29, Lng: 126.72}},
		},
		SelectedID: "s-1",
		Mode:       mapview.ModeSatellite,
		Route:      &domain.FeatureCollection{Features: routeFixture()},
		Start:      &domain.Coordinates{Lat: 33.28, Lng: 126.71},
		End:        &domain.Coordinates{Lat: 33.29, Lng: 126.72},
		Time:       42,
	}
}

func TestCompose_UniqueIDsAndOrder(t *testing.T) {
	layers := mapview.Compose(sceneFixture())

	want := []string{
		mapview.LayerIDTrees,
		mapview.LayerIDInfoLabels,
		mapview.LayerIDRouteBase,
		mapview.LayerIDRoutePulse,
		mapview.LayerIDRoutePoints,
		mapview.LayerIDRouteLabels,
		mapview.LayerIDRouteInfoText,
	}
	if len(layers) != len(want) {
		t.Fatalf("expected %d layers, got %d", len(want), len(layers))
	}

	seen := map[string]bool{}
	dynamic := false
	for i, l := range layers {
		if l.ID != want[i] {
			t.Errorf("layer %d: expected %s, got %s", i, want[i], l.ID)
		}
		if seen[l.ID] {
			t.Errorf("duplicate layer id %s", l.ID)
		}
		seen[l.ID] = true
		if l.Group == mapview.GroupDynamic {
			dynamic = true
		} else if dynamic {
			t.Errorf("static layer %s after a dynamic one", l.ID)
		}
	}
}

func TestCompose_Idempotent(t *testing.T) {
	scene := sceneFixture()
	a := mapview.Compose(scene)
	b := mapview.Compose(scene)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical scenes produced different layers")
	}
}

func TestCompose_DoesNotMutateScene(t *testing.T) {
	scene := sceneFixture()
	before, err := json.Marshal(scene.Route)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	entities := append([]domain.MapEntity(nil), scene.Entities...)

	_ = mapview.Compose(scene)

	after, _ := json.Marshal(scene.Route)
	if string(before) != string(after) {
		t.Error("route was modified")
	}
	if !reflect.DeepEqual(entities, scene.Entities) {
		t.Error("entities were modified")
	}
}

func TestCompose_NoRouteNoEndpoints(t *testing.T) {
	layers := mapview.Compose(mapview.Scene{
		Entities: []domain.MapEntity{{ID: "cr-1"}},
	})
	if len(layers) != 2 {
		t.Fatalf("expected only static layers, got %d", len(layers))
	}
}

func TestCompose_SummaryTextNeedsSummaryPoint(t *testing.T) {
	scene := sceneFixture()
	scene.Route = &domain.FeatureCollection{Features: routeFixture()[1:]}
	for _, l := range mapview.Compose(scene) {
		if l.ID == mapview.LayerIDRouteInfoText {
			t.Fatal("summary text rendered without a summary point")
		}
	}
}

func TestCompose_PulseFollowsClock(t *testing.T) {
	scene := sceneFixture()
	scene.Time = 7
	for _, l := range mapview.Compose(scene) {
		if l.ID != mapview.LayerIDRoutePulse {
			continue
		}
		if got := l.Props["currentTime"]; got != 7.0 {
			t.Fatalf("expected currentTime 7, got %v", got)
		}
		return
	}
	t.Fatal("pulse layer missing")
}

func TestCompose_FallbackTreeCountIsStable(t *testing.T) {
	scene := mapview.Scene{Entities: []domain.MapEntity{{ID: "lc-2"}}}
	first := mapview.Compose(scene)[1].Data.([]mapview.TextDatum)[0].Text
	second := mapview.Compose(scene)[1].Data.([]mapview.TextDatum)[0].Text
	if first != second {
		t.Fatalf("label changed between renders: %q vs %q", first, second)
	}
}
