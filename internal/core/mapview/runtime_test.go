package mapview_test

import (
	"context"
	"testing"
	"time"

	"github.com/samirrijal/citrusfield/internal/core/mapview"
)

func TestAdvance_Wraps(t *testing.T) {
	if got := mapview.Advance(98); got != 99 {
		t.Errorf("expected 99, got %d", got)
	}
	if got := mapview.Advance(99); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestClock_EmitsAndStops(t *testing.T) {
	clock := mapview.StartClock(context.Background(), time.Millisecond)

	select {
	case f := <-clock.Frames():
		if f < 0 || f >= mapview.FrameCount {
			t.Fatalf("frame out of range: %d", f)
		}
	case <-time.After(time.Second):
		t.Fatal("no frame within a second")
	}

	clock.Stop()
	clock.Stop()

	for range clock.Frames() {
	}
}

func TestClock_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := mapview.StartClock(ctx, time.Hour)
	cancel()

	select {
	case _, ok := <-clock.Frames():
		if ok {
			t.Fatal("unexpected frame")
		}
	case <-time.After(time.Second):
		t.Fatal("clock did not stop")
	}
}

func TestSequencer_LatestWins(t *testing.T) {
	var seq mapview.Sequencer

	ctx1, tok1, release1 := seq.Begin(context.Background())
	defer release1()
	_, tok2, release2 := seq.Begin(context.Background())
	defer release2()

	if ctx1.Err() == nil {
		t.Error("superseded lookup was not cancelled")
	}

	applied := ""
	if seq.Commit(tok2, func() { applied = "second" }) != true {
		t.Fatal("newest token rejected")
	}
	if seq.Commit(tok1, func() { applied = "first" }) {
		t.Fatal("stale token accepted")
	}
	if applied != "second" {
		t.Errorf("expected second, got %s", applied)
	}
}

func TestSequencer_InvalidateRetiresInFlight(t *testing.T) {
	var seq mapview.Sequencer

	ctx, tok, release := seq.Begin(context.Background())
	defer release()
	seq.Invalidate()

	if ctx.Err() == nil {
		t.Error("in-flight lookup was not cancelled")
	}
	if seq.Commit(tok, func() { t.Error("retired token applied") }) {
		t.Error("retired token accepted")
	}

	_, next, release2 := seq.Begin(context.Background())
	defer release2()
	if !seq.Commit(next, func() {}) {
		t.Error("lookup started after Invalidate rejected")
	}
}

func TestStyle(t *testing.T) {
	osm := mapview.Style(mapview.ModeSatellite, "/api/tiles", false)
	if _, ok := osm.Sources["osm"]; !ok || len(osm.Layers) != 1 {
		t.Fatalf("expected OSM fallback, got %+v", osm)
	}

	sat := mapview.Style(mapview.ModeSatellite, "/api/tiles", true)
	if len(sat.Layers) != 2 || sat.Layers[1].ID != "hybrid" {
		t.Errorf("satellite style should add hybrid overlay: %+v", sat.Layers)
	}
	if got := sat.Sources["vworldBase"].Tiles[0]; got != "/api/tiles/Base/{z}/{y}/{x}" {
		t.Errorf("unexpected tile template %s", got)
	}

	std := mapview.Style(mapview.ModeStandard, "/api/tiles", true)
	if len(std.Layers) != 1 || std.Layers[0].Source != "vworldBase" {
		t.Errorf("unexpected standard layers %+v", std.Layers)
	}
}

func TestClampTileZoom(t *testing.T) {
	if mapview.ClampTileZoom(21) != 18 || mapview.ClampTileZoom(12) != 12 {
		t.Error("zoom not clamped to 18")
	}
}
