package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

func TestStore_SeededInOrder(t *testing.T) {
	store, err := NewStore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	surveys, err := store.Surveys.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"s-1", "s-2", "s-3", "s-4"}
	for i, s := range surveys {
		if s.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], s.ID)
		}
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store, _ := NewStore()
	ctx := context.Background()

	s, err := store.Surveys.GetByID(ctx, "s-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.OwnerName = "changed"
	s.Boundary[0][0] = 0

	again, _ := store.Surveys.GetByID(ctx, "s-1")
	if again.OwnerName == "changed" || again.Boundary[0][0] == 0 {
		t.Fatal("store shares state with callers")
	}
}

func TestStore_SaveInsertsAndReplaces(t *testing.T) {
	store, _ := NewStore()
	ctx := context.Background()

	cr, _ := store.CivilRequests.GetByID(ctx, "cr-1")
	cr.Status = domain.CivilRequestProcessing
	if err := store.CivilRequests.Save(ctx, cr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.CivilRequests.GetByID(ctx, "cr-1")
	if got.Status != domain.CivilRequestProcessing {
		t.Errorf("status not saved: %s", got.Status)
	}

	if err := store.Surveys.Save(ctx, &domain.SurveyRecord{ID: "lc-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ := store.Surveys.List(ctx)
	if len(all) != 5 || all[4].ID != "lc-1" {
		t.Errorf("new record not appended: %d records", len(all))
	}
}

func TestStore_NotFound(t *testing.T) {
	store, _ := NewStore()
	if _, err := store.LandChanges.GetByID(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCache(t *testing.T) {
	c := NewCache(2)
	ctx := context.Background()

	if _, err := c.Get(ctx, "a"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := c.Set(ctx, "a", []byte("1"), 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, err := c.Get(ctx, "a")
	if err != nil || string(b) != "1" {
		t.Fatalf("expected 1, got %q %v", b, err)
	}
	_ = c.Delete(ctx, "a")
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}
