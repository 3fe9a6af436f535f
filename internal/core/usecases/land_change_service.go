package usecases

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// LandChangeFilter narrows the change log. Empty or "all" fields match everything.
type LandChangeFilter struct {
	Type  string
	Month string // YYYY-MM
	Sort  string // "asc" or "desc" on change date; default desc
}

// LandChangeService handles the cadastral change log.
type LandChangeService struct {
	changes   ports.LandChangeRepository
	surveys   ports.SurveyRepository
	publisher ports.EventPublisher
	mu        sync.Mutex
}

// NewLandChangeService creates a new LandChangeService.
func NewLandChangeService(changes ports.LandChangeRepository, surveys ports.SurveyRepository, publisher ports.EventPublisher) *LandChangeService {
	return &LandChangeService{changes: changes, surveys: surveys, publisher: publisher}
}

// List returns the changes matching f sorted by change date.
func (s *LandChangeService) List(ctx context.Context, f LandChangeFilter) ([]domain.LandChange, error) {
	all, err := s.changes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list land changes: %w", err)
	}
	out := make([]domain.LandChange, 0, len(all))
	for _, lc := range all {
		if !isAll(f.Type) && string(lc.Type) != f.Type {
			continue
		}
		if !isAll(f.Month) && !strings.HasPrefix(lc.ChangeDate, f.Month) {
			continue
		}
		out = append(out, lc)
	}
	slices.SortStableFunc(out, func(a, b domain.LandChange) int {
		if f.Sort == "asc" {
			return strings.Compare(a.ChangeDate, b.ChangeDate)
		}
		return strings.Compare(b.ChangeDate, a.ChangeDate)
	})
	return out, nil
}

// Months returns the distinct YYYY-MM of all changes, newest first.
func (s *LandChangeService) Months(ctx context.Context) ([]string, error) {
	all, err := s.changes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list land changes: %w", err)
	}
	months := make([]string, 0, len(all))
	for _, lc := range all {
		if len(lc.ChangeDate) < 7 {
			continue
		}
		months = append(months, lc.ChangeDate[:7])
	}
	slices.Sort(months)
	months = slices.Compact(months)
	slices.Reverse(months)
	return months, nil
}

// Get returns a land change by ID.
func (s *LandChangeService) Get(ctx context.Context, id string) (*domain.LandChange, error) {
	return s.changes.GetByID(ctx, id)
}

// Draft registers a pending survey for the parcel of a land change. An existing
// draft is returned as is; created reports whether a new one was stored.
func (s *LandChangeService) Draft(ctx context.Context, id string) (survey *domain.SurveyRecord, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lc, err := s.changes.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.surveys.GetByID(ctx, lc.ID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, fmt.Errorf("lookup draft %s: %w", lc.ID, err)
	}

	draft := &domain.SurveyRecord{
		ID:          lc.ID,
		Address:     lc.Address,
		OwnerName:   "미지정 (지적변경)",
		OwnerPhone:  "-",
		Variety:     "변동 확인 필요",
		Area:        lc.Area,
		Status:      domain.SurveyPending,
		SurveyDate:  lc.ChangeDate,
		Coordinates: lc.Coordinates,
		Boundary:    cloneBoundary(lc.Boundary),
		SubRecords:  []domain.SurveySubRecord{},
	}
	if err := s.surveys.Save(ctx, draft); err != nil {
		return nil, false, fmt.Errorf("save draft %s: %w", lc.ID, err)
	}
	publish(ctx, s.publisher, domain.KindLandChange, ActionDrafted, lc.ID, draft)
	return draft, true, nil
}

func isAll(v string) bool {
	return v == "" || v == "all"
}
