package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// DashboardService computes the headline counters.
type DashboardService struct {
	surveys  ports.SurveyRepository
	changes  ports.LandChangeRepository
	requests ports.CivilRequestRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(surveys ports.SurveyRepository, changes ports.LandChangeRepository, requests ports.CivilRequestRepository) *DashboardService {
	return &DashboardService{surveys: surveys, changes: changes, requests: requests}
}

// Stats counts records across the stores. A land change is pending until a
// draft survey has been registered for it; a civil request until it is done.
// Managed farms are the distinct owners of surveyed parcels.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	surveys, err := s.surveys.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	changes, err := s.changes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list land changes: %w", err)
	}
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list civil requests: %w", err)
	}

	stats := &domain.DashboardStats{
		TotalSurveys:  len(surveys),
		LandChanges:   len(changes),
		CivilRequests: len(requests),
	}

	ids := make(map[string]struct{}, len(surveys))
	owners := make(map[string]struct{}, len(surveys))
	for _, sv := range surveys {
		ids[sv.ID] = struct{}{}
		if sv.Status == domain.SurveyCompleted {
			stats.CompletedSurveys++
		}
		if sv.OwnerName != "" && sv.OwnerName != "-" {
			owners[sv.OwnerName] = struct{}{}
		}
	}
	stats.ManagedFarms = len(owners)

	for _, lc := range changes {
		if _, drafted := ids[lc.ID]; !drafted {
			stats.LandChangesPending++
		}
	}
	for _, cr := range requests {
		if cr.Status != domain.CivilRequestDone {
			stats.CivilRequestsPending++
		}
	}
	return stats, nil
}
