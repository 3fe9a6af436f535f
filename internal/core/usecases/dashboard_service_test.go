package usecases_test

import (
	"context"
	"testing"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
)

func TestDashboardService_Stats(t *testing.T) {
	surveys := sampleSurveys()
	surveys = append(surveys, domain.SurveyRecord{ID: "lc-1", OwnerName: "-", Status: domain.SurveyPending})

	svc := usecases.NewDashboardService(
		surveyRepo(surveys...),
		landChangeRepo(sampleLandChanges()...),
		civilRequestRepo(sampleCivilRequests()...),
	)
	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.DashboardStats{
		CompletedSurveys:     1,
		TotalSurveys:         4,
		LandChanges:          3,
		LandChangesPending:   2, // lc-1 already drafted
		CivilRequests:        3,
		CivilRequestsPending: 2,
		ManagedFarms:         2, // 김철수, 이영희; "-" is not an owner
	}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}
}
