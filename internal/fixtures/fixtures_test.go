package fixtures

import (
	"testing"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

func TestLoad(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Surveys) != 4 || len(s.LandChanges) != 3 || len(s.CivilRequests) != 3 {
		t.Fatalf("unexpected counts: %d surveys, %d land changes, %d civil requests",
			len(s.Surveys), len(s.LandChanges), len(s.CivilRequests))
	}

	s1 := s.Surveys[0]
	if s1.ID != "s-1" || s1.SurveyDate != "2024-03-15" {
		t.Errorf("unexpected first survey %+v", s1)
	}
	if s1.TreeCount() != 300 {
		t.Errorf("expected 300 trees, got %d", s1.TreeCount())
	}
	if s1.RespondentInfo == nil || s1.RespondentInfo.Relationship != "배우자" {
		t.Errorf("respondent not decoded: %+v", s1.RespondentInfo)
	}
	if len(s.LandChanges[1].Boundary) != 6 {
		t.Errorf("aliased boundary not decoded: %v", s.LandChanges[1].Boundary)
	}
	if s.LandChanges[2].Boundary != nil {
		t.Errorf("lc-3 has no boundary, got %v", s.LandChanges[2].Boundary)
	}
	if s.CivilRequests[2].Status != domain.CivilRequestDone {
		t.Errorf("expected cr-3 done, got %s", s.CivilRequests[2].Status)
	}
}

func TestLoad_ReturnsFreshCopies(t *testing.T) {
	a, _ := Load()
	a.Surveys[0].OwnerName = "changed"
	b, _ := Load()
	if b.Surveys[0].OwnerName == "changed" {
		t.Fatal("seed shared between loads")
	}
}

func TestParse_RejectsInvalidGender(t *testing.T) {
	doc := []byte(`
surveys:
  - id: x
    ownerInfo: {name: a, gender: other}
`)
	if _, err := Parse(doc); err == nil {
		t.Fatal("expected validation error")
	}
}
