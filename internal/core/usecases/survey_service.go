package usecases

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/pkg/geospatial"
)

// Catalogue sentinels meaning "no filter".
const (
	AllRegions   = "전체 지역"
	AllVarieties = "전체 품종"
)

var (
	regions   = []string{AllRegions, "남원리", "하례리", "신례리", "위미리"}
	varieties = []string{
		AllVarieties,
		"온주밀감-극조생-일남1호",
		"온주밀감-조생",
		"한라봉",
		"천혜향",
		"레드향",
		"황금향",
	}
)

// SurveyFilter narrows the survey list. Zero values match everything.
type SurveyFilter struct {
	Query   string // substring of address or owner name
	Region  string
	Variety string
	From    string // inclusive YYYY-MM-DD
	To      string // inclusive YYYY-MM-DD
}

func (f SurveyFilter) match(s *domain.SurveyRecord) bool {
	if f.Query != "" && !strings.Contains(s.Address, f.Query) && !strings.Contains(s.OwnerName, f.Query) {
		return false
	}
	if f.Region != "" && f.Region != AllRegions && !strings.Contains(s.Address, f.Region) {
		return false
	}
	if f.Variety != "" && f.Variety != AllVarieties && s.Variety != f.Variety {
		return false
	}
	if f.From != "" && s.SurveyDate < f.From {
		return false
	}
	if f.To != "" && s.SurveyDate > f.To {
		return false
	}
	return true
}

// GeneralUpdate carries the editable general fields of a survey. Nil fields are kept.
type GeneralUpdate struct {
	OwnerName      *string              `json:"ownerName"`
	OwnerPhone     *string              `json:"ownerPhone"`
	Variety        *string              `json:"variety"`
	Status         *domain.SurveyStatus `json:"status" validate:"omitempty,oneof=completed pending updated"`
	SurveyDate     *string              `json:"surveyDate" validate:"omitempty,datetime=2006-01-02"`
	OwnerInfo      *domain.PersonInfo   `json:"ownerInfo"`
	RespondentInfo *domain.PersonInfo   `json:"respondentInfo"`
}

// SurveyService handles survey business logic.
type SurveyService struct {
	surveys   ports.SurveyRepository
	publisher ports.EventPublisher

	// edits are read-modify-write on whole records
	mu  sync.Mutex
	now func() time.Time
}

// NewSurveyService creates a new SurveyService.
func NewSurveyService(surveys ports.SurveyRepository, publisher ports.EventPublisher) *SurveyService {
	return &SurveyService{surveys: surveys, publisher: publisher, now: time.Now}
}

// List returns the surveys matching f in store order.
func (s *SurveyService) List(ctx context.Context, f SurveyFilter) ([]domain.SurveyRecord, error) {
	all, err := s.surveys.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	out := make([]domain.SurveyRecord, 0, len(all))
	for i := range all {
		if f.match(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Get returns a survey by ID.
func (s *SurveyService) Get(ctx context.Context, id string) (*domain.SurveyRecord, error) {
	return s.surveys.GetByID(ctx, id)
}

// Regions returns the region catalogue, starting with AllRegions.
func (s *SurveyService) Regions() []string {
	return slices.Clone(regions)
}

// Varieties returns the variety catalogue filtered by a case-insensitive substring.
func (s *SurveyService) Varieties(q string) []string {
	q = strings.ToLower(q)
	out := make([]string, 0, len(varieties))
	for _, v := range varieties {
		if strings.Contains(strings.ToLower(v), q) {
			out = append(out, v)
		}
	}
	return out
}

// UpdateGeneral applies the non-nil fields of u.
func (s *SurveyService) UpdateGeneral(ctx context.Context, id string, u GeneralUpdate) (*domain.SurveyRecord, error) {
	return s.edit(ctx, id, ActionUpdated, func(rec *domain.SurveyRecord) error {
		if u.OwnerName != nil {
			rec.OwnerName = *u.OwnerName
		}
		if u.OwnerPhone != nil {
			rec.OwnerPhone = *u.OwnerPhone
		}
		if u.Variety != nil {
			rec.Variety = *u.Variety
		}
		if u.Status != nil {
			rec.Status = *u.Status
		}
		if u.SurveyDate != nil {
			rec.SurveyDate = *u.SurveyDate
		}
		if u.OwnerInfo != nil {
			info := *u.OwnerInfo
			rec.OwnerInfo = &info
		}
		if u.RespondentInfo != nil {
			info := *u.RespondentInfo
			rec.RespondentInfo = &info
		}
		return nil
	})
}

// UpdateBoundary replaces the boundary and recomputes the area from it.
func (s *SurveyService) UpdateBoundary(ctx context.Context, id string, boundary [][]float64) (*domain.SurveyRecord, error) {
	ring, err := geospatial.Ring(boundary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBoundary, err)
	}
	area := geospatial.Area(ring)

	return s.edit(ctx, id, ActionBoundaryUpdated, func(rec *domain.SurveyRecord) error {
		rec.Boundary = cloneBoundary(boundary)
		rec.Area = area
		return nil
	})
}

// NewSubRecord returns the template a new cultivation line starts from.
func NewSubRecord(now time.Time) domain.SurveySubRecord {
	year := now.Format("2006")
	return domain.SurveySubRecord{
		Category:             "과수원",
		Status:               "정상경작",
		Cultivator:           "본인",
		Type:                 "노지",
		PlantingYear:         year,
		InstallYear:          year,
		Spacing:              "3m",
		OtherType:            "해당없음",
		NonCultivationDetail: "-",
		RecordedAt:           now.Format("2006-01-02"),
	}
}

// SubRecordTemplate returns NewSubRecord for the current time.
func (s *SurveyService) SubRecordTemplate() domain.SurveySubRecord {
	return NewSubRecord(s.now())
}

// AddSubRecord appends sub with a freshly generated ID.
func (s *SurveyService) AddSubRecord(ctx context.Context, id string, sub domain.SurveySubRecord) (*domain.SurveySubRecord, error) {
	sub.ID = "sub-" + uuid.NewString()
	if _, err := s.edit(ctx, id, ActionSubRecordAdded, func(rec *domain.SurveyRecord) error {
		rec.SubRecords = append(rec.SubRecords, sub)
		return nil
	}); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ReplaceSubRecord replaces the sub-record subID.
func (s *SurveyService) ReplaceSubRecord(ctx context.Context, id, subID string, sub domain.SurveySubRecord) (*domain.SurveySubRecord, error) {
	sub.ID = subID
	if _, err := s.edit(ctx, id, ActionSubRecordUpdated, func(rec *domain.SurveyRecord) error {
		i := slices.IndexFunc(rec.SubRecords, func(r domain.SurveySubRecord) bool { return r.ID == subID })
		if i < 0 {
			return fmt.Errorf("sub-record %s: %w", subID, domain.ErrNotFound)
		}
		rec.SubRecords[i] = sub
		return nil
	}); err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubRecord removes the sub-record subID.
func (s *SurveyService) DeleteSubRecord(ctx context.Context, id, subID string) error {
	_, err := s.edit(ctx, id, ActionSubRecordDeleted, func(rec *domain.SurveyRecord) error {
		i := slices.IndexFunc(rec.SubRecords, func(r domain.SurveySubRecord) bool { return r.ID == subID })
		if i < 0 {
			return fmt.Errorf("sub-record %s: %w", subID, domain.ErrNotFound)
		}
		rec.SubRecords = slices.Delete(rec.SubRecords, i, i+1)
		return nil
	})
	return err
}

func (s *SurveyService) edit(ctx context.Context, id, action string, fn func(*domain.SurveyRecord) error) (*domain.SurveyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.surveys.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save survey %s: %w", id, err)
	}
	publish(ctx, s.publisher, domain.KindSurvey, action, id, rec)
	return rec, nil
}

func cloneBoundary(b [][]float64) [][]float64 {
	if b == nil {
		return nil
	}
	out := make([][]float64, len(b))
	for i, p := range b {
		out[i] = slices.Clone(p)
	}
	return out
}
