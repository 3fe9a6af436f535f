package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// CivilRequestFilter narrows the request log.
type CivilRequestFilter struct {
	Type   string
	Status string // "all", "pending" (anything not done) or "done"
	From   string // inclusive YYYY-MM-DD
	To     string
}

func (f CivilRequestFilter) match(cr *domain.CivilRequest) bool {
	if !isAll(f.Type) && string(cr.Type) != f.Type {
		return false
	}
	switch f.Status {
	case "pending":
		if cr.Status == domain.CivilRequestDone {
			return false
		}
	case "done":
		if cr.Status != domain.CivilRequestDone {
			return false
		}
	}
	if f.From != "" && cr.RequestDate < f.From {
		return false
	}
	if f.To != "" && cr.RequestDate > f.To {
		return false
	}
	return true
}

// ProcessResult is the outcome of starting to process a request.
// Exactly one of Survey and WorkflowID is set.
type ProcessResult struct {
	Survey     *domain.SurveyRecord `json:"survey,omitempty"`
	WorkflowID string               `json:"workflow_id,omitempty"`
}

// CivilRequestService handles citizen requests.
type CivilRequestService struct {
	requests  ports.CivilRequestRepository
	surveys   ports.SurveyRepository
	publisher ports.EventPublisher
	workflows ports.WorkflowStarter // nil processes inline
	mu        sync.Mutex
}

// NewCivilRequestService creates a new CivilRequestService.
func NewCivilRequestService(
	requests ports.CivilRequestRepository,
	surveys ports.SurveyRepository,
	publisher ports.EventPublisher,
	workflows ports.WorkflowStarter,
) *CivilRequestService {
	return &CivilRequestService{
		requests:  requests,
		surveys:   surveys,
		publisher: publisher,
		workflows: workflows,
	}
}

// List returns the requests matching f in store order.
func (s *CivilRequestService) List(ctx context.Context, f CivilRequestFilter) ([]domain.CivilRequest, error) {
	all, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list civil requests: %w", err)
	}
	out := make([]domain.CivilRequest, 0, len(all))
	for i := range all {
		if f.match(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Get returns a request by ID.
func (s *CivilRequestService) Get(ctx context.Context, id string) (*domain.CivilRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// Process starts handling a request: it registers a draft survey and moves the
// request to processing. With a workflow starter the steps run asynchronously.
func (s *CivilRequestService) Process(ctx context.Context, id string) (*ProcessResult, error) {
	cr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr.Status == domain.CivilRequestDone {
		return nil, domain.ErrAlreadyDone
	}

	if s.workflows != nil {
		wfID, err := s.workflows.StartCivilRequestProcessing(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("start processing workflow: %w", err)
		}
		return &ProcessResult{WorkflowID: wfID}, nil
	}

	prev, err := s.MarkStatus(ctx, id, domain.CivilRequestProcessing)
	if err != nil {
		return nil, err
	}
	survey, err := s.RegisterDraft(ctx, id)
	if err != nil {
		if _, rerr := s.MarkStatus(ctx, id, prev); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("revert status: %w", rerr))
		}
		return nil, err
	}
	s.PublishProcessed(ctx, id)
	return &ProcessResult{Survey: survey}, nil
}

// MarkStatus sets the status of a request and returns the previous one.
func (s *CivilRequestService) MarkStatus(ctx context.Context, id string, status domain.CivilRequestStatus) (domain.CivilRequestStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	prev := cr.Status
	if prev == status {
		return prev, nil
	}
	cr.Status = status
	if err := s.requests.Save(ctx, cr); err != nil {
		return "", fmt.Errorf("save civil request %s: %w", id, err)
	}

	action := ActionProcessing
	if status != domain.CivilRequestProcessing {
		action = ActionStatusReverted
	}
	publish(ctx, s.publisher, domain.KindCivilRequest, action, id, map[string]string{
		"from": string(prev),
		"to":   string(status),
	})
	return prev, nil
}

// RegisterDraft stores the draft survey for a request, or returns the one already stored.
func (s *CivilRequestService) RegisterDraft(ctx context.Context, id string) (*domain.SurveyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.surveys.GetByID(ctx, cr.ID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup draft %s: %w", cr.ID, err)
	}

	draft := DraftFromCivilRequest(cr)
	if err := s.surveys.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft %s: %w", cr.ID, err)
	}
	return draft, nil
}

// PublishProcessed announces that a request has been handed to a surveyor.
func (s *CivilRequestService) PublishProcessed(ctx context.Context, id string) {
	publish(ctx, s.publisher, domain.KindCivilRequest, ActionProcessed, id, nil)
}

// DraftFromCivilRequest builds the pending survey a request turns into.
// The complaint text is kept on the respondent.
func DraftFromCivilRequest(cr *domain.CivilRequest) *domain.SurveyRecord {
	variety := "수정요청 접수"
	if cr.Type == domain.CivilRequestNew {
		variety = "신규등록 예정"
	}
	return &domain.SurveyRecord{
		ID:          cr.ID,
		Address:     cr.Address,
		OwnerName:   cr.Requester,
		OwnerPhone:  "-",
		Variety:     variety,
		Area:        cr.Area,
		Status:      domain.SurveyPending,
		SurveyDate:  cr.RequestDate,
		Coordinates: cr.Coordinates,
		Boundary:    cloneBoundary(cr.Boundary),
		SubRecords:  []domain.SurveySubRecord{},
		RespondentInfo: &domain.PersonInfo{
			Name:        cr.Requester,
			Address:     cr.Address,
			Phone:       "-",
			BirthDate:   "-",
			Gender:      "남",
			Description: "민원 내용: " + cr.Details,
		},
	}
}
