package workflows

import (
	"context"
	"log/slog"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
)

// Activity names, registered from the methods of CivilRequestActivities.
const (
	ActivityMarkProcessing      = "MarkProcessing"
	ActivityRegisterDraftSurvey = "RegisterDraftSurvey"
	ActivityRevertStatus        = "RevertStatus"
	ActivityPublishProcessed    = "PublishProcessed"
)

// CivilRequestActivities holds the activity implementations for civil-request processing.
type CivilRequestActivities struct {
	Requests *usecases.CivilRequestService
}

// MarkProcessing moves the request to processing and returns the status it had.
func (a *CivilRequestActivities) MarkProcessing(ctx context.Context, requestID string) (domain.CivilRequestStatus, error) {
	return a.Requests.MarkStatus(ctx, requestID, domain.CivilRequestProcessing)
}

// RegisterDraftSurvey stores the draft survey and returns its ID.
func (a *CivilRequestActivities) RegisterDraftSurvey(ctx context.Context, requestID string) (string, error) {
	draft, err := a.Requests.RegisterDraft(ctx, requestID)
	if err != nil {
		return "", err
	}
	return draft.ID, nil
}

// RevertStatus restores the status the request had before processing (saga compensation).
func (a *CivilRequestActivities) RevertStatus(ctx context.Context, requestID string, status domain.CivilRequestStatus) error {
	if _, err := a.Requests.MarkStatus(ctx, requestID, status); err != nil {
		return err
	}
	slog.InfoContext(ctx, "civil request status reverted", "id", requestID, "status", status)
	return nil
}

// PublishProcessed announces the request as handed over.
func (a *CivilRequestActivities) PublishProcessed(ctx context.Context, requestID string) error {
	a.Requests.PublishProcessed(ctx, requestID)
	return nil
}
