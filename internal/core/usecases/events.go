package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// Event actions.
const (
	ActionUpdated          = "updated"
	ActionBoundaryUpdated  = "boundary_updated"
	ActionSubRecordAdded   = "sub_record_added"
	ActionSubRecordUpdated = "sub_record_updated"
	ActionSubRecordDeleted = "sub_record_deleted"
	ActionDrafted          = "drafted"
	ActionProcessing       = "processing"
	ActionProcessed        = "processed"
	ActionStatusReverted   = "status_reverted"
)

// publish is best-effort; a broker outage must not fail an edit.
func publish(ctx context.Context, p ports.EventPublisher, kind domain.EntityKind, action, id string, payload any) {
	if p == nil {
		return
	}
	ev := domain.EntityEvent{
		Kind:     kind,
		Action:   action,
		EntityID: id,
		At:       time.Now().UTC().Format(time.RFC3339),
		Payload:  payload,
	}
	if err := p.PublishEntityEvent(ctx, ev); err != nil {
		slog.Warn("publish entity event failed", "kind", kind, "action", action, "id", id, "error", err)
	}
}
