// Package workflows holds the Temporal workflows of the service.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

// DefaultTaskQueue is the queue the processor worker listens on.
const DefaultTaskQueue = "civil-request-queue"

// ProcessCivilRequestInput is the input for the processing workflow.
type ProcessCivilRequestInput struct {
	RequestID string
}

// ProcessCivilRequestResult is the outcome of the processing workflow.
type ProcessCivilRequestResult struct {
	SurveyID string
}

// WorkflowID is the workflow ID used for a request, so a request is never
// processed by two runs at once.
func WorkflowID(requestID string) string {
	return "process-civil-request-" + requestID
}

// ProcessCivilRequestWorkflow marks the request as processing, registers the
// draft survey and announces the hand-over. If the draft cannot be registered
// the request gets its previous status back (saga compensation).
func ProcessCivilRequestWorkflow(ctx workflow.Context, input ProcessCivilRequestInput) (*ProcessCivilRequestResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting civil request processing", "requestID", input.RequestID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: received -> processing
	var prev domain.CivilRequestStatus
	if err := workflow.ExecuteActivity(ctx, ActivityMarkProcessing, input.RequestID).Get(ctx, &prev); err != nil {
		return nil, err
	}

	// Step 2: draft survey
	var surveyID string
	if err := workflow.ExecuteActivity(ctx, ActivityRegisterDraftSurvey, input.RequestID).Get(ctx, &surveyID); err != nil {
		logger.Warn("draft registration failed, compensating", "error", err)
		if rerr := workflow.ExecuteActivity(ctx, ActivityRevertStatus, input.RequestID, prev).Get(ctx, nil); rerr != nil {
			logger.Error("status revert failed", "error", rerr)
		}
		return nil, err
	}

	// Step 3: announce (best-effort)
	if err := workflow.ExecuteActivity(ctx, ActivityPublishProcessed, input.RequestID).Get(ctx, nil); err != nil {
		logger.Warn("publish processed failed", "error", err)
	}

	logger.Info("Civil request processed", "surveyID", surveyID)
	return &ProcessCivilRequestResult{SurveyID: surveyID}, nil
}
