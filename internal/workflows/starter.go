package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
)

// Starter implements ports.WorkflowStarter on a Temporal client.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter submitting to taskQueue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartCivilRequestProcessing starts the processing workflow and returns its
// ID. Starting a request that is already running returns the running one.
func (s *Starter) StartCivilRequestProcessing(ctx context.Context, requestID string) (string, error) {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(requestID),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, ProcessCivilRequestWorkflow, ProcessCivilRequestInput{RequestID: requestID})
	if err != nil {
		return "", fmt.Errorf("execute workflow: %w", err)
	}
	return run.GetID(), nil
}
