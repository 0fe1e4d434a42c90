package core

import "context"

// Handler is the single capability surface over all task-executing variants.
// Implementations are registered by name in the handler registry and selected
// by the orchestrator when delegating subtasks; the orchestrator itself is a
// Handler.
type Handler interface {
	// Name returns the registry key for this handler.
	Name() string

	// Description summarizes the capability for classification prompts.
	Description() string

	// CreateTask allocates a pending task owned by this handler.
	CreateTask(description string, context map[string]any) *Task

	// ExecuteTask drives the task state machine. Calling it on a task that is
	// not pending returns the record unchanged (idempotent re-invocation).
	// Failures never escape: they are captured on the returned task.
	ExecuteTask(ctx context.Context, task *Task) *Task
}
