package testutil

import (
	"github.com/joinaiwms/horizon/core"
)

// TaskBuilder provides a fluent helper for constructing tasks in tests.
// Example:
//
//	task := NewTaskBuilder("code_0_1700000000", "fix the bug").Completed("patched").Build()
//
// Chain only the parts you need; a fresh task stays pending.
type TaskBuilder struct {
	id          string
	description string
	context     map[string]any
	result      *string
	failure     *string
}

// NewTaskBuilder creates a builder for a task with the given id and
// description.
func NewTaskBuilder(id, description string) *TaskBuilder {
	return &TaskBuilder{id: id, description: description, context: map[string]any{}}
}

// Context sets a context key/value pair on the resulting task (chainable).
func (b *TaskBuilder) Context(key string, val any) *TaskBuilder {
	b.context[key] = val
	return b
}

// Completed marks the built task as completed with the given result (chainable).
func (b *TaskBuilder) Completed(result string) *TaskBuilder {
	b.result = &result
	b.failure = nil
	return b
}

// Failed marks the built task as failed with the given message (chainable).
func (b *TaskBuilder) Failed(message string) *TaskBuilder {
	b.failure = &message
	b.result = nil
	return b
}

// Build constructs the core.Task value, walking it through the lifecycle
// needed to reach the requested terminal state.
func (b *TaskBuilder) Build() *core.Task {
	task := core.NewTask(b.id, b.description, b.context)
	if b.result != nil {
		task.Begin()
		task.Complete(*b.result)
	} else if b.failure != nil {
		task.Begin()
		task.Fail(*b.failure)
	}
	return task
}
