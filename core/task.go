package core

import "time"

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	// TaskPending is the initial status of every task.
	TaskPending TaskStatus = "pending"
	// TaskRunning marks a task whose execution logic is in flight.
	TaskRunning TaskStatus = "running"
	// TaskCompleted is the terminal success status.
	TaskCompleted TaskStatus = "completed"
	// TaskFailed is the terminal failure status.
	TaskFailed TaskStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is the unit-of-work record produced and consumed by handlers.
//
// A task is owned by the handler that created it for the duration of its
// lifecycle. Only ExecuteTask mutates it, exactly once per transition, and
// never after it reaches a terminal status.
type Task struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Context     map[string]any `json:"context,omitempty"`
	Status      TaskStatus     `json:"status"`
	Result      string         `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// NewTask creates a pending task.
func NewTask(id, description string, context map[string]any) *Task {
	if context == nil {
		context = map[string]any{}
	}
	return &Task{
		ID:          id,
		Description: description,
		Context:     context,
		Status:      TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
}

// Begin moves a pending task to running and reports whether the transition
// happened. Any other starting status leaves the task untouched.
func (t *Task) Begin() bool {
	if t.Status != TaskPending {
		return false
	}
	t.Status = TaskRunning
	return true
}

// Complete marks a non-terminal task completed with its result and stamps
// the completion time.
func (t *Task) Complete(result string) {
	if t.Status.Terminal() {
		return
	}
	t.Status = TaskCompleted
	t.Result = result
	now := time.Now().UTC()
	t.CompletedAt = &now
}

// Fail marks a non-terminal task failed with a descriptive error message and
// stamps the completion time.
func (t *Task) Fail(message string) {
	if t.Status.Terminal() {
		return
	}
	t.Status = TaskFailed
	t.Error = message
	now := time.Now().UTC()
	t.CompletedAt = &now
}

// Clone returns a deep copy safe to hand to another goroutine.
func (t *Task) Clone() *Task {
	cp := *t
	cp.Context = make(map[string]any, len(t.Context))
	for k, v := range t.Context {
		cp.Context[k] = v
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		cp.CompletedAt = &ts
	}
	return &cp
}
