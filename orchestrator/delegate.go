package orchestrator

import (
	"context"
	"sync"

	"github.com/joinaiwms/horizon/core"
)

// Outcome records the result of one delegated subtask. The JSON form feeds
// the synthesis prompt directly, so failures stay visible alongside results.
type Outcome struct {
	Handler string `json:"agent"`
	Subtask string `json:"subtask"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded reports whether the subtask produced a result.
func (oc Outcome) Succeeded() bool { return oc.Error == "" }

// delegate dispatches each subtask to its named handler and gathers the
// outcomes in subtask order. Unknown handler names and failed executions
// become failed outcomes and never halt the batch. Dispatch fans out across
// at most maxParallel workers; outcomes land in a slot array indexed by
// subtask position, so order is preserved regardless of completion order.
func (o *Orchestrator) delegate(ctx context.Context, task *core.Task, subtasks []Subtask) []Outcome {
	outcomes := make([]Outcome, len(subtasks))

	workers := o.maxParallel
	if workers < 1 {
		workers = 1
	}
	if workers > len(subtasks) {
		workers = len(subtasks)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, st := range subtasks {
		wg.Add(1)
		sem <- struct{}{}

		go func(slot int, st Subtask) {
			defer wg.Done()
			defer func() { <-sem }()

			outcomes[slot] = o.runSubtask(ctx, task, st)
		}(i, st)
	}

	wg.Wait()

	return outcomes
}

// runSubtask executes one subtask on its named handler. The parent task's
// context is inherited and annotated with the parent id and the subtask
// priority.
func (o *Orchestrator) runSubtask(ctx context.Context, parent *core.Task, st Subtask) Outcome {
	outcome := Outcome{Handler: st.Handler, Subtask: st.Description}

	handler, ok := o.registry.Get(st.Handler)
	if !ok {
		err := &core.HandlerUnavailableError{Handler: st.Handler}
		o.logger.Warn("orchestrator.delegate.unavailable", "task_id", parent.ID, "handler", st.Handler)
		outcome.Error = err.Error()
		return outcome
	}

	priority := st.Priority
	if priority < 1 {
		priority = 1
	}

	childContext := make(map[string]any, len(parent.Context)+2)
	for k, v := range parent.Context {
		childContext[k] = v
	}
	childContext["parent_task"] = parent.ID
	childContext["priority"] = priority

	sub := handler.CreateTask(st.Description, childContext)
	done := handler.ExecuteTask(ctx, sub)

	if done.Status == core.TaskCompleted {
		outcome.Result = done.Result
	} else {
		outcome.Error = done.Error
	}

	o.logger.Debug("orchestrator.delegate.outcome", "task_id", parent.ID,
		"handler", st.Handler, "subtask_id", done.ID, "status", string(done.Status))

	return outcome
}
