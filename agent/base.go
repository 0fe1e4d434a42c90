package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/logging"
	"github.com/joinaiwms/horizon/memory"
	"github.com/joinaiwms/horizon/model"
)

const (
	// defaultModelTimeout bounds a single model call made on behalf of a task.
	defaultModelTimeout = 60 * time.Second

	// memoryWriteTimeout bounds the background memory write that follows a
	// completed task. The write is detached from the request context.
	memoryWriteTimeout = 30 * time.Second

	// memoryTopK and memoryThreshold control the relevant-context lookup.
	memoryTopK      = 3
	memoryThreshold = 0.6

	// memorySnippetLen caps each recalled entry inside a prompt.
	memorySnippetLen = 200
)

// ExecFunc is the execution logic a handler variant plugs into BaseHandler.
// It receives the running task and returns the result text or an error; the
// surrounding lifecycle (status transitions, memory write-back, panic
// containment) is handled by BaseHandler.
type ExecFunc func(ctx context.Context, task *core.Task) (string, error)

// Options configures a BaseHandler.
//
// Use functional options with the handler constructors to override defaults.
type Options struct {
	// Instruction is the system prompt for model calls. Static text is
	// rendered against the task context before each call.
	Instruction Instruction

	// Hint pins the model selection hint for every task. When empty the
	// hint is derived per task from its description.
	Hint model.Hint

	// ModelTimeout bounds each individual model call.
	ModelTimeout time.Duration

	// Memory, when set, receives a derived entry after every completed task
	// and serves relevant-context lookups.
	Memory *memory.Store

	// MemoryTopK and MemoryThreshold tune the relevant-context lookup.
	// Zero or negative values fall back to the defaults (3 and 0.6).
	MemoryTopK      int
	MemoryThreshold float64

	// Limiter, when set, enforces a shared model call budget.
	Limiter *core.ModelLimiter

	// Logger receives structured events. Defaults to a no-op logger.
	Logger logging.Logger
}

// BaseHandler implements core.Handler and owns the task lifecycle shared by
// all handler variants: task registration, status transitions, model access
// with timeout and budget enforcement, and the post-completion memory write.
//
// The zero value is not usable; construct handlers with NewBaseHandler or a
// specialist constructor.
type BaseHandler struct {
	name            string
	description     string
	llm             model.Model
	instruction     Instruction
	hint            model.Hint
	modelTimeout    time.Duration
	memory          *memory.Store
	memoryTopK      int
	memoryThreshold float64
	limiter         *core.ModelLimiter
	logger          logging.Logger
	exec            ExecFunc

	mu    sync.Mutex
	tasks map[string]*core.Task
	order []string
}

// NewBaseHandler creates a handler that answers every task with a single
// instructed model call. Specialist constructors replace the execution
// function to shape requests by subtype.
func NewBaseHandler(name, description string, llm model.Model, optFns ...func(o *Options)) *BaseHandler {
	opts := Options{
		Instruction:  NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		ModelTimeout: defaultModelTimeout,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return newBaseHandler(name, description, llm, opts)
}

// newBaseHandler assembles a handler from resolved options. Specialist
// constructors call this after applying their own defaults.
func newBaseHandler(name, description string, llm model.Model, opts Options) *BaseHandler {
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MemoryTopK <= 0 {
		opts.MemoryTopK = memoryTopK
	}
	if opts.MemoryThreshold <= 0 {
		opts.MemoryThreshold = memoryThreshold
	}

	h := &BaseHandler{
		name:            name,
		description:     description,
		llm:             llm,
		instruction:     opts.Instruction,
		hint:            opts.Hint,
		modelTimeout:    opts.ModelTimeout,
		memory:          opts.Memory,
		memoryTopK:      opts.MemoryTopK,
		memoryThreshold: opts.MemoryThreshold,
		limiter:         opts.Limiter,
		logger:          opts.Logger,
		tasks:           make(map[string]*core.Task),
	}
	h.exec = h.defaultExec

	return h
}

// SetExec replaces the execution function. Handler variants built outside
// this package use it to plug their pipeline into the task lifecycle.
func (h *BaseHandler) SetExec(fn ExecFunc) {
	if fn != nil {
		h.exec = fn
	}
}

// Model returns the language model this handler generates with.
func (h *BaseHandler) Model() model.Model { return h.llm }

// Name implements core.Handler.
func (h *BaseHandler) Name() string { return h.name }

// Description implements core.Handler.
func (h *BaseHandler) Description() string { return h.description }

// CreateTask registers a new pending task and returns a snapshot of it. The
// ID encodes the handler name, the handler's task count at creation time,
// and the creation moment in unix seconds.
func (h *BaseHandler) CreateTask(description string, context map[string]any) *core.Task {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := fmt.Sprintf("%s_%d_%d", h.name, len(h.tasks), time.Now().Unix())
	task := core.NewTask(id, description, context)

	h.tasks[id] = task
	h.order = append(h.order, id)

	h.logger.Debug("handler.task.created", "handler", h.name, "task_id", id)

	return task.Clone()
}

// ExecuteTask drives a task through its lifecycle and returns a snapshot of
// the final record. Invoking it again on a running or finished task returns
// the current record without re-running the execution logic. Failures never
// escape: panics and errors are captured on the returned task.
func (h *BaseHandler) ExecuteTask(ctx context.Context, task *core.Task) *core.Task {
	if task == nil {
		return nil
	}

	h.mu.Lock()
	registered, ok := h.tasks[task.ID]
	if !ok {
		// Adopt tasks created outside CreateTask so lookups and stats see them.
		registered = task
		h.tasks[task.ID] = registered
		h.order = append(h.order, task.ID)
	}
	if !registered.Begin() {
		snapshot := registered.Clone()
		h.mu.Unlock()
		return snapshot
	}
	h.mu.Unlock()

	h.logger.Info("handler.task.started", "handler", h.name, "task_id", registered.ID)

	result, err := h.run(ctx, registered)

	h.mu.Lock()
	if err != nil {
		registered.Fail(err.Error())
	} else {
		registered.Complete(result)
	}
	snapshot := registered.Clone()
	h.mu.Unlock()

	if err != nil {
		h.logger.Error("handler.task.failed", "handler", h.name, "task_id", snapshot.ID, "error", err.Error())
		return snapshot
	}

	h.logger.Info("handler.task.completed", "handler", h.name, "task_id", snapshot.ID)
	h.storeTaskMemory(snapshot)

	return snapshot
}

// run invokes the execution function with panic containment so a misbehaving
// variant fails its task instead of tearing down the caller.
func (h *BaseHandler) run(ctx context.Context, task *core.Task) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task execution panicked: %v", r)
		}
	}()

	return h.exec(ctx, task)
}

// defaultExec answers the task with one instructed model call.
func (h *BaseHandler) defaultExec(ctx context.Context, task *core.Task) (string, error) {
	return h.Generate(ctx, task, "")
}

// Generate performs one instructed model call for the task. The directive,
// when non-empty, is placed ahead of the task description so variants can
// shape the request per subtype. The call honors the configured timeout and
// the shared model call budget; deadline expiry surfaces as a provider
// timeout error.
func (h *BaseHandler) Generate(ctx context.Context, task *core.Task, directive string) (string, error) {
	instruction, err := h.instruction.Resolve(task)
	if err != nil {
		return "", fmt.Errorf("resolve instruction: %w", err)
	}

	var messages []core.Message
	if instruction != "" {
		messages = append(messages, core.SystemMessage(instruction))
	}
	messages = append(messages, core.UserMessage(buildPrompt(task, directive)))

	hint := h.hint
	if hint == "" {
		hint = model.HintForTask(task.Description)
	}

	return h.Complete(ctx, messages, hint)
}

// Complete performs one budgeted, timeout-bounded model call with an
// explicit message list. Generate builds on it; variants with custom message
// layouts (conversation history, multi-step prompts) call it directly.
func (h *BaseHandler) Complete(ctx context.Context, messages []core.Message, hint model.Hint) (string, error) {
	if h.limiter != nil {
		if err := h.limiter.Acquire(); err != nil {
			return "", &core.ProviderError{Provider: h.llm.Info().Provider, Kind: core.ProviderErrorRateLimit, Err: err}
		}
	}

	callCtx := ctx
	if h.modelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.modelTimeout)
		defer cancel()
	}

	content, err := model.Complete(callCtx, h.llm, model.Request{Messages: messages, Hint: hint})
	if err != nil {
		return "", core.WrapProviderError(h.llm.Info().Provider, err)
	}

	return content, nil
}

// CompleteStream is the streaming variant of Complete. The response channel
// carries partial fragments and then the final response; both channels close
// when the call finishes. The configured timeout covers the whole stream.
func (h *BaseHandler) CompleteStream(ctx context.Context, messages []core.Message, hint model.Hint) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response)
	errOut := make(chan error, 1)

	if h.limiter != nil {
		if err := h.limiter.Acquire(); err != nil {
			close(out)
			errOut <- &core.ProviderError{Provider: h.llm.Info().Provider, Kind: core.ProviderErrorRateLimit, Err: err}
			close(errOut)
			return out, errOut
		}
	}

	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if h.modelTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, h.modelTimeout)
	}

	respCh, errCh := h.llm.Generate(callCtx, model.Request{Messages: messages, Hint: hint, Stream: true})

	go func() {
		defer cancel()
		defer close(out)
		defer close(errOut)

		var streamErr error
		for respCh != nil || errCh != nil {
			select {
			case r, ok := <-respCh:
				if !ok {
					respCh = nil
					continue
				}
				select {
				case out <- r:
				case <-callCtx.Done():
					if streamErr == nil {
						streamErr = callCtx.Err()
					}
					respCh, errCh = nil, nil
				}
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if err != nil && streamErr == nil {
					streamErr = err
				}
			}
		}

		if streamErr != nil {
			errOut <- core.WrapProviderError(h.llm.Info().Provider, streamErr)
		}
	}()

	return out, errOut
}

// buildPrompt assembles the user message: optional directive, then the task
// description, then the task context serialized as JSON.
func buildPrompt(task *core.Task, directive string) string {
	prompt := task.Description
	if directive != "" {
		prompt = directive + "\n\n" + prompt
	}

	if len(task.Context) > 0 {
		if data, err := json.Marshal(task.Context); err == nil {
			prompt = fmt.Sprintf("%s\n\nContext: %s", prompt, data)
		}
	}

	return prompt
}

// RelevantContext searches memory for entries related to the query and
// formats them as a context block for prompt assembly. It returns the empty
// string when no memory is configured, nothing clears the relevance
// threshold, or the lookup fails.
func (h *BaseHandler) RelevantContext(ctx context.Context, query string) string {
	if h.memory == nil {
		return ""
	}

	results, err := h.memory.Search(ctx, query, h.memoryTopK, h.memoryThreshold)
	if err != nil {
		h.logger.Warn("handler.memory.search_failed", "handler", h.name, "error", err.Error())
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Relevant context from previous work:\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "- %s\n", r.Snippet(memorySnippetLen))
	}

	return sb.String()
}

// storeTaskMemory records a completed task in memory so later work can
// recall it. The write runs in the background and is best-effort: failures
// only log and never alter the task.
func (h *BaseHandler) storeTaskMemory(task *core.Task) {
	if h.memory == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), memoryWriteTimeout)
		defer cancel()

		text := fmt.Sprintf("Agent: %s\nTask: %s\nResult: %s", h.name, task.Description, task.Result)
		metadata := map[string]any{
			"agent":   h.name,
			"task_id": task.ID,
			"type":    "task_result",
		}

		if _, err := h.memory.Add(ctx, text, metadata); err != nil {
			h.logger.Warn("handler.memory.store_failed", "handler", h.name, "task_id", task.ID, "error", err.Error())
		}
	}()
}

// Task returns a snapshot of a task by ID.
func (h *BaseHandler) Task(id string) (*core.Task, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	task, ok := h.tasks[id]
	if !ok {
		return nil, false
	}

	return task.Clone(), true
}

// Tasks returns snapshots of every task in creation order.
func (h *BaseHandler) Tasks() []*core.Task {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*core.Task, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.tasks[id].Clone())
	}

	return out
}

// Stats summarizes the handler's task history.
func (h *BaseHandler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Stats{Total: len(h.tasks)}
	for _, t := range h.tasks {
		switch t.Status {
		case core.TaskPending:
			s.Pending++
		case core.TaskRunning:
			s.Running++
		case core.TaskCompleted:
			s.Completed++
		case core.TaskFailed:
			s.Failed++
		}
	}

	return s
}

// Stats summarizes a handler's task history for status reporting.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// containsAny reports whether s contains at least one of the keywords.
// Specialist classifiers use it on lowercased descriptions.
func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}

	return false
}
