package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joinaiwms/horizon/agent"
	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/logging"
	"github.com/joinaiwms/horizon/memory"
	"github.com/joinaiwms/horizon/model"
	"github.com/joinaiwms/horizon/session"
)

const orchestratorDescription = "Coordinator that breaks down complex requests and routes them to specialized handlers"

const orchestratorSystemPrompt = `You are the coordinator of a multi-handler AI assistant. Your role is to:

1. Analyze user requests and break them down into subtasks
2. Route subtasks to the most appropriate specialized handlers
3. Synthesize results from multiple handlers into coherent responses
4. Answer simple requests directly

Always be helpful, accurate, and efficient.`

const (
	defaultModelTimeout = 60 * time.Second
	defaultMaxHistory   = 20
)

// Options configures an Orchestrator.
//
// Use functional options with New to override defaults.
type Options struct {
	// SystemPrompt instructs every model call the orchestrator makes.
	SystemPrompt string

	// Sessions stores conversation history. Defaults to an in-memory store.
	Sessions core.SessionStore

	// Memory, when set, serves relevant-context lookups for direct handling
	// and records completed coordination tasks.
	Memory *memory.Store

	// MemoryTopK and MemoryThreshold tune the relevant-context lookup.
	MemoryTopK      int
	MemoryThreshold float64

	// Limiter, when set, caps the total model calls made on behalf of the
	// process, orchestrator and handlers together.
	Limiter *core.ModelLimiter

	// Logger receives structured events. Defaults to a no-op logger.
	Logger logging.Logger

	// ModelTimeout bounds each individual model call.
	ModelTimeout time.Duration

	// MaxParallel bounds the subtask fan-out. 1 dispatches sequentially.
	MaxParallel int

	// MaxHistory caps the conversation turns injected into direct calls.
	MaxHistory int
}

// Orchestrator is the distinguished coordinating handler. Its execution
// function runs the classify -> (delegate -> synthesize | direct) pipeline,
// so every coordination request is a task with the standard lifecycle.
type Orchestrator struct {
	*agent.BaseHandler

	registry     *agent.Registry
	sessions     core.SessionStore
	logger       logging.Logger
	systemPrompt string
	hint         model.Hint
	maxParallel  int
	maxHistory   int
}

// New creates an Orchestrator around the given model. Specialized handlers
// are attached afterwards with RegisterHandler.
func New(llm model.Model, optFns ...func(o *Options)) (*Orchestrator, error) {
	if llm == nil {
		return nil, fmt.Errorf("model must not be nil")
	}

	opts := Options{
		SystemPrompt: orchestratorSystemPrompt,
		ModelTimeout: defaultModelTimeout,
		MaxParallel:  1,
		MaxHistory:   defaultMaxHistory,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore()
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = orchestratorSystemPrompt
	}

	base := agent.NewBaseHandler("assistant", orchestratorDescription, llm, func(bo *agent.Options) {
		bo.Instruction = agent.NewInstructionFromText(opts.SystemPrompt)
		bo.Hint = model.HintDefault
		bo.ModelTimeout = opts.ModelTimeout
		bo.Memory = opts.Memory
		bo.MemoryTopK = opts.MemoryTopK
		bo.MemoryThreshold = opts.MemoryThreshold
		bo.Limiter = opts.Limiter
		bo.Logger = opts.Logger
	})

	o := &Orchestrator{
		BaseHandler:  base,
		registry:     agent.NewRegistry(),
		sessions:     opts.Sessions,
		logger:       opts.Logger,
		systemPrompt: opts.SystemPrompt,
		hint:         model.HintDefault,
		maxParallel:  opts.MaxParallel,
		maxHistory:   opts.MaxHistory,
	}
	base.SetExec(o.route)

	return o, nil
}

// RegisterHandler adds a handler the orchestrator may delegate to.
func (o *Orchestrator) RegisterHandler(h core.Handler) error {
	if err := o.registry.Register(h); err != nil {
		return err
	}

	o.logger.Info("orchestrator.handler.registered", "handler", h.Name())

	return nil
}

// Handlers returns the registered handlers in registration order.
func (o *Orchestrator) Handlers() []core.Handler { return o.registry.Handlers() }

// route is the orchestrator's execution function: classify the request,
// then either delegate and synthesize or handle it directly.
func (o *Orchestrator) route(ctx context.Context, task *core.Task) (string, error) {
	dec := o.classify(ctx, task)

	if dec.NeedsDelegation {
		o.logger.Info("orchestrator.delegating", "task_id", task.ID, "subtasks", len(dec.Subtasks))
		outcomes := o.delegate(ctx, task, dec.Subtasks)
		return o.synthesize(ctx, task, outcomes)
	}

	return o.handleDirectly(ctx, task)
}

// Chat answers one user message within a session. It always returns a
// response string: when the pipeline fails, the text names the error. Both
// sides of the exchange are appended to the session afterwards, so history
// injected into later turns never includes the in-flight message.
func (o *Orchestrator) Chat(ctx context.Context, sessionID, message string) (string, error) {
	requestID := core.NewID()

	if _, err := o.sessions.Get(sessionID); err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}

	o.logger.Info("orchestrator.chat.started", "request_id", requestID, "session_id", sessionID)

	task := o.CreateTask("Chat: "+message, map[string]any{
		"session_id": sessionID,
		"request_id": requestID,
	})

	done := o.ExecuteTask(ctx, task)

	response := done.Result
	if done.Status != core.TaskCompleted {
		response = fmt.Sprintf("I encountered an error: %s", done.Error)
	}

	o.appendExchange(sessionID, message, response)

	o.logger.Info("orchestrator.chat.finished", "request_id", requestID,
		"session_id", sessionID, "status", string(done.Status))

	return response, nil
}

// ChatStream answers one user message with the response streamed as text
// fragments. The pipeline is the same as Chat; only the final model call
// streams. Closing the string channel marks the end of the response; at
// most one error is sent before close.
func (o *Orchestrator) ChatStream(ctx context.Context, sessionID, message string) (<-chan string, <-chan error) {
	out := make(chan string)
	errOut := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errOut)

		requestID := core.NewID()

		if _, err := o.sessions.Get(sessionID); err != nil {
			errOut <- fmt.Errorf("session lookup: %w", err)
			return
		}

		o.logger.Info("orchestrator.chat_stream.started", "request_id", requestID, "session_id", sessionID)

		// The streamed variant carries its work in a transient task: the
		// prompt builders see the same shape Chat produces, but no handler
		// record is created for a response that only exists as a stream.
		task := core.NewTask(requestID, "Chat: "+message, map[string]any{
			"session_id": sessionID,
			"request_id": requestID,
		})

		var messages []core.Message
		dec := o.classify(ctx, task)
		if dec.NeedsDelegation {
			o.logger.Info("orchestrator.delegating", "task_id", task.ID, "subtasks", len(dec.Subtasks))
			outcomes := o.delegate(ctx, task, dec.Subtasks)

			m, err := o.synthesisMessages(task, outcomes)
			if err != nil {
				errOut <- err
				return
			}
			messages = m
		} else {
			messages = o.directMessages(ctx, task)
		}

		response, err := o.streamCompletion(ctx, messages, out)
		if err != nil {
			o.logger.Error("orchestrator.chat_stream.failed", "request_id", requestID, "error", err.Error())
			errOut <- err
			return
		}

		o.appendExchange(sessionID, message, response)

		o.logger.Info("orchestrator.chat_stream.finished", "request_id", requestID, "session_id", sessionID)
	}()

	return out, errOut
}

// streamCompletion runs one streaming model call, forwarding partial
// fragments to out, and returns the final accumulated text. Providers that
// do not stream deliver the whole response as a single fragment.
func (o *Orchestrator) streamCompletion(ctx context.Context, messages []core.Message, out chan<- string) (string, error) {
	respCh, errCh := o.CompleteStream(ctx, messages, o.hint)

	var partials strings.Builder
	var final string
	sawPartial := false

	for respCh != nil || errCh != nil {
		select {
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if r.Partial {
				sawPartial = true
				partials.WriteString(r.Content)
				select {
				case out <- r.Content:
				case <-ctx.Done():
					return "", ctx.Err()
				}
			} else {
				final = r.Content
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return "", err
			}
		}
	}

	if final == "" {
		final = partials.String()
	}
	if !sawPartial && final != "" {
		select {
		case out <- final:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return final, nil
}

// sessionHistory returns the most recent conversation turns for the task's
// session, oldest first, capped at the configured history length.
func (o *Orchestrator) sessionHistory(task *core.Task) []core.Message {
	sessionID, _ := task.Context["session_id"].(string)
	if sessionID == "" {
		return nil
	}

	sess, err := o.sessions.Get(sessionID)
	if err != nil {
		o.logger.Warn("orchestrator.session.lookup_failed", "session_id", sessionID, "error", err.Error())
		return nil
	}

	history := sess.History()
	if o.maxHistory > 0 && len(history) > o.maxHistory {
		history = history[len(history)-o.maxHistory:]
	}

	return history
}

// appendExchange records both sides of a completed turn.
func (o *Orchestrator) appendExchange(sessionID, userMessage, response string) {
	if err := o.sessions.AppendMessage(sessionID, core.UserMessage(userMessage)); err != nil {
		o.logger.Warn("orchestrator.session.append_failed", "session_id", sessionID, "error", err.Error())
		return
	}
	if err := o.sessions.AppendMessage(sessionID, core.AssistantMessage(response)); err != nil {
		o.logger.Warn("orchestrator.session.append_failed", "session_id", sessionID, "error", err.Error())
	}
}

// taskPrompt renders the task for inclusion in a prompt: the description
// followed by the task context as JSON.
func taskPrompt(task *core.Task) string {
	if len(task.Context) == 0 {
		return task.Description
	}

	data, err := json.Marshal(task.Context)
	if err != nil {
		return task.Description
	}

	return fmt.Sprintf("%s\n\nContext: %s", task.Description, data)
}
