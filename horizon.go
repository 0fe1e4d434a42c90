// Package horizon provides a high-level façade over the orchestrator, the
// specialized handlers and the shared services (semantic memory, sessions &
// logging) enabling rapid construction of a coordinated assistant. Most
// applications interact with this package by:
//  1. Creating an Assistant via New() with a model and an embedder
//  2. Optionally registering extra handlers beside the built-in four
//  3. Calling Chat (one response per turn) or ChatStream (text fragments)
//
// The façade delegates coordination to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply a
// data directory or storage backend, a structured logger and a model call
// budget.
package horizon

import (
	"context"
	"time"

	"github.com/joinaiwms/horizon/agent"
	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/embedding"
	"github.com/joinaiwms/horizon/logging"
	"github.com/joinaiwms/horizon/memory"
	"github.com/joinaiwms/horizon/model"
	"github.com/joinaiwms/horizon/orchestrator"
	"github.com/joinaiwms/horizon/storage"
)

// Options configures the Assistant instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// SessionStore holds conversation history (defaults to in-memory)
	SessionStore core.SessionStore

	// Storage persists the memory store across restarts. Takes precedence
	// over DataDir. Nil with an empty DataDir keeps memory volatile.
	Storage storage.Store

	// DataDir, when set and Storage is nil, persists memory as files under
	// this directory.
	DataDir string

	// ModelTimeout bounds each individual model call. Zero keeps the
	// per-handler default.
	ModelTimeout time.Duration

	// MaxModelCalls caps the model calls spent across the orchestrator and
	// all handlers together. Zero means unlimited.
	MaxModelCalls int

	// MaxParallel bounds the subtask fan-out during delegation. Zero keeps
	// the sequential default.
	MaxParallel int

	// MaxHistory caps the conversation turns injected into direct handling.
	// Zero keeps the default.
	MaxHistory int

	// MemoryTopK and MemoryThreshold tune the relevant-context lookups all
	// handlers perform. Zero values keep the defaults.
	MemoryTopK      int
	MemoryThreshold float64
}

// Assistant is the high-level façade aggregating the orchestrator, the
// built-in handlers and the shared memory store.
type Assistant struct {
	orchestrator *orchestrator.Orchestrator
	memory       *memory.Store
	limiter      *core.ModelLimiter
	logger       logging.Logger
}

// Status is a point-in-time snapshot of the assistant: per-handler task
// counters keyed by handler name, memory store statistics and the number of
// model calls spent so far (0 when no budget is configured).
type Status struct {
	Handlers   map[string]agent.Stats `json:"handlers"`
	Memory     memory.Stats           `json:"memory"`
	ModelCalls int                    `json:"model_calls"`
}

// New creates an Assistant around the given model and embedder, with the
// four built-in handlers (code, docs, ops, planner) registered and sharing
// one memory store, session store and call budget.
func New(llm model.Model, embedder embedding.Embedder, optFns ...func(o *Options)) (*Assistant, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	store := opts.Storage
	if store == nil && opts.DataDir != "" {
		fileStore, err := storage.NewFileStore(opts.DataDir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	}

	mem, err := memory.New(embedder, func(mo *memory.Options) {
		mo.Storage = store
		mo.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	var limiter *core.ModelLimiter
	if opts.MaxModelCalls > 0 {
		limiter = core.NewModelLimiter(opts.MaxModelCalls)
	}

	orch, err := orchestrator.New(llm, func(oo *orchestrator.Options) {
		oo.Memory = mem
		oo.MemoryTopK = opts.MemoryTopK
		oo.MemoryThreshold = opts.MemoryThreshold
		oo.Limiter = limiter
		oo.Logger = opts.Logger
		if opts.SessionStore != nil {
			oo.Sessions = opts.SessionStore
		}
		if opts.ModelTimeout > 0 {
			oo.ModelTimeout = opts.ModelTimeout
		}
		if opts.MaxParallel > 0 {
			oo.MaxParallel = opts.MaxParallel
		}
		if opts.MaxHistory > 0 {
			oo.MaxHistory = opts.MaxHistory
		}
	})
	if err != nil {
		return nil, err
	}

	handlerOpts := func(ho *agent.Options) {
		ho.Memory = mem
		ho.MemoryTopK = opts.MemoryTopK
		ho.MemoryThreshold = opts.MemoryThreshold
		ho.Limiter = limiter
		ho.Logger = opts.Logger
		if opts.ModelTimeout > 0 {
			ho.ModelTimeout = opts.ModelTimeout
		}
	}

	builtins := []core.Handler{
		agent.NewCodeHandler(llm, handlerOpts),
		agent.NewDocsHandler(llm, handlerOpts),
		agent.NewOpsHandler(llm, handlerOpts),
		agent.NewPlannerHandler(llm, handlerOpts),
	}
	for _, h := range builtins {
		if err := orch.RegisterHandler(h); err != nil {
			return nil, err
		}
	}

	return &Assistant{
		orchestrator: orch,
		memory:       mem,
		limiter:      limiter,
		logger:       opts.Logger,
	}, nil
}

// RegisterHandler adds a handler the orchestrator may delegate to, beside
// the built-in four. Handler names must be unique.
func (a *Assistant) RegisterHandler(h core.Handler) error {
	return a.orchestrator.RegisterHandler(h)
}

// Chat answers one user message within a session and returns the response
// text. Pipeline failures are reported inside the response rather than as
// an error, so a conversation can always continue.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string) (string, error) {
	return a.orchestrator.Chat(ctx, sessionID, message)
}

// ChatStream answers one user message with the response streamed as text
// fragments. The string channel closes when the response is complete; at
// most one error is sent before close.
func (a *Assistant) ChatStream(ctx context.Context, sessionID, message string) (<-chan string, <-chan error) {
	return a.orchestrator.ChatStream(ctx, sessionID, message)
}

// Orchestrator exposes the coordinating handler for direct task-level use.
func (a *Assistant) Orchestrator() *orchestrator.Orchestrator { return a.orchestrator }

// Memory exposes the shared semantic memory store.
func (a *Assistant) Memory() *memory.Store { return a.memory }

// Status reports per-handler task counters, memory statistics and model
// call usage.
func (a *Assistant) Status() Status {
	handlers := map[string]agent.Stats{
		a.orchestrator.Name(): a.orchestrator.Stats(),
	}
	for _, h := range a.orchestrator.Handlers() {
		if counted, ok := h.(interface{ Stats() agent.Stats }); ok {
			handlers[h.Name()] = counted.Stats()
		}
	}

	status := Status{Handlers: handlers, Memory: a.memory.Stats()}
	if a.limiter != nil {
		status.ModelCalls = a.limiter.Count()
	}

	return status
}
