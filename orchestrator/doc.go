// Package orchestrator implements the coordinating handler that turns one
// incoming request into a coherent response, possibly via several
// specialized handlers.
//
// Each request runs the same pipeline: classify asks the model whether the
// request needs delegation and how to split it (any parse failure degrades
// to direct handling), delegate dispatches subtasks to registered handlers
// and gathers outcomes in subtask order, and synthesize merges all outcomes,
// failures included, into the final answer. Requests that need no
// delegation are answered directly with retrieved memory context and
// conversation history.
//
// The Orchestrator is itself a core.Handler, so its coordination work is
// recorded as tasks with the same lifecycle guarantees as any specialist.
// Chat and ChatStream wrap the pipeline with session bookkeeping.
package orchestrator
