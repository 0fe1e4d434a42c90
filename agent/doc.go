// Package agent provides the task handler machinery.
//
// BaseHandler owns everything the handler variants share: task
// registration with stable IDs, the Pending -> Running -> terminal
// lifecycle, model access with per-call timeouts and budget
// enforcement, and the background memory write that follows a
// completed task. Variants plug their behavior in as an ExecFunc.
//
// The package ships four specialists recovered as thin variants over
// BaseHandler: code (programming tasks), docs (document analysis),
// planner (project planning), and ops (operational guidance). Each is
// a system prompt, a keyword classifier, and per-subtype directives.
//
// Registry collects handlers by name for the orchestrator, preserving
// registration order so classification prompts stay stable.
package agent
