// Package core provides the foundational domain types and interfaces used by
// Horizon. It defines the core abstractions for:
//
//   - Tasks (units of work tracked through Pending/Running/Completed/Failed)
//   - Handlers (capabilities that execute tasks, selected by name)
//   - Sessions (stateful conversational containers with message history)
//   - Messages (role/content conversation turns shared with model providers)
//   - The error taxonomy shared by the memory store, providers and orchestrator
//
// The package intentionally keeps implementation concerns (persistence,
// orchestration, concrete handlers) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
