// Package model defines the provider-agnostic abstractions for language model
// access.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Route work to the right model class via selection hints, not hardcoded
//     model ids in calling code
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (handlers, the orchestrator) remain decoupled from
// vendor SDKs.
package model
