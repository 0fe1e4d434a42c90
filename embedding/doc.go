// Package embedding defines the provider-agnostic text embedding abstraction
// used by semantic memory.
//
// Core goals:
//   - One small interface (Embedder) hiding vendor SDKs from the memory layer
//   - Fixed, provider-declared dimensionality so index width never drifts
//   - Unit-length vectors, making inner product equivalent to cosine
//   - Lightweight mocking for tests and offline runs (MockEmbedder)
//
// Providers (e.g. OpenAI) implement the Embedder interface from this package
// so the memory store remains decoupled from vendor SDKs.
package embedding
