package core

import (
	"context"
	"errors"
	"fmt"
)

// DimensionMismatchError reports a vector whose width violates the embedding
// index contract. It indicates provider misconfiguration and is never
// swallowed: proceeding would corrupt the index-to-metadata mapping.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: index expects %d, got %d", e.Want, e.Got)
}

// EmbeddingError wraps a failed embedding provider call. The operation that
// triggered it leaves the memory store unchanged; callers may retry.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (provider %s): %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// ProviderErrorKind classifies language model call failures.
type ProviderErrorKind string

const (
	// ProviderErrorRateLimit marks calls rejected by rate limiting or an
	// exhausted local call budget.
	ProviderErrorRateLimit ProviderErrorKind = "rate_limit"
	// ProviderErrorMalformed marks responses that could not be interpreted.
	ProviderErrorMalformed ProviderErrorKind = "malformed_response"
	// ProviderErrorTimeout marks calls cut off by the caller-supplied timeout.
	ProviderErrorTimeout ProviderErrorKind = "timeout"
	// ProviderErrorOther covers transport and API failures.
	ProviderErrorOther ProviderErrorKind = "other"
)

// ProviderError wraps a failed language model call.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Kind == ProviderErrorTimeout {
		return fmt.Sprintf("model call timed out (provider %s): %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("model call failed (provider %s, %s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapProviderError builds a ProviderError from err, classifying context
// deadline expiry as a timeout. A nil err returns nil.
func WrapProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	kind := ProviderErrorOther
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ProviderErrorTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// ClassificationParseError reports a model decomposition response that did
// not conform to the expected JSON shape. It is always recovered locally by
// falling back to direct handling and never surfaces to the requester.
type ClassificationParseError struct {
	Raw string
	Err error
}

func (e *ClassificationParseError) Error() string {
	return fmt.Sprintf("classification response did not parse: %v", e.Err)
}

func (e *ClassificationParseError) Unwrap() error { return e.Err }

// HandlerUnavailableError reports a subtask addressed to a handler name that
// is not registered. Recorded as a partial-failure outcome, never fatal.
type HandlerUnavailableError struct {
	Handler string
}

func (e *HandlerUnavailableError) Error() string {
	return fmt.Sprintf("handler unavailable: %s", e.Handler)
}

// PersistenceError reports a failed durable storage read or write. The memory
// store logs it and continues in memory rather than failing the caller.
type PersistenceError struct {
	Op       string // "save" or "load"
	Artifact string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed for %q: %v", e.Op, e.Artifact, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
