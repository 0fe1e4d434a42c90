package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joinaiwms/horizon/core"
)

// Request captures the normalized model input produced by handlers.
type Request struct {
	Messages []core.Message `json:"messages"`
	Hint     Hint           `json:"hint,omitempty"`
	Stream   bool           `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	Content      string      `json:"content"`
	Partial      bool        `json:"partial"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name              string `json:"name"`
	Provider          string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsStreaming bool   `json:"supports_streaming"`
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Complete runs a non-streaming generation and returns the final text. It
// drains both channels until the producer closes them, surfacing the first
// error or context cancellation.
func Complete(ctx context.Context, m Model, req Request) (string, error) {
	req.Stream = false
	respCh, errCh := m.Generate(ctx, req)

	var final string
	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				final = resp.Content
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return "", err
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return final, nil
}

// canned pairs a trigger fragment with its scripted completion.
type canned struct {
	fragment string
	response string
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Completions are scripted: the first registered fragment contained in the
// latest message wins, so lookup order is deterministic.
type MockModel struct {
	info      Info
	responses []canned
	err       error
	delay     time.Duration
}

// NewMockModel constructs a MockModel with streaming support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:              name,
			Provider:          provider,
			SupportsStreaming: true,
		},
	}
}

// AddResponse registers a canned completion returned whenever the latest
// message contains the given fragment.
func (m *MockModel) AddResponse(fragment, response string) {
	m.responses = append(m.responses, canned{fragment: fragment, response: response})
}

// FailWith makes every subsequent generation report err instead of content.
func (m *MockModel) FailWith(err error) { m.err = err }

// SetDelay inserts an artificial pause before responding, for timeout tests.
func (m *MockModel) SetDelay(d time.Duration) { m.delay = d }

// Generate implements Model; emits optional streaming char chunks then the
// final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if m.delay > 0 {
			select {
			case <-time.After(m.delay):
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if m.err != nil {
			errCh <- m.err
			return
		}
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}

		input := req.Messages[len(req.Messages)-1].Content
		full := m.lookup(input)
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Content: string(r)}:
				}
			}
		}
		respCh <- Response{Content: full, FinishReason: "stop"}
	}()
	return respCh, errCh
}

func (m *MockModel) lookup(input string) string {
	for _, c := range m.responses {
		if strings.Contains(input, c.fragment) {
			return c.response
		}
	}
	return fmt.Sprintf("Mock response to: %s", input)
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
