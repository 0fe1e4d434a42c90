package model

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joinaiwms/horizon/core"
)

var _ Model = (*MockModel)(nil)

func userReq(text string) Request {
	return Request{Messages: []core.Message{core.UserMessage(text)}}
}

func TestComplete_ReturnsFinalContent(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddResponse("ping", "pong")

	out, err := Complete(context.Background(), m, userReq("ping"))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "pong" {
		t.Fatalf("expected scripted response, got %q", out)
	}
}

func TestComplete_SurfacesError(t *testing.T) {
	m := NewMockModel("test", "mock")
	boom := errors.New("provider exploded")
	m.FailWith(boom)

	_, err := Complete(context.Background(), m, userReq("anything"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestComplete_ContextCancellation(t *testing.T) {
	m := NewMockModel("slow", "mock")
	m.SetDelay(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Complete(ctx, m, userReq("never arrives"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestMockModel_FirstRegisteredFragmentWins(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddResponse("blue", "first")
	m.AddResponse("sky is blue", "second")

	out, err := Complete(context.Background(), m, userReq("the sky is blue today"))
	if err != nil {
		t.Fatal(err)
	}
	if out != "first" {
		t.Fatalf("lookup should scan in registration order, got %q", out)
	}
}

func TestMockModel_DefaultResponse(t *testing.T) {
	m := NewMockModel("test", "mock")

	out, err := Complete(context.Background(), m, userReq("unscripted"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "unscripted") {
		t.Fatalf("default response should echo the input, got %q", out)
	}
}

func TestMockModel_StreamingChunks(t *testing.T) {
	m := NewMockModel("test", "mock")
	m.AddResponse("stream", "abc")

	req := userReq("stream this")
	req.Stream = true
	respCh, errCh := m.Generate(context.Background(), req)

	var partials strings.Builder
	var final string
	for resp := range respCh {
		if resp.Partial {
			partials.WriteString(resp.Content)
		} else {
			final = resp.Content
		}
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if partials.String() != "abc" {
		t.Fatalf("partials should concatenate to the full text, got %q", partials.String())
	}
	if final != "abc" {
		t.Fatalf("final chunk should carry full text, got %q", final)
	}
}

func TestHintForTask(t *testing.T) {
	cases := []struct {
		description string
		want        Hint
	}{
		{"debug the authentication module", HintCode},
		{"review this code for style issues", HintCode},
		{"write a short story about autumn", HintCreative},
		{"translate the greeting into French", HintCreative},
		{"what is the capital of Peru", HintDefault},
		{"", HintDefault},
	}
	for _, tc := range cases {
		if got := HintForTask(tc.description); got != tc.want {
			t.Errorf("HintForTask(%q) = %s, want %s", tc.description, got, tc.want)
		}
	}
}
