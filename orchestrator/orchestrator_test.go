package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/joinaiwms/horizon/agent"
	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/internal/testutil"
	"github.com/joinaiwms/horizon/model"
	"github.com/joinaiwms/horizon/session"
	"github.com/stretchr/testify/assert"
)

var _ core.Handler = (*Orchestrator)(nil)

// scriptedModel returns one scripted step per Generate call, in order, and
// records every request it sees. MockModel keys responses off message
// content; this keys them off call sequence, which the history and
// synthesis-failure tests need.
type scriptedModel struct {
	mu       sync.Mutex
	steps    []scriptedStep
	requests []model.Request
}

type scriptedStep struct {
	content string
	err     error
}

func (m *scriptedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var step scriptedStep
	if len(m.steps) > 0 {
		step = m.steps[0]
		m.steps = m.steps[1:]
	} else {
		step = scriptedStep{err: errors.New("no scripted step left")}
	}
	m.mu.Unlock()

	if step.err != nil {
		errCh <- step.err
	} else {
		respCh <- model.Response{Content: step.content, FinishReason: "stop"}
	}
	close(respCh)
	close(errCh)

	return respCh, errCh
}

func (m *scriptedModel) Info() model.Info {
	return model.Info{Name: "scripted-model", Provider: "mock"}
}

func TestNew_RequiresModel(t *testing.T) {
	o, err := New(nil)

	assert.Error(t, err)
	assert.Nil(t, o)
}

func TestOrchestrator_RegisterHandler_Duplicate(t *testing.T) {
	o, err := New(model.NewMockModel("mock-model", "mock"))
	assert.NoError(t, err)

	llm := model.NewMockModel("mock-model", "mock")
	assert.NoError(t, o.RegisterHandler(agent.NewBaseHandler("code", "writes code", llm)))

	err = o.RegisterHandler(agent.NewBaseHandler("code", "another", llm))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestOrchestrator_Chat_DirectPath(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Respond with the JSON object only", testutil.DirectJSON())
	llm.AddResponse("Handle this request directly", "Paris is the capital of France.")

	sessions := session.NewInMemoryStore()
	o, err := New(llm, func(opts *Options) {
		opts.Sessions = sessions
	})
	assert.NoError(t, err)

	response, err := o.Chat(context.Background(), "sess-1", "What is the capital of France?")

	assert.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", response)

	stats := o.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Completed)

	sess, err := sessions.Get("sess-1")
	assert.NoError(t, err)
	history := sess.History()
	assert.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, "What is the capital of France?", history[0].Content)
	assert.Equal(t, core.RoleAssistant, history[1].Role)
	assert.Equal(t, "Paris is the capital of France.", history[1].Content)
}

func TestOrchestrator_Chat_DelegationPath(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Respond with the JSON object only", testutil.DelegationJSON(
		testutil.SubtaskSpec{Description: "write the add function", Agent: "code", Priority: 1},
		testutil.SubtaskSpec{Description: "summarize the approach", Agent: "docs", Priority: 2},
	))
	llm.AddResponse("Synthesize the following handler results", "combined answer")

	codeModel := model.NewMockModel("mock-model", "mock")
	codeModel.AddResponse("add function", "func Add written")
	docsModel := model.NewMockModel("mock-model", "mock")
	docsModel.AddResponse("approach", "approach summarized")

	o, err := New(llm)
	assert.NoError(t, err)

	codeHandler := agent.NewBaseHandler("code", "writes code", codeModel)
	assert.NoError(t, o.RegisterHandler(codeHandler))
	assert.NoError(t, o.RegisterHandler(agent.NewBaseHandler("docs", "writes docs", docsModel)))

	response, err := o.Chat(context.Background(), "sess-2", "Build and document an add function")

	assert.NoError(t, err)
	assert.Equal(t, "combined answer", response)
	assert.Equal(t, 1, codeHandler.Stats().Completed)
}

func TestOrchestrator_Chat_SynthesisFailure(t *testing.T) {
	llm := &scriptedModel{steps: []scriptedStep{
		{content: testutil.DelegationJSON(testutil.SubtaskSpec{Description: "write it", Agent: "code"})},
		{err: errors.New("synthesis provider down")},
	}}

	o, err := New(llm)
	assert.NoError(t, err)

	codeModel := model.NewMockModel("mock-model", "mock")
	codeModel.AddResponse("write it", "written")
	assert.NoError(t, o.RegisterHandler(agent.NewBaseHandler("code", "writes code", codeModel)))

	response, err := o.Chat(context.Background(), "sess-3", "Write it for me")

	assert.NoError(t, err)
	assert.Contains(t, response, "I encountered an error:")
	assert.Contains(t, response, "synthesis provider down")
	assert.Equal(t, 1, o.Stats().Failed)
}

func TestOrchestrator_Chat_MalformedClassificationFallsBack(t *testing.T) {
	// No canned classification response: the default echo is not a valid
	// decomposition, so the request degrades to direct handling.
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Handle this request directly", "fallback answer")

	o, err := New(llm)
	assert.NoError(t, err)

	response, err := o.Chat(context.Background(), "sess-8", "Do something unusual")

	assert.NoError(t, err)
	assert.Equal(t, "fallback answer", response)
	assert.Equal(t, 1, o.Stats().Completed)
}

func TestOrchestrator_Chat_ProviderFailure(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.FailWith(errors.New("provider exploded"))

	o, err := New(llm)
	assert.NoError(t, err)

	response, err := o.Chat(context.Background(), "sess-4", "Anything at all")

	assert.NoError(t, err)
	assert.Contains(t, response, "I encountered an error:")
	assert.Contains(t, response, "provider exploded")
}

func TestOrchestrator_Chat_InjectsHistory(t *testing.T) {
	llm := &scriptedModel{steps: []scriptedStep{
		{content: testutil.DirectJSON()},
		{content: "Go is a programming language."},
		{content: testutil.DirectJSON()},
		{content: "It was designed at Google."},
	}}

	o, err := New(llm)
	assert.NoError(t, err)

	ctx := context.Background()
	first, err := o.Chat(ctx, "sess-5", "What is Go?")
	assert.NoError(t, err)
	assert.Equal(t, "Go is a programming language.", first)

	second, err := o.Chat(ctx, "sess-5", "Tell me more about it")
	assert.NoError(t, err)
	assert.Equal(t, "It was designed at Google.", second)

	// Call 4 is the second turn's direct-handling call; it must carry the
	// first exchange as history between the system prompt and the request.
	assert.Len(t, llm.requests, 4)
	messages := llm.requests[3].Messages
	assert.Len(t, messages, 4)
	assert.Equal(t, core.RoleSystem, messages[0].Role)
	assert.Equal(t, core.RoleUser, messages[1].Role)
	assert.Equal(t, "What is Go?", messages[1].Content)
	assert.Equal(t, core.RoleAssistant, messages[2].Role)
	assert.Equal(t, "Go is a programming language.", messages[2].Content)
	assert.Equal(t, core.RoleUser, messages[3].Role)
	assert.Contains(t, messages[3].Content, "Tell me more about it")
}

func TestOrchestrator_ChatStream_Direct(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Respond with the JSON object only", testutil.DirectJSON())
	llm.AddResponse("Handle this request directly", "streamed answer")

	sessions := session.NewInMemoryStore()
	o, err := New(llm, func(opts *Options) {
		opts.Sessions = sessions
	})
	assert.NoError(t, err)

	fragments, errCh := o.ChatStream(context.Background(), "sess-6", "Stream something")

	var sb strings.Builder
	for fragment := range fragments {
		sb.WriteString(fragment)
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, "streamed answer", sb.String())

	// Streaming leaves no task record behind; only the session grows.
	assert.Equal(t, 0, o.Stats().Total)
	sess, err := sessions.Get("sess-6")
	assert.NoError(t, err)
	history := sess.History()
	assert.Len(t, history, 2)
	assert.Equal(t, "streamed answer", history[1].Content)
}

func TestOrchestrator_ChatStream_ProviderFailure(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.FailWith(errors.New("stream broke"))

	o, err := New(llm)
	assert.NoError(t, err)

	fragments, errCh := o.ChatStream(context.Background(), "sess-7", "Stream something")

	for range fragments {
	}
	err = <-errCh
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "stream broke")
}
