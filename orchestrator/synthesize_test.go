package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/model"
	"github.com/stretchr/testify/assert"
)

func TestSynthesisMessages_KeepsOutcomeOrder(t *testing.T) {
	o, err := New(model.NewMockModel("mock-model", "mock"))
	assert.NoError(t, err)

	task := core.NewTask("t1", "compound request", nil)
	outcomes := []Outcome{
		{Handler: "code", Subtask: "write the parser", Result: "parser done"},
		{Handler: "sql", Subtask: "load the schema", Error: "handler unavailable: sql"},
		{Handler: "docs", Subtask: "describe the grammar", Result: "grammar described"},
	}

	messages, err := o.synthesisMessages(task, outcomes)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, core.RoleSystem, messages[0].Role)

	prompt := messages[1].Content
	assert.Contains(t, prompt, "1 of 3 subtasks failed")

	first := strings.Index(prompt, "parser done")
	second := strings.Index(prompt, "handler unavailable: sql")
	third := strings.Index(prompt, "grammar described")
	assert.True(t, first >= 0, "first outcome missing")
	assert.True(t, first < second, "failed outcome out of order")
	assert.True(t, second < third, "third outcome out of order")
}

func TestSynthesisMessages_NoFailureLineWhenAllSucceed(t *testing.T) {
	o, err := New(model.NewMockModel("mock-model", "mock"))
	assert.NoError(t, err)

	task := core.NewTask("t1", "compound request", nil)
	messages, err := o.synthesisMessages(task, []Outcome{
		{Handler: "code", Subtask: "write it", Result: "written"},
	})

	assert.NoError(t, err)
	assert.NotContains(t, messages[1].Content, "subtasks failed")
}

func TestDirectMessages_PrependsMemoryContext(t *testing.T) {
	// Without a memory store the direct prompt starts with the directive.
	o, err := New(model.NewMockModel("mock-model", "mock"))
	assert.NoError(t, err)

	task := core.NewTask("t1", "plain question", nil)
	messages := o.directMessages(context.Background(), task)

	assert.Len(t, messages, 2)
	assert.True(t, strings.HasPrefix(messages[1].Content, "Handle this request directly."))
}
