package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joinaiwms/horizon/core"
)

// synthesize merges all subtask outcomes, successes and failures alike, into
// one response. A provider failure here fails the request task; the chat
// layer turns that into a response naming the error.
func (o *Orchestrator) synthesize(ctx context.Context, task *core.Task, outcomes []Outcome) (string, error) {
	messages, err := o.synthesisMessages(task, outcomes)
	if err != nil {
		return "", err
	}

	return o.Complete(ctx, messages, o.hint)
}

// synthesisMessages serializes the outcomes, in dispatch order, into the
// synthesis prompt. Failed subtasks are surfaced explicitly so the answer
// can acknowledge gaps instead of omitting them.
func (o *Orchestrator) synthesisMessages(task *core.Task, outcomes []Outcome) ([]core.Message, error) {
	payload, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode outcomes: %w", err)
	}

	failed := 0
	for _, oc := range outcomes {
		if !oc.Succeeded() {
			failed++
		}
	}

	var sb strings.Builder
	sb.WriteString("Synthesize the following handler results into one coherent response for the user.\n\n")
	if failed > 0 {
		fmt.Fprintf(&sb, "%d of %d subtasks failed; acknowledge what is missing rather than papering over it.\n\n", failed, len(outcomes))
	}
	sb.WriteString("Handler results, in dispatch order:\n")
	sb.Write(payload)
	sb.WriteString("\n\nProvide a comprehensive, well-structured response that addresses the original request completely and integrates the results.\n\nThe original request:\n")
	sb.WriteString(taskPrompt(task))

	return []core.Message{
		core.SystemMessage(o.systemPrompt),
		core.UserMessage(sb.String()),
	}, nil
}

// handleDirectly answers the request in one model call: retrieved memory
// context first, then the conversation history, then the request itself.
func (o *Orchestrator) handleDirectly(ctx context.Context, task *core.Task) (string, error) {
	return o.Complete(ctx, o.directMessages(ctx, task), o.hint)
}

// directMessages assembles the direct-handling call: system prompt, session
// history when the task carries a session, and the user prompt with any
// relevant memory prepended.
func (o *Orchestrator) directMessages(ctx context.Context, task *core.Task) []core.Message {
	history := o.sessionHistory(task)

	var sb strings.Builder
	if related := o.RelevantContext(ctx, task.Description); related != "" {
		sb.WriteString(related)
		sb.WriteString("\n")
	}
	sb.WriteString("Handle this request directly. Provide a helpful, accurate, and complete response.\n\n")
	sb.WriteString(taskPrompt(task))

	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.SystemMessage(o.systemPrompt))
	messages = append(messages, history...)
	messages = append(messages, core.UserMessage(sb.String()))

	return messages
}
