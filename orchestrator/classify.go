package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/internal/util"
)

// Subtask is one unit of delegated work produced by classification. The
// "agent" key names the target handler in the registry.
type Subtask struct {
	Description string `json:"description"`
	Handler     string `json:"agent"`
	Priority    int    `json:"priority,omitempty"`
}

// Decomposition is the parsed classification verdict. The zero value means
// "handle directly" and is the fallback for every classification failure.
type Decomposition struct {
	NeedsDelegation bool      `json:"needs_delegation"`
	Subtasks        []Subtask `json:"subtasks,omitempty"`
}

// decompositionSchema checks the top-level shape of a classification
// response before it is unmarshaled.
var decompositionSchema = util.CreateSchema(Decomposition{})

// classify asks the model whether the request needs delegation and, if so,
// how to split it across the registered handlers. Classification never
// aborts a request: provider failures and malformed responses degrade to
// the direct-handling verdict.
func (o *Orchestrator) classify(ctx context.Context, task *core.Task) Decomposition {
	content, err := o.Complete(ctx, o.classifyMessages(task), o.hint)
	if err != nil {
		o.logger.Warn("orchestrator.classify.failed", "task_id", task.ID, "error", err.Error())
		return Decomposition{}
	}

	dec, err := parseDecomposition(content)
	if err != nil {
		o.logger.Warn("orchestrator.classify.fallback", "task_id", task.ID, "error", err.Error())
		return Decomposition{}
	}

	o.logger.Debug("orchestrator.classify.parsed", "task_id", task.ID,
		"needs_delegation", dec.NeedsDelegation, "subtasks", len(dec.Subtasks))

	return dec
}

// classifyMessages builds the single-call classification request: the
// system prompt plus a user message listing the registered handlers and
// demanding a JSON decomposition of the task.
func (o *Orchestrator) classifyMessages(task *core.Task) []core.Message {
	var sb strings.Builder

	sb.WriteString("Analyze the request below and decide how to handle it.\n\nAvailable handlers:\n")
	for _, h := range o.registry.Handlers() {
		fmt.Fprintf(&sb, "- %s: %s\n", h.Name(), h.Description())
	}

	sb.WriteString(`
Respond with a JSON object of this exact shape:
{
  "needs_delegation": true or false,
  "subtasks": [
    {"description": "what to do", "agent": "handler name from the list", "priority": 1}
  ]
}

Set "needs_delegation" to false and "subtasks" to [] when the request can be answered well in a single step. Respond with the JSON object only.

The request:
`)
	sb.WriteString(taskPrompt(task))

	return []core.Message{
		core.SystemMessage(o.systemPrompt),
		core.UserMessage(sb.String()),
	}
}

// parseDecomposition defensively parses a model response into a
// Decomposition: extract the outermost JSON object, validate its shape,
// then unmarshal. Every failure is a ClassificationParseError for the
// caller to recover from.
func parseDecomposition(content string) (Decomposition, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Decomposition{}, &core.ClassificationParseError{Raw: content, Err: fmt.Errorf("no JSON object in response")}
	}
	raw := content[start : end+1]

	var loose map[string]any
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return Decomposition{}, &core.ClassificationParseError{Raw: raw, Err: err}
	}
	if err := util.ValidateParameters(loose, decompositionSchema); err != nil {
		return Decomposition{}, &core.ClassificationParseError{Raw: raw, Err: err}
	}

	var dec Decomposition
	if err := json.Unmarshal([]byte(raw), &dec); err != nil {
		return Decomposition{}, &core.ClassificationParseError{Raw: raw, Err: err}
	}

	for i, st := range dec.Subtasks {
		if strings.TrimSpace(st.Description) == "" || strings.TrimSpace(st.Handler) == "" {
			return Decomposition{}, &core.ClassificationParseError{
				Raw: raw,
				Err: fmt.Errorf("subtask %d is missing a description or handler", i),
			}
		}
	}

	// Nothing to delegate means direct handling, verdict notwithstanding.
	if len(dec.Subtasks) == 0 {
		dec.NeedsDelegation = false
	}

	return dec, nil
}
