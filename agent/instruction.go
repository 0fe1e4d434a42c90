package agent

import (
	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from the task being executed.
type Provider interface {
	Instruction(*core.Task) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.Task) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(task *core.Task) (string, error) { return f(task) }

// Instruction represents either a static instruction string or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.Task) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text for the given task. Static text is
// rendered as a Go template against the task context, so instructions can
// reference context values like {{.project}}.
func (i Instruction) Resolve(task *core.Task) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(task)
	}

	var state map[string]any
	if task != nil {
		state = task.Context
	}

	return util.RenderTemplate(i.text, state)
}
