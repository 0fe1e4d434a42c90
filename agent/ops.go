package agent

import (
	"context"
	"strings"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/model"
)

const opsDescription = "Specialized handler for system operations guidance: file management, commands, packaging, and environment setup"

// The ops handler is advisory: it produces precise operational instructions
// and expected outcomes but never executes anything itself.
const opsSystemPrompt = `You are OpsAgent, a specialized AI assistant focused on system operations and tooling. Your expertise includes:

1. File system operations and management
2. System command construction and automation
3. Project packaging and deployment
4. Environment setup and configuration
5. Data processing and transformation
6. Backup and archival operations

You advise; you do not execute. For every task:
- Give the exact commands or steps, in order, with their expected output
- Call out anything destructive and how to make it reversible
- Validate inputs and note the failure modes to watch for
- Prefer portable, well-known tooling

Always prioritize system security and data integrity in the operations you recommend.`

const (
	opsFileDirective = `Lay out the file operations for this task. Give the exact steps or commands, what each one does, and how to verify the result.`

	opsCommandDirective = `Construct the commands for this task. For each command give the full invocation, what it does, the expected output, and any flags worth knowing about.`

	opsPackagingDirective = `Describe how to package or archive this project. Cover the layout to include, the exact packaging commands, and how to verify the artifact.`

	opsEnvironmentDirective = `Describe the environment setup for this task. List prerequisites, the installation and configuration steps in order, and how to confirm the environment works.`

	opsDataDirective = `Describe how to process or transform the data for this task. Give the steps or commands, the expected intermediate shapes, and validation checks for the output.`
)

// OpsHandler answers operational requests with step-by-step guidance. It
// classifies file operations, command construction, packaging, environment
// setup, and data processing by keyword.
type OpsHandler struct {
	*BaseHandler
}

// NewOpsHandler creates the ops specialist.
func NewOpsHandler(llm model.Model, optFns ...func(o *Options)) *OpsHandler {
	opts := Options{
		Instruction:  NewInstructionFromText(opsSystemPrompt),
		ModelTimeout: defaultModelTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &OpsHandler{BaseHandler: newBaseHandler("ops", opsDescription, llm, opts)}
	h.exec = h.execute

	return h
}

func (h *OpsHandler) execute(ctx context.Context, task *core.Task) (string, error) {
	var directive string

	switch classifyOpsTask(task.Description) {
	case "file_operations":
		directive = opsFileDirective
	case "system_commands":
		directive = opsCommandDirective
	case "project_packaging":
		directive = opsPackagingDirective
	case "environment_setup":
		directive = opsEnvironmentDirective
	case "data_processing":
		directive = opsDataDirective
	}

	return h.Generate(ctx, task, directive)
}

func classifyOpsTask(description string) string {
	d := strings.ToLower(description)

	switch {
	case containsAny(d, "file", "directory", "folder", "copy", "move"):
		return "file_operations"
	case containsAny(d, "command", "execute", "run", "script"):
		return "system_commands"
	case containsAny(d, "package", "zip", "archive", "bundle"):
		return "project_packaging"
	case containsAny(d, "setup", "install", "configure", "environment"):
		return "environment_setup"
	case containsAny(d, "process", "transform", "convert", "data"):
		return "data_processing"
	default:
		return "general"
	}
}
