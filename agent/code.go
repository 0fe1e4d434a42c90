package agent

import (
	"context"
	"strings"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/model"
)

const codeDescription = "Specialized handler for programming, debugging, code generation, and technical analysis"

const codeSystemPrompt = `You are CodeAgent, a specialized AI assistant focused on programming and technical tasks. Your expertise includes:

1. Code generation in multiple programming languages
2. Code debugging and error analysis
3. Code review and optimization suggestions
4. Architecture and design pattern recommendations
5. Technical documentation and explanations
6. Algorithm and data structure implementation
7. API integration and development
8. Testing and quality assurance

When handling code-related tasks:
- Write clean, well-documented, and efficient code
- Follow best practices and coding standards
- Provide explanations for complex logic
- Consider security and performance implications
- Suggest improvements and alternatives when appropriate
- Include error handling and edge cases

Always strive for code that is readable, maintainable, and follows industry standards.`

// Directives shape the user prompt per subtype. Inputs such as the code
// under review or the observed error arrive through the task context.
const (
	codeGenerateDirective = `Generate code for the following requirements. Provide:
1. Clean, well-documented code
2. An explanation of the approach
3. Usage examples
4. Any important considerations or limitations

Format your response with proper code blocks and explanations.`

	codeReviewDirective = `Review the code supplied in the context and provide detailed feedback. Analyze:
1. Code quality and readability
2. Potential bugs or issues
3. Performance considerations
4. Security concerns
5. Best practice adherence
6. Suggestions for improvement

Provide specific, actionable feedback.`

	codeDebugDirective = `Debug the code issue described below, using the code and error supplied in the context. Provide:
1. Root cause analysis
2. A step-by-step debugging approach
3. Fixed code with explanations
4. Prevention strategies for similar issues`

	codeExplainDirective = `Explain the code supplied in the context in detail. Provide:
1. Overall purpose and functionality
2. A step-by-step breakdown
3. Key concepts and algorithms used
4. Input/output behavior

Make the explanation clear and educational.`

	codeOptimizeDirective = `Optimize the code supplied in the context. Provide:
1. An analysis of the current implementation
2. Optimized code with explanations
3. The expected impact of each change
4. Any trade-offs introduced`
)

// CodeHandler handles programming tasks. It recognizes generation, review,
// debugging, explanation, and optimization requests by keyword and shapes
// the model request accordingly; generation requests additionally pull
// related prior work from memory.
type CodeHandler struct {
	*BaseHandler
}

// NewCodeHandler creates the code specialist. It prefers the code-tuned
// model unless a hint override is supplied.
func NewCodeHandler(llm model.Model, optFns ...func(o *Options)) *CodeHandler {
	opts := Options{
		Instruction:  NewInstructionFromText(codeSystemPrompt),
		Hint:         model.HintCode,
		ModelTimeout: defaultModelTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &CodeHandler{BaseHandler: newBaseHandler("code", codeDescription, llm, opts)}
	h.exec = h.execute

	return h
}

func (h *CodeHandler) execute(ctx context.Context, task *core.Task) (string, error) {
	var directive string

	switch classifyCodeTask(task.Description) {
	case "generation":
		directive = codeGenerateDirective
		if related := h.RelevantContext(ctx, task.Description); related != "" {
			directive = related + "\n" + directive
		}
	case "review":
		directive = codeReviewDirective
	case "debugging":
		directive = codeDebugDirective
	case "explanation":
		directive = codeExplainDirective
	case "optimization":
		directive = codeOptimizeDirective
	}

	return h.Generate(ctx, task, directive)
}

// classifyCodeTask buckets a task description by intent keywords. Earlier
// buckets win when keywords overlap.
func classifyCodeTask(description string) string {
	d := strings.ToLower(description)

	switch {
	case containsAny(d, "generate", "create", "write", "implement"):
		return "generation"
	case containsAny(d, "review", "check", "analyze"):
		return "review"
	case containsAny(d, "debug", "fix", "error", "bug"):
		return "debugging"
	case containsAny(d, "explain", "understand", "how does"):
		return "explanation"
	case containsAny(d, "optimize", "improve", "performance"):
		return "optimization"
	default:
		return "general"
	}
}
