package agent

import (
	"context"
	"strings"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/model"
)

const docsDescription = "Specialized handler for document processing, analysis, and information extraction"

const docsSystemPrompt = `You are DocsAgent, a specialized AI assistant focused on document processing and analysis. Your expertise includes:

1. Document content extraction and parsing
2. Information retrieval and summarization
3. Document structure analysis
4. Content classification and categorization
5. Key information identification
6. Document comparison and analysis
7. Question answering from document content

When handling document-related tasks:
- Accurately extract and interpret document content
- Provide structured summaries and analyses
- Identify key information and insights
- Maintain context and relationships between information
- Provide clear, organized responses

Always ensure accuracy and completeness in document analysis while being concise and relevant.`

// Document content arrives through the task context (typically under
// "content", with optional "document_name", "criteria", or "focus" keys).
const (
	docsSummarizeDirective = `Summarize the document supplied in the context. Provide:
1. An executive summary (2-3 sentences)
2. Key points and main topics
3. Important details and findings
4. Conclusions or recommendations, if applicable

Keep the summary concise but comprehensive.`

	docsExtractDirective = `Extract the requested information from the document supplied in the context. Provide:
1. Extracted information matching the criteria
2. Source context for each piece of information
3. A confidence level for each extraction
4. Any related or relevant information

Organize the response by relevance.`

	docsAnalyzeDirective = `Analyze the document supplied in the context. Provide:
1. Document structure and organization
2. Content themes and patterns
3. Key insights and observations
4. A quality and completeness assessment
5. Recommendations or suggestions`

	docsAnswerDirective = `Answer the question using only the document supplied in the context. Provide:
1. A direct answer to the question
2. Supporting passages from the document
3. A note on anything the document leaves unanswered`

	docsCompareDirective = `Compare the documents supplied in the context. Provide:
1. Key similarities
2. Notable differences
3. An assessment of which document better serves the stated purpose, if one was given`
)

// DocsHandler handles document work: summarization, extraction, analysis,
// question answering, and comparison, classified by keyword.
type DocsHandler struct {
	*BaseHandler
}

// NewDocsHandler creates the docs specialist.
func NewDocsHandler(llm model.Model, optFns ...func(o *Options)) *DocsHandler {
	opts := Options{
		Instruction:  NewInstructionFromText(docsSystemPrompt),
		ModelTimeout: defaultModelTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &DocsHandler{BaseHandler: newBaseHandler("docs", docsDescription, llm, opts)}
	h.exec = h.execute

	return h
}

func (h *DocsHandler) execute(ctx context.Context, task *core.Task) (string, error) {
	var directive string

	switch classifyDocsTask(task.Description) {
	case "summarization":
		directive = docsSummarizeDirective
	case "extraction":
		directive = docsExtractDirective
	case "analysis":
		directive = docsAnalyzeDirective
	case "question_answering":
		directive = docsAnswerDirective
	case "comparison":
		directive = docsCompareDirective
	}

	return h.Generate(ctx, task, directive)
}

func classifyDocsTask(description string) string {
	d := strings.ToLower(description)

	switch {
	case containsAny(d, "summarize", "summary", "overview"):
		return "summarization"
	case containsAny(d, "extract", "find", "identify", "get"):
		return "extraction"
	case containsAny(d, "analyze", "analysis", "examine"):
		return "analysis"
	case containsAny(d, "question", "answer", "what", "how", "why"):
		return "question_answering"
	case containsAny(d, "compare", "comparison", "difference"):
		return "comparison"
	default:
		return "general"
	}
}
