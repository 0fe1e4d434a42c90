package agent

import (
	"context"
	"testing"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/model"
	"github.com/stretchr/testify/assert"
)

func TestClassifyCodeTask(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Write a function that parses CSV", "generation"},
		{"Implement a rate limiter", "generation"},
		{"Review this pull request", "review"},
		{"Debug the nil pointer crash", "debugging"},
		{"Fix the login bug", "debugging"},
		{"Explain how does this regex work", "explanation"},
		{"Optimize the query for performance", "optimization"},
		{"Refactor the module", "general"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyCodeTask(tc.description), "description: %s", tc.description)
	}
}

func TestClassifyDocsTask(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Summarize the quarterly report", "summarization"},
		{"Extract all invoice numbers", "extraction"},
		{"Examine the contract for gaps", "analysis"},
		{"Answer this from the handbook", "question_answering"},
		{"Compare the two proposals", "comparison"},
		{"Translate the brochure", "general"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyDocsTask(tc.description), "description: %s", tc.description)
	}
}

func TestClassifyPlannerTask(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Draft a project plan for the migration", "project_planning"},
		{"Break down the launch into tasks", "task_breakdown"},
		{"Build a timeline with milestones", "timeline_creation"},
		{"Risk assessment for the rollout", "risk_assessment"},
		{"Design the onboarding workflow", "workflow_design"},
		{"Suggest a team offsite", "general"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyPlannerTask(tc.description), "description: %s", tc.description)
	}
}

func TestClassifyOpsTask(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Copy the logs to the backup directory", "file_operations"},
		{"Run the cleanup script nightly", "system_commands"},
		{"Zip the release artifacts", "project_packaging"},
		{"Install and configure the toolchain", "environment_setup"},
		{"Convert the export to JSON", "data_processing"},
		{"Audit the permissions", "general"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyOpsTask(tc.description), "description: %s", tc.description)
	}
}

func TestNewCodeHandler(t *testing.T) {
	h := NewCodeHandler(model.NewMockModel("mock-model", "mock"))

	assert.Equal(t, "code", h.Name())
	assert.NotEmpty(t, h.Description())
}

func TestCodeHandler_Execute_AppliesDirective(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Review the code supplied in the context", "looks solid")
	h := NewCodeHandler(llm)

	task := h.CreateTask("Review this helper", map[string]any{"code": "func add(a, b int) int { return a + b }"})
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskCompleted, done.Status)
	assert.Equal(t, "looks solid", done.Result)
}

func TestDocsHandler_Execute_AppliesDirective(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Summarize the document supplied in the context", "two-line summary")
	h := NewDocsHandler(llm)

	task := h.CreateTask("Summarize the onboarding guide", map[string]any{"content": "Welcome to the team..."})
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskCompleted, done.Status)
	assert.Equal(t, "two-line summary", done.Result)
}

func TestPlannerHandler_Execute_AppliesDirective(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Create a detailed project plan", "phase one, phase two")
	h := NewPlannerHandler(llm)

	task := h.CreateTask("Project plan for the data migration", nil)
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskCompleted, done.Status)
	assert.Equal(t, "phase one, phase two", done.Result)
}

func TestOpsHandler_Execute_AppliesDirective(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("Lay out the file operations", "mkdir then rsync")
	h := NewOpsHandler(llm)

	task := h.CreateTask("Move the report files into the archive folder", nil)
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskCompleted, done.Status)
	assert.Equal(t, "mkdir then rsync", done.Result)
}

func TestCodeHandler_ContextReachesPrompt(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("return a + b", "reviewed the addition helper")
	h := NewCodeHandler(llm)

	task := h.CreateTask("Review this helper", map[string]any{"code": "return a + b"})
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskCompleted, done.Status)
	assert.Equal(t, "reviewed the addition helper", done.Result)
}
