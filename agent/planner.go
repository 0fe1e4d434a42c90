package agent

import (
	"context"
	"strings"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/model"
)

const plannerDescription = "Specialized handler for project planning, task breakdown, and workflow management"

const plannerSystemPrompt = `You are PlannerAgent, a specialized AI assistant focused on project planning and workflow management. Your expertise includes:

1. Project planning and roadmap creation
2. Task breakdown and work estimation
3. Timeline and milestone planning
4. Resource allocation and dependency management
5. Risk assessment and mitigation strategies
6. Workflow optimization and process design

When handling planning tasks:
- Create realistic and achievable plans
- Consider dependencies and constraints
- Provide clear timelines and milestones
- Break down complex projects into manageable tasks
- Provide actionable next steps

Always ensure plans are practical, well-structured, and adaptable to changing requirements.`

const (
	plannerProjectDirective = `Create a detailed project plan. Include:
1. Project overview: objectives, success criteria, key stakeholders
2. Scope and deliverables
3. Phases with their goals and outputs
4. Resource requirements
5. Major risks and mitigations`

	plannerBreakdownDirective = `Break the work down into subtasks. Provide:
1. A task analysis: complexity, key components, dependencies
2. The subtask breakdown, and for each subtask: a clear description, an effort estimate, prerequisites, and a suggested owner or skill set
3. A sensible execution order`

	plannerTimelineDirective = `Create a timeline for the work. Provide:
1. A timeline overview: total duration, major phases, key milestones
2. A detailed schedule with a week-by-week breakdown
3. The critical path and any float`

	plannerRiskDirective = `Assess the risks in the plan or work described. Provide:
1. Risk identification across technical, resource, timeline, external, and quality categories
2. Likelihood and impact per risk
3. Mitigation and contingency strategies`

	plannerWorkflowDirective = `Design the workflow or process. Provide:
1. A workflow overview: purpose, roles, success metrics
2. The process steps with inputs, outputs, and owners
3. Decision points and escalation paths`
)

// PlannerHandler produces project plans, task breakdowns, timelines, risk
// assessments, and workflow designs.
type PlannerHandler struct {
	*BaseHandler
}

// NewPlannerHandler creates the planner specialist.
func NewPlannerHandler(llm model.Model, optFns ...func(o *Options)) *PlannerHandler {
	opts := Options{
		Instruction:  NewInstructionFromText(plannerSystemPrompt),
		ModelTimeout: defaultModelTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &PlannerHandler{BaseHandler: newBaseHandler("planner", plannerDescription, llm, opts)}
	h.exec = h.execute

	return h
}

func (h *PlannerHandler) execute(ctx context.Context, task *core.Task) (string, error) {
	var directive string

	switch classifyPlannerTask(task.Description) {
	case "project_planning":
		directive = plannerProjectDirective
	case "task_breakdown":
		directive = plannerBreakdownDirective
	case "timeline_creation":
		directive = plannerTimelineDirective
	case "risk_assessment":
		directive = plannerRiskDirective
	case "workflow_design":
		directive = plannerWorkflowDirective
	}

	return h.Generate(ctx, task, directive)
}

func classifyPlannerTask(description string) string {
	d := strings.ToLower(description)

	switch {
	case containsAny(d, "project plan", "roadmap", "strategy"):
		return "project_planning"
	case containsAny(d, "break down", "tasks", "subtasks"):
		return "task_breakdown"
	case containsAny(d, "timeline", "schedule", "milestone"):
		return "timeline_creation"
	case containsAny(d, "risk", "assessment", "mitigation"):
		return "risk_assessment"
	case containsAny(d, "workflow", "process", "procedure"):
		return "workflow_design"
	default:
		return "general"
	}
}
