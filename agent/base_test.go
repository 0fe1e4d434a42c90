package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/embedding"
	"github.com/joinaiwms/horizon/internal/testutil"
	"github.com/joinaiwms/horizon/memory"
	"github.com/joinaiwms/horizon/model"
	"github.com/stretchr/testify/assert"
)

// Compile-time checks that every handler variant satisfies core.Handler.
var (
	_ core.Handler = (*BaseHandler)(nil)
	_ core.Handler = (*CodeHandler)(nil)
	_ core.Handler = (*DocsHandler)(nil)
	_ core.Handler = (*PlannerHandler)(nil)
	_ core.Handler = (*OpsHandler)(nil)
)

func TestBaseHandler_CreateTask(t *testing.T) {
	h := NewBaseHandler("research", "general research", model.NewMockModel("mock-model", "mock"))

	task := h.CreateTask("look things up", map[string]any{"topic": "go"})

	assert.NotNil(t, task)
	assert.True(t, strings.HasPrefix(task.ID, "research_0_"))
	assert.Equal(t, core.TaskPending, task.Status)
	assert.Equal(t, "look things up", task.Description)
	assert.Equal(t, "go", task.Context["topic"])

	second := h.CreateTask("another", nil)
	assert.True(t, strings.HasPrefix(second.ID, "research_1_"))

	stored, ok := h.Task(task.ID)
	assert.True(t, ok)
	assert.Equal(t, task.ID, stored.ID)
}

func TestBaseHandler_ExecuteTask_Success(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("look things up", "here is what I found")
	h := NewBaseHandler("research", "general research", llm)

	task := h.CreateTask("look things up", nil)
	done := h.ExecuteTask(context.Background(), task)

	assert.NotNil(t, done)
	assert.Equal(t, core.TaskCompleted, done.Status)
	assert.Equal(t, "here is what I found", done.Result)
	assert.NotNil(t, done.CompletedAt)
	assert.Empty(t, done.Error)
}

func TestBaseHandler_ExecuteTask_Idempotent(t *testing.T) {
	h := NewBaseHandler("research", "general research", model.NewMockModel("mock-model", "mock"))

	invocations := 0
	h.exec = func(ctx context.Context, task *core.Task) (string, error) {
		invocations++
		return "first result", nil
	}

	task := h.CreateTask("do it once", nil)
	first := h.ExecuteTask(context.Background(), task)
	second := h.ExecuteTask(context.Background(), first)

	assert.Equal(t, 1, invocations)
	assert.Equal(t, core.TaskCompleted, second.Status)
	assert.Equal(t, "first result", second.Result)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)
}

func TestBaseHandler_ExecuteTask_Failure(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.FailWith(fmt.Errorf("upstream unavailable"))
	h := NewBaseHandler("research", "general research", llm)

	task := h.CreateTask("doomed", nil)
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskFailed, done.Status)
	assert.Contains(t, done.Error, "upstream unavailable")
	assert.NotNil(t, done.CompletedAt)
	assert.Empty(t, done.Result)
}

func TestBaseHandler_ExecuteTask_Timeout(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	llm.SetDelay(200 * time.Millisecond)
	h := NewBaseHandler("research", "general research", llm, func(o *Options) {
		o.ModelTimeout = 20 * time.Millisecond
	})

	task := h.CreateTask("slow request", nil)
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskFailed, done.Status)
	assert.Contains(t, done.Error, "timed out")
}

func TestBaseHandler_ExecuteTask_PanicContained(t *testing.T) {
	h := NewBaseHandler("research", "general research", model.NewMockModel("mock-model", "mock"))
	h.exec = func(ctx context.Context, task *core.Task) (string, error) {
		panic("boom")
	}

	task := h.CreateTask("explosive", nil)

	var done *core.Task
	assert.NotPanics(t, func() {
		done = h.ExecuteTask(context.Background(), task)
	})
	assert.Equal(t, core.TaskFailed, done.Status)
	assert.Contains(t, done.Error, "panicked")
}

func TestBaseHandler_ExecuteTask_AdoptsUnknownTask(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	h := NewBaseHandler("research", "general research", llm)

	task := core.NewTask("external_0_0", "made elsewhere", nil)
	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskCompleted, done.Status)

	stored, ok := h.Task("external_0_0")
	assert.True(t, ok)
	assert.Equal(t, core.TaskCompleted, stored.Status)
}

func TestBaseHandler_ExecuteTask_AdoptedTerminalTaskUnchanged(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	h := NewBaseHandler("research", "general research", llm)

	task := testutil.NewTaskBuilder("external_1_0", "finished elsewhere").
		Completed("prior result").
		Build()

	done := h.ExecuteTask(context.Background(), task)

	assert.Equal(t, core.TaskCompleted, done.Status)
	assert.Equal(t, "prior result", done.Result)
	assert.Equal(t, 1, h.Stats().Completed)
}

func TestBaseHandler_ExecuteTask_StoresMemory(t *testing.T) {
	mem, err := memory.New(embedding.NewMockEmbedder())
	assert.NoError(t, err)

	llm := model.NewMockModel("mock-model", "mock")
	llm.AddResponse("summarize", "a short summary")
	h := NewBaseHandler("research", "general research", llm, func(o *Options) {
		o.Memory = mem
	})

	task := h.CreateTask("summarize the findings", nil)
	done := h.ExecuteTask(context.Background(), task)
	assert.Equal(t, core.TaskCompleted, done.Status)

	assert.Eventually(t, func() bool {
		return mem.Stats().Entries == 1
	}, time.Second, 10*time.Millisecond)

	entry, ok := mem.Get("mem_0")
	assert.True(t, ok)
	assert.Contains(t, entry.Content, "Agent: research")
	assert.Contains(t, entry.Content, "Task: summarize the findings")
	assert.Contains(t, entry.Content, "Result: a short summary")
	assert.Equal(t, "research", entry.Metadata["agent"])
	assert.Equal(t, done.ID, entry.Metadata["task_id"])
	assert.Equal(t, "task_result", entry.Metadata["type"])
}

func TestBaseHandler_ExecuteTask_FailureSkipsMemory(t *testing.T) {
	mem, err := memory.New(embedding.NewMockEmbedder())
	assert.NoError(t, err)

	llm := model.NewMockModel("mock-model", "mock")
	llm.FailWith(fmt.Errorf("upstream unavailable"))
	h := NewBaseHandler("research", "general research", llm, func(o *Options) {
		o.Memory = mem
	})

	task := h.CreateTask("doomed", nil)
	done := h.ExecuteTask(context.Background(), task)
	assert.Equal(t, core.TaskFailed, done.Status)

	// The memory write only follows completions; give a stray goroutine a
	// moment to prove it does not exist.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, mem.Stats().Entries)
}

func TestBaseHandler_Generate_BudgetExhausted(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	limiter := core.NewModelLimiter(1)
	h := NewBaseHandler("research", "general research", llm, func(o *Options) {
		o.Limiter = limiter
	})

	first := h.ExecuteTask(context.Background(), h.CreateTask("first", nil))
	second := h.ExecuteTask(context.Background(), h.CreateTask("second", nil))

	assert.Equal(t, core.TaskCompleted, first.Status)
	assert.Equal(t, core.TaskFailed, second.Status)
	assert.Contains(t, second.Error, "exceeded max model calls")
}

func TestBaseHandler_RelevantContext(t *testing.T) {
	mem, err := memory.New(embedding.NewMockEmbedder())
	assert.NoError(t, err)

	ctx := context.Background()
	_, err = mem.Add(ctx, "The deploy pipeline uses blue-green rollouts.", nil)
	assert.NoError(t, err)

	h := NewBaseHandler("research", "general research", model.NewMockModel("mock-model", "mock"), func(o *Options) {
		o.Memory = mem
	})

	// Identical text embeds identically, so the entry clears the threshold.
	block := h.RelevantContext(ctx, "The deploy pipeline uses blue-green rollouts.")
	assert.Contains(t, block, "Relevant context from previous work:")
	assert.Contains(t, block, "blue-green")

	// Without memory configured the block is empty.
	bare := NewBaseHandler("bare", "no memory", model.NewMockModel("mock-model", "mock"))
	assert.Empty(t, bare.RelevantContext(ctx, "anything"))
}

func TestBaseHandler_Stats(t *testing.T) {
	llm := model.NewMockModel("mock-model", "mock")
	h := NewBaseHandler("research", "general research", llm)

	done := h.ExecuteTask(context.Background(), h.CreateTask("fine", nil))
	assert.Equal(t, core.TaskCompleted, done.Status)

	llm.FailWith(fmt.Errorf("nope"))
	failed := h.ExecuteTask(context.Background(), h.CreateTask("broken", nil))
	assert.Equal(t, core.TaskFailed, failed.Status)

	h.CreateTask("still waiting", nil)

	stats := h.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 0, stats.Running)
}

func TestBaseHandler_Tasks_Order(t *testing.T) {
	h := NewBaseHandler("research", "general research", model.NewMockModel("mock-model", "mock"))

	first := h.CreateTask("one", nil)
	second := h.CreateTask("two", nil)
	third := h.CreateTask("three", nil)

	tasks := h.Tasks()
	assert.Len(t, tasks, 3)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
	assert.Equal(t, third.ID, tasks[2].ID)
}
