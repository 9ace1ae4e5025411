package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfai-agent/selfai/pkg/config"
	"github.com/selfai-agent/selfai/pkg/planner"
	"github.com/selfai-agent/selfai/pkg/providers"
	"github.com/selfai-agent/selfai/pkg/tools"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// echoBackend answers every prompt; prompts containing "boom" fail.
type echoBackend struct {
	inFlight int32
	maxSeen  int32
}

func (e *echoBackend) Name() string { return "echo" }

func (e *echoBackend) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	n := atomic.AddInt32(&e.inFlight, 1)
	defer atomic.AddInt32(&e.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&e.maxSeen)
		if n <= prev || atomic.CompareAndSwapInt32(&e.maxSeen, prev, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	if strings.Contains(user, "boom") {
		return "", fmt.Errorf("simulated backend failure")
	}
	return "echo: " + user, nil
}

// panicTool always panics.
type panicTool struct{}

func (p *panicTool) Name() string        { return "panic_tool" }
func (p *panicTool) Description() string { return "panics" }
func (p *panicTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	panic("tool exploded")
}

func newTestDispatcher(t *testing.T, backend providers.Backend) *Dispatcher {
	t.Helper()
	registry := tools.NewRegistry(t.TempDir())
	registry.Register(&panicTool{})
	chain := providers.NewChain([]providers.Backend{backend}, nil)
	return NewDispatcher(chain, registry, nil, Options{
		Identity: "test identity",
		Persona:  config.DefaultPersona,
	}, utils.GetLogger(true))
}

func llmPlan(subtasks ...planner.Subtask) *planner.Plan {
	return &planner.Plan{ID: "p1", Goal: "test goal", Subtasks: subtasks}
}

func TestDispatchResultPerSubtaskInPlanOrder(t *testing.T) {
	d := newTestDispatcher(t, &echoBackend{})
	plan := llmPlan(
		planner.Subtask{ID: "s1", Objective: "first", Executor: planner.ExecutorLLM},
		planner.Subtask{ID: "s2", Objective: "second", Executor: planner.ExecutorLLM, DependsOn: []string{"s1"}},
		planner.Subtask{ID: "s3", Objective: "third", Executor: planner.ExecutorLLM},
	)

	results := d.Dispatch(context.Background(), plan)
	require.Len(t, results, len(plan.Subtasks))
	for i, st := range plan.Subtasks {
		assert.Equal(t, st.ID, results[i].SubtaskID)
		assert.Equal(t, planner.StatusSuccess, results[i].Status)
	}
}

func TestDispatchDependencyResultPrecedesDependent(t *testing.T) {
	d := newTestDispatcher(t, &echoBackend{})
	plan := llmPlan(
		planner.Subtask{ID: "dep", Objective: "gather", Executor: planner.ExecutorLLM},
		planner.Subtask{ID: "use", Objective: "use gathered", Executor: planner.ExecutorLLM, DependsOn: []string{"dep"}},
	)

	results := d.Dispatch(context.Background(), plan)
	pos := map[string]int{}
	for i, r := range results {
		pos[r.SubtaskID] = i
	}
	assert.Less(t, pos["dep"], pos["use"])
}

func TestDispatchFailureDoesNotAbortRun(t *testing.T) {
	d := newTestDispatcher(t, &echoBackend{})
	plan := llmPlan(
		planner.Subtask{ID: "bad", Objective: "boom", Executor: planner.ExecutorLLM},
		planner.Subtask{ID: "good", Objective: "carry on", Executor: planner.ExecutorLLM},
	)

	results := d.Dispatch(context.Background(), plan)
	require.Len(t, results, 2)
	assert.Equal(t, planner.StatusFailure, results[0].Status)
	assert.NotEmpty(t, results[0].ErrorDetail)
	assert.Equal(t, planner.StatusSuccess, results[1].Status)
}

func TestDispatchUnknownToolRejected(t *testing.T) {
	d := newTestDispatcher(t, &echoBackend{})
	plan := llmPlan(
		planner.Subtask{ID: "t1", Objective: "x", Executor: planner.ExecutorTool, Tool: "hallucinated"},
	)

	results := d.Dispatch(context.Background(), plan)
	require.Len(t, results, 1)
	assert.Equal(t, planner.StatusFailure, results[0].Status)
	assert.Contains(t, results[0].ErrorDetail, "unknown tool")
}

func TestDispatchToolPanicBecomesFailure(t *testing.T) {
	d := newTestDispatcher(t, &echoBackend{})
	plan := llmPlan(
		planner.Subtask{ID: "t1", Objective: "x", Executor: planner.ExecutorTool, Tool: "panic_tool"},
	)

	results := d.Dispatch(context.Background(), plan)
	require.Len(t, results, 1)
	assert.Equal(t, planner.StatusFailure, results[0].Status)
	assert.Contains(t, results[0].ErrorDetail, "panicked")
}

func TestDispatchParallelGroupRunsConcurrently(t *testing.T) {
	backend := &echoBackend{}
	d := newTestDispatcher(t, backend)
	plan := llmPlan(
		planner.Subtask{ID: "a", Objective: "one", Executor: planner.ExecutorLLM, ParallelGroup: "g1"},
		planner.Subtask{ID: "b", Objective: "two", Executor: planner.ExecutorLLM, ParallelGroup: "g1"},
		planner.Subtask{ID: "c", Objective: "three", Executor: planner.ExecutorLLM, ParallelGroup: "g1"},
	)

	results := d.Dispatch(context.Background(), plan)
	require.Len(t, results, 3)
	assert.Greater(t, atomic.LoadInt32(&backend.maxSeen), int32(1),
		"same-group subtasks must overlap in flight")
}

func TestComputeWaves(t *testing.T) {
	plan := llmPlan(
		planner.Subtask{ID: "a", Executor: planner.ExecutorLLM},
		planner.Subtask{ID: "b", Executor: planner.ExecutorLLM, ParallelGroup: "g1"},
		planner.Subtask{ID: "c", Executor: planner.ExecutorLLM, ParallelGroup: "g1"},
		planner.Subtask{ID: "d", Executor: planner.ExecutorLLM, ParallelGroup: "g2"},
		planner.Subtask{ID: "e", Executor: planner.ExecutorLLM},
	)
	waves := computeWaves(plan)
	require.Len(t, waves, 4)
	assert.Len(t, waves[0], 1)
	assert.Len(t, waves[1], 2)
	assert.Len(t, waves[2], 1)
	assert.Len(t, waves[3], 1)
}

func TestComputeWavesSplitsOnIntraGroupDependency(t *testing.T) {
	// b depends on a inside the same group; they must not share a wave.
	plan := llmPlan(
		planner.Subtask{ID: "a", Executor: planner.ExecutorLLM, ParallelGroup: "g1"},
		planner.Subtask{ID: "b", Executor: planner.ExecutorLLM, ParallelGroup: "g1", DependsOn: []string{"a"}},
	)
	waves := computeWaves(plan)
	require.Len(t, waves, 2)
	assert.Equal(t, "a", waves[0][0].ID)
	assert.Equal(t, "b", waves[1][0].ID)
}
