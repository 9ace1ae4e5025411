package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfai-agent/selfai/pkg/config"
	"github.com/selfai-agent/selfai/pkg/dispatch"
	"github.com/selfai-agent/selfai/pkg/memory"
	"github.com/selfai-agent/selfai/pkg/merge"
	"github.com/selfai-agent/selfai/pkg/planner"
	"github.com/selfai-agent/selfai/pkg/providers"
	"github.com/selfai-agent/selfai/pkg/tools"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// scriptedBackend answers plan requests with planJSON and everything else
// with a canned completion. When broken, every call fails.
type scriptedBackend struct {
	planJSON string
	broken   bool
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if s.broken {
		return "", fmt.Errorf("backend down")
	}
	if strings.Contains(system, "Decompose the user's goal") {
		return s.planJSON, nil
	}
	return "completion for: " + user, nil
}

func newTestPipeline(t *testing.T, backend providers.Backend) (*Pipeline, *planner.Store) {
	t.Helper()
	logger := utils.GetLogger(true)
	chain := providers.NewChain([]providers.Backend{backend}, logger)
	registry := tools.NewRegistry(t.TempDir())
	mem := memory.NewStore(t.TempDir())

	generator := planner.NewGenerator(chain, "test identity", registry.Names(), logger)
	dispatcher := dispatch.NewDispatcher(chain, registry, mem, dispatch.Options{
		Identity: "test identity",
		Persona:  config.DefaultPersona,
		Category: "general",
	}, logger)
	merger := merge.NewMerger(chain, mem, "test identity", "general", logger)
	plans := planner.NewStore(t.TempDir())

	return New(generator, dispatcher, merger, plans, logger), plans
}

func TestRunEndToEnd(t *testing.T) {
	backend := &scriptedBackend{planJSON: `{
		"subtasks": [
			{"id": "gather", "objective": "gather facts", "executor": "llm-agent"},
			{"id": "conclude", "objective": "draw conclusions", "executor": "llm-agent", "depends_on": ["gather"]}
		],
		"merge": {"strategy": "combine both"}
	}`}
	p, plans := newTestPipeline(t, backend)

	res := p.Run(context.Background(), "research something")
	require.NotNil(t, res)
	assert.False(t, res.Plan.Fallback)
	require.Len(t, res.Results, 2)
	assert.Equal(t, res.Plan.SubtaskIDs(), []string{res.Results[0].SubtaskID, res.Results[1].SubtaskID})
	assert.NotEmpty(t, res.Answer)

	// Plan artifact must be persisted.
	loaded, err := plans.Load(res.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "research something", loaded.Goal)
}

func TestRunWithBrokenBackendsStillAnswers(t *testing.T) {
	p, _ := newTestPipeline(t, &scriptedBackend{broken: true})

	res := p.Run(context.Background(), "anything at all")
	require.NotNil(t, res)
	assert.True(t, res.Plan.Fallback, "plan generation failure must yield the fallback plan")
	require.Len(t, res.Results, 2)
	for _, r := range res.Results {
		assert.Equal(t, planner.StatusFailure, r.Status)
	}
	assert.NotEmpty(t, res.Answer, "merge must degrade to a report, never an empty answer")
	assert.Contains(t, res.Answer, "Failed subtasks")
}

func TestRunToolCallPlan(t *testing.T) {
	backend := &scriptedBackend{planJSON: `{
		"subtasks": [
			{"id": "t1", "objective": "list workspace files", "executor": "tool-call", "tool": "list_files"}
		],
		"merge": {"strategy": "report the listing"}
	}`}
	p, _ := newTestPipeline(t, backend)

	res := p.Run(context.Background(), "list files in the workspace")
	require.Len(t, res.Results, 1)
	assert.Equal(t, planner.StatusSuccess, res.Results[0].Status)
	assert.NotEmpty(t, res.Answer)
}
