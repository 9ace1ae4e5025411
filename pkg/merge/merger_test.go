package merge

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfai-agent/selfai/pkg/memory"
	"github.com/selfai-agent/selfai/pkg/planner"
	"github.com/selfai-agent/selfai/pkg/providers"
	"github.com/selfai-agent/selfai/pkg/utils"
)

type stubBackend struct {
	out string
	err error
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	return s.out, s.err
}

func successResults() []planner.SubtaskResult {
	return []planner.SubtaskResult{
		{SubtaskID: "s1", Status: planner.StatusSuccess, Output: "alpha"},
		{SubtaskID: "s2", Status: planner.StatusSuccess, Output: "beta"},
	}
}

func TestMergeUsesBackendAnswer(t *testing.T) {
	chain := providers.NewChain([]providers.Backend{&stubBackend{out: "final answer"}}, nil)
	m := NewMerger(chain, nil, "identity", "general", utils.GetLogger(true))

	answer := m.Merge(context.Background(), "goal", successResults(), planner.MergeStrategy{Strategy: "combine"})
	assert.Equal(t, "final answer", answer)
}

func TestMergeStripsReasoningBlocks(t *testing.T) {
	chain := providers.NewChain([]providers.Backend{
		&stubBackend{out: "<think>secret deliberation</think>the answer<think>more</think>"},
	}, nil)
	m := NewMerger(chain, nil, "identity", "general", utils.GetLogger(true))

	answer := m.Merge(context.Background(), "goal", successResults(), planner.MergeStrategy{})
	assert.Equal(t, "the answer", answer)
}

func TestMergeDegradesToConcatenation(t *testing.T) {
	chain := providers.NewChain([]providers.Backend{&stubBackend{err: fmt.Errorf("down")}}, nil)
	m := NewMerger(chain, nil, "identity", "general", utils.GetLogger(true))

	answer := m.Merge(context.Background(), "goal", successResults(), planner.MergeStrategy{})
	assert.Contains(t, answer, "alpha")
	assert.Contains(t, answer, "beta")
}

func TestMergeNeverEmptyEvenWhenAllSubtasksFailed(t *testing.T) {
	chain := providers.NewChain([]providers.Backend{&stubBackend{err: fmt.Errorf("down")}}, nil)
	m := NewMerger(chain, nil, "identity", "general", utils.GetLogger(true))

	results := []planner.SubtaskResult{
		{SubtaskID: "s1", Status: planner.StatusFailure, ErrorDetail: "backend exhausted"},
		{SubtaskID: "s2", Status: planner.StatusFailure, ErrorDetail: "unknown tool: x"},
	}
	answer := m.Merge(context.Background(), "goal", results, planner.MergeStrategy{})
	require.NotEmpty(t, answer)
	assert.Contains(t, answer, "Failed subtasks")
	assert.Contains(t, answer, "s1")
	assert.Contains(t, answer, "unknown tool: x")
}

func TestMergePersistsAnswerToMemory(t *testing.T) {
	store := memory.NewStore(t.TempDir())
	chain := providers.NewChain([]providers.Backend{&stubBackend{out: "stored answer"}}, nil)
	m := NewMerger(chain, store, "identity", "research", utils.GetLogger(true))

	m.Merge(context.Background(), "the goal", successResults(), planner.MergeStrategy{})

	recent, err := store.Recent("research", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "the goal", recent[0].Goal)
	assert.Equal(t, "stored answer", recent[0].Answer)
}

func TestStripReasoning(t *testing.T) {
	assert.Equal(t, "plain", StripReasoning("plain"))
	assert.Equal(t, "a b", StripReasoning("a <think>x\ny\nz</think>b"))
	// An unterminated block is left alone: the strip is bounded to
	// well-formed marker pairs.
	assert.Equal(t, "a <think>oops", StripReasoning("a <think>oops"))
}
