// Package merge synthesizes subtask results into one final answer. When no
// merge backend answers, it degrades to a best-effort concatenation of the
// subtask outputs rather than producing no answer at all.
package merge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/selfai-agent/selfai/pkg/memory"
	"github.com/selfai-agent/selfai/pkg/planner"
	"github.com/selfai-agent/selfai/pkg/prompts"
	"github.com/selfai-agent/selfai/pkg/providers"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// mergeMaxTokens bounds the synthesis response.
const mergeMaxTokens = 4096

// thinkRegex matches internal reasoning blocks some models emit despite
// instructions. Non-greedy so multiple blocks are each stripped.
var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Merger produces the final answer for a pipeline run.
type Merger struct {
	chain    *providers.Chain
	mem      *memory.Store
	identity string
	category string
	logger   *utils.Logger
}

// NewMerger creates a merger. mem may be nil when persistence is not
// wanted (tests).
func NewMerger(chain *providers.Chain, mem *memory.Store, identity, category string, logger *utils.Logger) *Merger {
	return &Merger{chain: chain, mem: mem, identity: identity, category: category, logger: logger}
}

// Merge builds the merge prompt from the goal, the per-subtask outputs or
// error notes, and the plan's merge guidance, then dispatches it with the
// standard backend failover. The returned answer is never empty.
func (m *Merger) Merge(ctx context.Context, goal string, results []planner.SubtaskResult, strategy planner.MergeStrategy) string {
	sections := formatSections(results)

	answer, err := m.chain.Generate(ctx,
		prompts.MergeSystemPrompt(m.identity),
		prompts.MergeUserPrompt(goal, sections, strategy.Strategy, strategy.Steps),
		mergeMaxTokens)
	if err != nil {
		m.logger.LogProcessStep(fmt.Sprintf("⚠️ Merge backends unavailable (%v), returning concatenated subtask outputs", err))
		answer = concatenate(goal, results)
	}

	answer = StripReasoning(answer)
	if strings.TrimSpace(answer) == "" {
		answer = concatenate(goal, results)
	}

	if m.mem != nil {
		if err := m.mem.Append(m.category, memory.Record{Goal: goal, Answer: answer}); err != nil {
			m.logger.LogError(fmt.Errorf("failed to persist answer to memory: %w", err))
		}
	}
	return answer
}

// StripReasoning removes internal reasoning delimiter blocks from a model
// response.
func StripReasoning(s string) string {
	return strings.TrimSpace(thinkRegex.ReplaceAllString(s, ""))
}

// formatSections renders one block per subtask for the merge prompt.
func formatSections(results []planner.SubtaskResult) []string {
	sections := make([]string, 0, len(results))
	for _, res := range results {
		if res.Status == planner.StatusFailure {
			sections = append(sections, fmt.Sprintf("- [%s] FAILED: %s", res.SubtaskID, res.ErrorDetail))
			continue
		}
		sections = append(sections, fmt.Sprintf("- [%s]\n%s", res.SubtaskID, res.Output))
	}
	return sections
}

// concatenate is the no-backend fallback: successful outputs in order,
// failures reported by id. Even a run where every subtask failed yields a
// readable (non-empty) report.
func concatenate(goal string, results []planner.SubtaskResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Results for: %s\n\n", goal))
	var failures []string
	for _, res := range results {
		if res.Status == planner.StatusFailure {
			failures = append(failures, fmt.Sprintf("%s (%s)", res.SubtaskID, res.ErrorDetail))
			continue
		}
		sb.WriteString(res.Output)
		sb.WriteString("\n\n")
	}
	if len(failures) > 0 {
		sb.WriteString("Failed subtasks: ")
		sb.WriteString(strings.Join(failures, "; "))
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
