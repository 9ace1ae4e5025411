// Package pipeline ties the three DPPM phases together: plan the goal,
// dispatch the subtasks, merge the results. One Run call is one blocking
// pipeline pass; the identity string is threaded through explicitly.
package pipeline

import (
	"context"
	"fmt"

	"github.com/selfai-agent/selfai/pkg/dispatch"
	"github.com/selfai-agent/selfai/pkg/merge"
	"github.com/selfai-agent/selfai/pkg/planner"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Plan    *planner.Plan
	Results []planner.SubtaskResult
	Answer  string
}

// Pipeline runs goals through plan, dispatch and merge.
type Pipeline struct {
	generator  *planner.Generator
	dispatcher *dispatch.Dispatcher
	merger     *merge.Merger
	plans      *planner.Store
	logger     *utils.Logger
}

// New assembles a pipeline from its phases.
func New(generator *planner.Generator, dispatcher *dispatch.Dispatcher, merger *merge.Merger, plans *planner.Store, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		generator:  generator,
		dispatcher: dispatcher,
		merger:     merger,
		plans:      plans,
		logger:     logger,
	}
}

// Run executes one goal end to end. The plan artifact is persisted before
// execution; a failed save is logged but never blocks the run.
func (p *Pipeline) Run(ctx context.Context, goal string) *Result {
	plan := p.generator.Generate(ctx, goal)
	if p.plans != nil {
		if err := p.plans.Save(plan); err != nil {
			p.logger.LogError(fmt.Errorf("failed to persist plan %s: %w", plan.ID, err))
		}
	}

	results := p.dispatcher.Dispatch(ctx, plan)
	answer := p.merger.Merge(ctx, goal, results, plan.Merge)

	return &Result{Plan: plan, Results: results, Answer: answer}
}
