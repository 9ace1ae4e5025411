package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/selfai-agent/selfai/pkg/prompts"
	"github.com/selfai-agent/selfai/pkg/providers"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// planMaxTokens bounds the plan generation response. Plans are small; a
// tight limit keeps malformed rambling output cheap.
const planMaxTokens = 2048

// Generator produces plans from goals.
type Generator struct {
	chain     *providers.Chain
	identity  string
	toolNames []string
	logger    *utils.Logger
}

// NewGenerator creates a plan generator. toolNames is the registry
// allow-list advertised to the model.
func NewGenerator(chain *providers.Chain, identity string, toolNames []string, logger *utils.Logger) *Generator {
	return &Generator{chain: chain, identity: identity, toolNames: toolNames, logger: logger}
}

// Generate asks the backend chain for a plan. On any failure — provider
// errors, unparseable JSON, invalid structure — it substitutes the
// deterministic fallback plan and emits a visible notice, so the pipeline
// always has a plan to execute and degradation is never silent.
func (g *Generator) Generate(ctx context.Context, goal string) *Plan {
	raw, err := g.chain.Generate(ctx,
		prompts.PlanSystemPrompt(g.identity, g.toolNames),
		goal,
		planMaxTokens)
	if err != nil {
		g.logger.LogProcessStep(fmt.Sprintf("⚠️ Plan generation failed (%v), using fallback plan", err))
		return FallbackPlan(goal)
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		g.logger.LogProcessStep(fmt.Sprintf("⚠️ Plan response unusable (%v), using fallback plan", err))
		return FallbackPlan(goal)
	}

	plan.ID = uuid.NewString()
	plan.Goal = goal
	plan.CreatedAt = time.Now()
	g.logger.LogProcessStep(fmt.Sprintf("Plan received: %d subtasks", len(plan.Subtasks)))
	return plan
}

// ParsePlan decodes and validates an LLM plan response. Code fences around
// the JSON are tolerated since many models add them despite instructions.
func ParsePlan(raw string) (*Plan, error) {
	cleaned := stripCodeFences(raw)

	var plan Plan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("response is not valid plan JSON: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan failed validation: %w", err)
	}
	return &plan, nil
}

// FallbackPlan is the deterministic two-subtask plan used whenever a real
// plan cannot be obtained: analyze the goal, then answer it, merged by
// simple concatenation.
func FallbackPlan(goal string) *Plan {
	return &Plan{
		ID:   uuid.NewString(),
		Goal: goal,
		Subtasks: []Subtask{
			{
				ID:        "analyze",
				Objective: "Analyze the goal: identify what is being asked, constraints, and what a good answer needs to cover.",
				Executor:  ExecutorLLM,
			},
			{
				ID:        "answer",
				Objective: "Answer the goal directly and completely.",
				Executor:  ExecutorLLM,
				DependsOn: []string{"analyze"},
			},
		},
		Merge: MergeStrategy{
			Strategy: "Concatenate the analysis and the answer, answer first.",
		},
		Fallback:  true,
		CreatedAt: time.Now(),
	}
}

// stripCodeFences removes a single surrounding markdown code fence, with or
// without a language tag.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
