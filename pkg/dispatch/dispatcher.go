// Package dispatch executes a validated plan's subtasks. Dependencies form
// a partial order over the declaration sequence; subtasks sharing a
// parallel-group tag run concurrently, one goroutine per subtask, joined
// before the next group starts.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/selfai-agent/selfai/pkg/config"
	"github.com/selfai-agent/selfai/pkg/memory"
	"github.com/selfai-agent/selfai/pkg/planner"
	"github.com/selfai-agent/selfai/pkg/prompts"
	"github.com/selfai-agent/selfai/pkg/providers"
	"github.com/selfai-agent/selfai/pkg/tools"
	"github.com/selfai-agent/selfai/pkg/utils"
)

// subtaskMaxTokens bounds one llm-agent subtask response.
const subtaskMaxTokens = 4096

// Dispatcher runs subtasks against the backend chain and the tool registry.
type Dispatcher struct {
	chain        *providers.Chain
	registry     *tools.Registry
	mem          *memory.Store
	identity     string
	persona      config.Persona
	category     string
	memoryWindow int
	logger       *utils.Logger
}

// Options carries the prompt-shaping inputs for llm-agent subtasks.
type Options struct {
	Identity     string
	Persona      config.Persona
	Category     string
	MemoryWindow int
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(chain *providers.Chain, registry *tools.Registry, mem *memory.Store, opts Options, logger *utils.Logger) *Dispatcher {
	return &Dispatcher{
		chain:        chain,
		registry:     registry,
		mem:          mem,
		identity:     opts.Identity,
		persona:      opts.Persona,
		category:     opts.Category,
		memoryWindow: opts.MemoryWindow,
		logger:       logger,
	}
}

// Dispatch executes every subtask and returns one result per subtask, in
// plan order regardless of execution order. A subtask's failure never
// aborts the run; later subtasks still execute.
func (d *Dispatcher) Dispatch(ctx context.Context, plan *planner.Plan) []planner.SubtaskResult {
	resultsByID := make(map[string]planner.SubtaskResult, len(plan.Subtasks))

	for _, wave := range computeWaves(plan) {
		if len(wave) == 1 {
			st := wave[0]
			resultsByID[st.ID] = d.executeSubtask(ctx, plan, st)
			continue
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, st := range wave {
			wg.Add(1)
			go func(st planner.Subtask) {
				defer wg.Done()
				res := d.executeSubtask(ctx, plan, st)
				mu.Lock()
				resultsByID[st.ID] = res
				mu.Unlock()
			}(st)
		}
		wg.Wait()
	}

	results := make([]planner.SubtaskResult, 0, len(plan.Subtasks))
	for _, st := range plan.Subtasks {
		results = append(results, resultsByID[st.ID])
	}
	return results
}

// computeWaves splits the declaration order into execution waves. A wave is
// a maximal run of consecutive subtasks sharing a non-empty parallel-group
// tag, with no dependency edge inside the wave. Untagged subtasks always
// form single-member waves.
func computeWaves(plan *planner.Plan) [][]planner.Subtask {
	var waves [][]planner.Subtask
	var current []planner.Subtask
	currentTag := ""

	inCurrent := func(id string) bool {
		for _, st := range current {
			if st.ID == id {
				return true
			}
		}
		return false
	}
	dependsOnCurrent := func(st planner.Subtask) bool {
		for _, dep := range st.DependsOn {
			if inCurrent(dep) {
				return true
			}
		}
		return false
	}
	flush := func() {
		if len(current) > 0 {
			waves = append(waves, current)
			current = nil
			currentTag = ""
		}
	}

	for _, st := range plan.Subtasks {
		if st.ParallelGroup == "" || st.ParallelGroup != currentTag || dependsOnCurrent(st) {
			flush()
		}
		current = append(current, st)
		currentTag = st.ParallelGroup
	}
	flush()
	return waves
}

// executeSubtask runs one subtask and records its outcome. Every execution
// is logged with enough detail to reconstruct what happened without
// replaying the LLM call.
func (d *Dispatcher) executeSubtask(ctx context.Context, plan *planner.Plan, st planner.Subtask) planner.SubtaskResult {
	start := time.Now()
	d.logger.Logf("Subtask %s starting: executor=%s objective=%q", st.ID, st.Executor, st.Objective)

	var output string
	var err error
	switch st.Executor {
	case planner.ExecutorTool:
		output, err = d.runTool(ctx, st)
	default:
		output, err = d.runLLM(ctx, plan.Goal, st)
	}

	elapsed := time.Since(start)
	res := planner.SubtaskResult{
		SubtaskID:  st.ID,
		Elapsed:    elapsed.Seconds(),
		FinishedAt: time.Now(),
	}
	if err != nil {
		res.Status = planner.StatusFailure
		res.ErrorDetail = err.Error()
		d.logger.LogProcessStep(fmt.Sprintf("⚠️ Subtask %s failed after %s: %v", st.ID, elapsed.Round(time.Millisecond), err))
	} else {
		res.Status = planner.StatusSuccess
		res.Output = output
		d.logger.Logf("Subtask %s succeeded in %s (%d bytes)", st.ID, elapsed.Round(time.Millisecond), len(output))
	}
	return res
}

func (d *Dispatcher) runLLM(ctx context.Context, goal string, st planner.Subtask) (string, error) {
	window := ""
	if d.mem != nil {
		window = d.mem.Window(d.category, d.memoryWindow)
	}
	system := prompts.SubtaskSystemPrompt(d.identity, d.persona.Instructions, window)
	user := prompts.SubtaskUserPrompt(goal, st.Objective)
	return d.chain.Generate(ctx, system, user, subtaskMaxTokens)
}

// runTool validates the tool name against the registry and executes it. A
// tool's own panic is captured and turned into a failure result so one bad
// tool cannot crash the pipeline.
func (d *Dispatcher) runTool(ctx context.Context, st planner.Subtask) (output string, err error) {
	tool, ok := d.registry.Get(st.Tool)
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", st.Tool)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", st.Tool, r)
		}
	}()
	return tool.Run(ctx, st.Args)
}
