// Package planner turns a user goal into a validated plan of subtasks via
// an LLM call, falling back to a deterministic two-subtask plan whenever
// the model's output cannot be used.
package planner

import "time"

// ExecutorKind says how a subtask is executed.
type ExecutorKind string

const (
	// ExecutorLLM runs the subtask as an LLM call with the active persona.
	ExecutorLLM ExecutorKind = "llm-agent"
	// ExecutorTool runs a registered tool.
	ExecutorTool ExecutorKind = "tool-call"
)

// Subtask is one unit of work in a plan.
type Subtask struct {
	ID            string                 `json:"id"`
	Objective     string                 `json:"objective"`
	Executor      ExecutorKind           `json:"executor"`
	Tool          string                 `json:"tool,omitempty"`
	Args          map[string]interface{} `json:"args,omitempty"`
	ParallelGroup string                 `json:"parallel_group,omitempty"`
	DependsOn     []string               `json:"depends_on,omitempty"`
}

// MergeStrategy carries the plan's synthesis guidance. Steps are advisory
// suggestions only, never enforced.
type MergeStrategy struct {
	Strategy string   `json:"strategy"`
	Steps    []string `json:"steps,omitempty"`
}

// Plan is an ordered sequence of subtasks plus one merge strategy. It lives
// in memory for the duration of one pipeline run and is persisted as a JSON
// artifact to the plans store.
type Plan struct {
	ID        string        `json:"id"`
	Goal      string        `json:"goal"`
	Subtasks  []Subtask     `json:"subtasks"`
	Merge     MergeStrategy `json:"merge"`
	Fallback  bool          `json:"fallback,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// SubtaskIDs returns the plan's subtask ids in declaration order.
func (p *Plan) SubtaskIDs() []string {
	ids := make([]string, len(p.Subtasks))
	for i, st := range p.Subtasks {
		ids[i] = st.ID
	}
	return ids
}

// Status of one executed subtask.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// SubtaskResult records the outcome of one subtask. Results are appended
// during execution and never mutated afterward.
type SubtaskResult struct {
	SubtaskID   string    `json:"subtask_id"`
	Status      Status    `json:"status"`
	Output      string    `json:"output,omitempty"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	Elapsed     float64   `json:"elapsed_seconds"`
	FinishedAt  time.Time `json:"finished_at"`
}
