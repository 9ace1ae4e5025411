package planner

import "fmt"

// Validate checks a plan for structural problems: empty or duplicate
// subtask ids, tool-call subtasks without a tool name, and dependencies
// that do not reference an earlier subtask. Requiring every dependency to
// point backwards makes declaration order a valid execution order and rules
// out cycles entirely. An invalid plan is rejected outright; the generator
// then substitutes the fallback plan.
func (p *Plan) Validate() error {
	if len(p.Subtasks) == 0 {
		return fmt.Errorf("plan has no subtasks")
	}

	byID := make(map[string]*Subtask, len(p.Subtasks))
	for i := range p.Subtasks {
		st := &p.Subtasks[i]
		if st.ID == "" {
			return fmt.Errorf("subtask %d has no id", i)
		}
		if _, dup := byID[st.ID]; dup {
			return fmt.Errorf("duplicate subtask id %q", st.ID)
		}
		switch st.Executor {
		case ExecutorLLM:
		case ExecutorTool:
			if st.Tool == "" {
				return fmt.Errorf("subtask %q is a tool-call but names no tool", st.ID)
			}
		default:
			return fmt.Errorf("subtask %q has unknown executor %q", st.ID, st.Executor)
		}
		byID[st.ID] = st
	}

	// Dependencies may only reference earlier subtasks, so the dispatcher
	// can run declaration order knowing every dependency already has a
	// result. This also makes cycles impossible: any cycle contains at
	// least one forward edge.
	seen := make(map[string]bool, len(p.Subtasks))
	for _, st := range p.Subtasks {
		for _, dep := range st.DependsOn {
			if seen[dep] {
				continue
			}
			if _, ok := byID[dep]; ok {
				return fmt.Errorf("subtask %q depends on later subtask %q", st.ID, dep)
			}
			return fmt.Errorf("subtask %q depends on unknown subtask %q", st.ID, dep)
		}
		seen[st.ID] = true
	}
	return nil
}
