// Package prompts holds the prompt templates for the plan, subtask and
// merge phases. Templates are plain functions so call sites stay testable.
package prompts

import (
	"fmt"
	"strings"
)

// PlanSystemPrompt instructs the model to decompose a goal into a strict
// JSON plan. toolNames is the registry allow-list, included so the model
// only names tools that exist.
func PlanSystemPrompt(identity string, toolNames []string) string {
	var sb strings.Builder
	sb.WriteString(identity)
	sb.WriteString("\n\nDecompose the user's goal into a plan of subtasks.\n")
	sb.WriteString("Respond with ONLY a JSON object, no prose, in this shape:\n")
	sb.WriteString(`{
  "subtasks": [
    {
      "id": "unique_id",
      "objective": "what this subtask accomplishes",
      "executor": "llm-agent" | "tool-call",
      "tool": "tool name, only for tool-call",
      "args": {"key": "value"},
      "parallel_group": "optional tag; same-tag subtasks may run concurrently",
      "depends_on": ["ids of earlier subtasks"]
    }
  ],
  "merge": {
    "strategy": "how to synthesize the subtask outputs",
    "steps": ["optional ordered suggestions"]
  }
}`)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- Prefer 2 to 8 subtasks.\n")
	sb.WriteString("- depends_on may only reference earlier subtasks.\n")
	if len(toolNames) > 0 {
		sb.WriteString(fmt.Sprintf("- Available tools: %s. Never invent other tool names.\n",
			strings.Join(toolNames, ", ")))
	}
	return sb.String()
}

// SubtaskSystemPrompt combines the identity, the active persona and the
// recent memory window into the system prompt for one llm-agent subtask.
func SubtaskSystemPrompt(identity, personaInstructions, memoryWindow string) string {
	var sb strings.Builder
	sb.WriteString(identity)
	if personaInstructions != "" {
		sb.WriteString("\n\n")
		sb.WriteString(personaInstructions)
	}
	if memoryWindow != "" {
		sb.WriteString("\n\nRelevant recent context:\n")
		sb.WriteString(memoryWindow)
	}
	return sb.String()
}

// SubtaskUserPrompt frames one subtask objective in the context of the
// overall goal.
func SubtaskUserPrompt(goal, objective string) string {
	return fmt.Sprintf("Overall goal: %s\n\nYour subtask: %s", goal, objective)
}

// MergeSystemPrompt issues the synthesis and formatting constraints for the
// merge phase.
func MergeSystemPrompt(identity string) string {
	var sb strings.Builder
	sb.WriteString(identity)
	sb.WriteString("\n\nYou synthesize subtask results into one final answer.\n")
	sb.WriteString("Constraints:\n")
	sb.WriteString("- Give the direct answer first.\n")
	sb.WriteString("- Do not expose internal reasoning markup.\n")
	sb.WriteString("- Do not comment on the merge process itself.\n")
	return sb.String()
}

// MergeUserPrompt lists the goal, each subtask's output or error note, and
// the plan's merge guidance.
func MergeUserPrompt(goal string, sections []string, strategy string, steps []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Original goal: %s\n\n", goal))
	sb.WriteString("Subtask results:\n")
	for _, section := range sections {
		sb.WriteString(section)
		sb.WriteString("\n")
	}
	if strategy != "" {
		sb.WriteString(fmt.Sprintf("\nMerge guidance: %s\n", strategy))
	}
	for i, step := range steps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}
	sb.WriteString("\nSynthesize one final answer to the original goal.")
	return sb.String()
}

// ConversationalSystemPrompt is used for plain chat messages that bypass
// the pipeline.
func ConversationalSystemPrompt(identity, memoryWindow string) string {
	if memoryWindow == "" {
		return identity
	}
	return identity + "\n\nRelevant recent context:\n" + memoryWindow
}
