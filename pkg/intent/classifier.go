// Package intent decides whether a user message should go through the full
// plan/execute/merge pipeline or be answered as plain conversation.
package intent

import "strings"

// Decision is the outcome of classifying one user input.
type Decision int

const (
	// Conversational input is answered with a single LLM call.
	Conversational Decision = iota
	// Agentic input is decomposed into a plan and executed.
	Agentic
)

func (d Decision) String() string {
	if d == Agentic {
		return "agentic"
	}
	return "conversational"
}

// agenticKeywords are verbs and phrases that signal a multi-step goal.
// Matching is word-boundary aware for single words and substring based for
// phrases.
var agenticKeywords = []string{
	"build", "create", "implement", "fix", "refactor", "write",
	"generate", "analyze", "analyse", "compare", "research", "plan",
	"organize", "summarize", "summarise", "modify", "update", "install",
	"step by step", "break down", "then",
}

// Classify returns Agentic when the input looks like a goal that benefits
// from decomposition, Conversational otherwise. Questions without an action
// verb stay conversational.
func Classify(input string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Conversational
	}

	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!' || r == ':' || r == ';'
	})
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	for _, kw := range agenticKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(normalized, kw) {
				return Agentic
			}
			continue
		}
		if wordSet[kw] {
			return Agentic
		}
	}
	return Conversational
}
