package intent

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		input string
		want  Decision
	}{
		{"build me a reading list for distributed systems", Agentic},
		{"fix the typo in README", Agentic},
		{"compare sqlite and postgres for my use case", Agentic},
		{"first research the topic, then summarize it", Agentic},
		{"break down this problem for me", Agentic},
		{"hello", Conversational},
		{"what's the capital of France?", Conversational},
		{"how are you today", Conversational},
		{"", Conversational},
		// "planning" must not trip the "plan" keyword: matching is word based.
		{"what is planning poker?", Conversational},
	}
	for _, tc := range cases {
		if got := Classify(tc.input); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestDecisionString(t *testing.T) {
	if Agentic.String() != "agentic" || Conversational.String() != "conversational" {
		t.Fatalf("unexpected Decision string values")
	}
}
