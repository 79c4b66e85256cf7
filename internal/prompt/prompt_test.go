package prompt_test

import (
	"testing"

	"slate/internal/prompt"
)

func question() prompt.Question {
	return prompt.Question{
		Key:     "confstore.corrupt",
		Message: "cannot parse document",
		Choices: []prompt.Choice{prompt.Retry, prompt.Reset, prompt.Cancel},
		Default: prompt.Cancel,
	}
}

func TestStaticAnswersByKey(t *testing.T) {
	p := prompt.Static{Answers: map[string]prompt.Choice{"confstore.corrupt": prompt.Reset}}
	if got := p.Ask(question()); got != prompt.Reset {
		t.Fatalf("got %q, want reset", got)
	}
}

func TestStaticFallsBackToDefault(t *testing.T) {
	p := prompt.Static{}
	if got := p.Ask(question()); got != prompt.Cancel {
		t.Fatalf("got %q, want default cancel", got)
	}
}

func TestStaticRejectsUnofferedAnswer(t *testing.T) {
	p := prompt.Static{Answers: map[string]prompt.Choice{"confstore.corrupt": prompt.Quarantine}}
	if got := p.Ask(question()); got != prompt.Cancel {
		t.Fatalf("unoffered answer must fall back to default, got %q", got)
	}
}

func TestDeclineAlwaysCancels(t *testing.T) {
	q := question()
	q.Default = prompt.Retry
	if got := (prompt.Decline{}).Ask(q); got != prompt.Cancel {
		t.Fatalf("got %q, want cancel", got)
	}
}
