// Package prompt defines the decision port between the storage layer and
// whatever front end hosts it.
//
// The core never presents UI. Whenever an operation reaches a point that
// needs a human decision (a stale lock, an unparsable document, a master
// folder that cannot be deleted) it asks through the Prompt interface and
// acts on the returned choice. GUI hosts implement Prompt with a dialog;
// headless callers use Static or Decline.
package prompt

// Choice is one of the answers a Question offers.
type Choice string

const (
	Retry        Choice = "retry"
	Cancel       Choice = "cancel"
	Reset        Choice = "reset"
	ForceRelease Choice = "force-release"
	Quarantine   Choice = "quarantine"
)

// Question describes a single decision point. Key identifies the decision
// kind (stable across calls) so non-interactive implementations can answer
// by policy; Message carries the human-readable detail including paths.
type Question struct {
	Key     string
	Message string
	Choices []Choice
	Default Choice
}

// Prompt answers questions on behalf of the user. Implementations must
// return one of the offered choices; anything else is treated as Cancel.
type Prompt interface {
	Ask(q Question) Choice
}

// Static answers by decision key, falling back to the question's default.
// The zero value answers every question with its default.
type Static struct {
	Answers map[string]Choice
}

func (s Static) Ask(q Question) Choice {
	if c, ok := s.Answers[q.Key]; ok && offered(q, c) {
		return c
	}
	if offered(q, q.Default) {
		return q.Default
	}
	return Cancel
}

// Decline cancels every question. It is the safe choice for unattended
// processes such as farm nodes: destructive options like Reset are never
// taken implicitly.
type Decline struct{}

func (Decline) Ask(Question) Choice { return Cancel }

func offered(q Question, c Choice) bool {
	for _, o := range q.Choices {
		if o == c {
			return true
		}
	}
	return false
}
