package store

import "strings"

// Step is one transition a mutation went through.
type Step string

const (
	Applied    Step = "applied"
	Confirmed  Step = "confirmed"
	RolledBack Step = "rolled_back"
	Kept       Step = "kept"
)

// Outcome records what a mutation did to the local collection and why it
// ended where it did.
type Outcome struct {
	Steps  []Step
	Reason string
}

func (o *Outcome) add(s Step) {
	o.Steps = append(o.Steps, s)
}

// Final is the last recorded step, or "" when nothing happened locally.
func (o Outcome) Final() Step {
	if len(o.Steps) == 0 {
		return ""
	}
	return o.Steps[len(o.Steps)-1]
}

func (o Outcome) Has(s Step) bool {
	for _, got := range o.Steps {
		if got == s {
			return true
		}
	}
	return false
}

func (o Outcome) String() string {
	parts := make([]string, len(o.Steps))
	for i, s := range o.Steps {
		parts[i] = string(s)
	}
	out := strings.Join(parts, " -> ")
	if o.Reason != "" {
		out += " (" + o.Reason + ")"
	}
	return out
}
