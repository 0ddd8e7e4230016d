package executor

import "strings"

// OutcomeKind classifies the result of one operation.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome records what happened to a single operation.
type Outcome struct {
	Kind   OutcomeKind
	Detail string
}

// Report is the consolidated result of one execution run: successful actions
// in order, then notices and failures in order. Silence is never a terminal
// state; Summary always has something to say.
type Report struct {
	Actions []string
	Notices []string

	outcomes []Outcome
}

func (r *Report) success(detail string) {
	r.Actions = append(r.Actions, detail)
	r.outcomes = append(r.outcomes, Outcome{Kind: OutcomeSuccess, Detail: detail})
}

func (r *Report) skipped(detail string) {
	r.Notices = append(r.Notices, detail)
	r.outcomes = append(r.outcomes, Outcome{Kind: OutcomeSkipped, Detail: detail})
}

// noop records a skipped operation without a feedback line. Used for edit
// targets that no longer exist, which are silent no-ops by contract.
func (r *Report) noop(detail string) {
	r.outcomes = append(r.outcomes, Outcome{Kind: OutcomeSkipped, Detail: detail})
}

func (r *Report) failed(detail string) {
	r.Notices = append(r.Notices, detail)
	r.outcomes = append(r.outcomes, Outcome{Kind: OutcomeFailed, Detail: detail})
}

// Outcomes returns the per-operation outcomes in execution order.
func (r *Report) Outcomes() []Outcome {
	return append([]Outcome(nil), r.outcomes...)
}

// Failed reports whether any operation failed outright.
func (r *Report) Failed() bool {
	for _, o := range r.outcomes {
		if o.Kind == OutcomeFailed {
			return true
		}
	}
	return false
}

// Summary renders the final consolidated message.
func (r *Report) Summary() string {
	var b strings.Builder
	if len(r.Actions) > 0 {
		b.WriteString("✅ **Actions Complete:**\n- ")
		b.WriteString(strings.Join(r.Actions, "\n- "))
	}
	if len(r.Notices) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("ℹ️ **Notifications:**\n- ")
		b.WriteString(strings.Join(r.Notices, "\n- "))
	}
	if b.Len() == 0 {
		return "I understood your request, but I couldn't find any valid actions to take based on the current server state."
	}
	return b.String()
}
