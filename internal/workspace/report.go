package workspace

import "time"

// OutcomeKind classifies the result of one per-application step.
type OutcomeKind string

const (
	OutcomeApplied          OutcomeKind = "applied"
	OutcomePartiallyApplied OutcomeKind = "partially_applied"
	OutcomeFailed           OutcomeKind = "failed"
)

// Outcome is the result of capturing or restoring a single application.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Reasons []string    `json:"reasons,omitempty"`
}

func Applied() Outcome { return Outcome{Kind: OutcomeApplied} }

func PartiallyApplied(reasons ...string) Outcome {
	return Outcome{Kind: OutcomePartiallyApplied, Reasons: reasons}
}

func Failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reasons: []string{reason}}
}

// EntryResult pairs an application with its outcome.
type EntryResult struct {
	AppID   string  `json:"app_id"`
	Outcome Outcome `json:"outcome"`
}

// Report is the ordered, per-application outcome record of one capture
// or restore operation. Results preserve the enumeration/storage order
// of the entries regardless of completion order.
type Report struct {
	Workspace string        `json:"workspace"`
	Results   []EntryResult `json:"results"`
	Took      time.Duration `json:"took"`
}

// Succeeded reports whether at least one entry applied cleanly.
func (r *Report) Succeeded() bool {
	for _, e := range r.Results {
		if e.Outcome.Kind == OutcomeApplied {
			return true
		}
	}
	return false
}

// Partial reports whether any entry failed or only partially applied
// while the operation as a whole proceeded.
func (r *Report) Partial() bool {
	for _, e := range r.Results {
		if e.Outcome.Kind != OutcomeApplied {
			return true
		}
	}
	return false
}

// Counts tallies results by outcome kind.
func (r *Report) Counts() (applied, partial, failed int) {
	for _, e := range r.Results {
		switch e.Outcome.Kind {
		case OutcomeApplied:
			applied++
		case OutcomePartiallyApplied:
			partial++
		case OutcomeFailed:
			failed++
		}
	}
	return applied, partial, failed
}
