// Package report turns a solved roster and its validation pass into the
// breach listing and summary statistics an end user actually reads.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/validator"
)

// Breach is one invariant violation surfaced for human review.
type Breach struct {
	PersonID uuid.UUID `json:"person_id,omitempty"`
	Date     time.Time `json:"date,omitempty"`
	Message  string    `json:"message"`
}

// BreachReport groups every breach by the invariant it violates, so a
// reader can scan severity by category rather than a flat chronological
// list.
type BreachReport struct {
	ByInvariant map[string][]Breach `json:"by_invariant"`
}

// FromValidation builds a BreachReport from a validator pass.
func FromValidation(r *validator.Report) BreachReport {
	out := BreachReport{ByInvariant: make(map[string][]Breach)}
	for _, v := range r.Violations {
		out.ByInvariant[v.Invariant] = append(out.ByInvariant[v.Invariant], Breach{
			PersonID: v.PersonID,
			Date:     v.Date,
			Message:  v.Message,
		})
	}
	return out
}

// Count returns the total number of breaches across every invariant.
func (b BreachReport) Count() int {
	n := 0
	for _, list := range b.ByInvariant {
		n += len(list)
	}
	return n
}

// Clean reports whether no breaches were recorded.
func (b BreachReport) Clean() bool {
	return b.Count() == 0
}
