package roster

import (
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/errors"
	"github.com/picu-roster/engine/pkg/model"
)

// ValidateInput rejects a problem at the boundary before any solver sees
// it: unknown codes, preassignment dates outside the configured horizon,
// preassignments referencing a person not in the roster, and two hard
// preassignments contradicting each other for the same person and day.
// These are boundary errors: they never reach a solver.
func ValidateInput(in model.ProblemInput) error {
	if in.Config.StartDate.After(in.Config.EndDate) {
		return errors.New(errors.CodeInvalidInput, "config start date is after end date")
	}

	known := make(map[string]bool, len(in.Persons))
	for _, p := range in.Persons {
		known[p.ID.String()] = true
	}

	hard := make(map[string]catalogue.Code)
	for _, pa := range in.Preassignments {
		if !known[pa.PersonID.String()] {
			return errors.UnknownPerson(pa.PersonID.String())
		}
		if _, ok := catalogue.Lookup(pa.Code); !ok {
			return errors.UnknownCode(string(pa.Code))
		}
		if pa.Date.Before(in.Config.StartDate) || pa.Date.After(in.Config.EndDate) {
			return errors.DateOutOfHorizon("preassignment", pa.Date.Format("2006-01-02"))
		}
		if !pa.IsHard() {
			continue
		}
		key := pa.PersonID.String() + "|" + pa.Date.Format("2006-01-02")
		if existing, ok := hard[key]; ok && existing != pa.Code {
			return errors.ContradictoryPreassignment(pa.PersonID.String(), pa.Date.Format("2006-01-02"))
		}
		hard[key] = pa.Code
	}

	return nil
}
