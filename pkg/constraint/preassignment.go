package constraint

import "fmt"

// EmitPreassignments fixes hard preassignments (absence codes) to true
// and records every soft (working-code) preassignment's own assignment
// variable as the objective's "ok" signal: the variable is already 1
// exactly when the solver honoured the preassignment, and 0 otherwise,
// so no extra variable is needed, only the bookkeeping that lets the
// objective shaper find it by (person, day).
func EmitPreassignments(lib *Library) error {
	for _, pa := range lib.In.Preassignments {
		d := lib.H.DayOf(pa.Date)
		if d < 0 {
			return fmt.Errorf("constraint: preassignment date %s is outside the horizon", pa.Date.Format("2006-01-02"))
		}
		if !lib.HasVar(pa.PersonID, d, pa.Code) {
			return fmt.Errorf("constraint: preassignment of %s to person %s on day %d is structurally impossible (grade/eligibility mismatch)", pa.Code, pa.PersonID, d)
		}

		name := AssignName(pa.PersonID, d, pa.Code)
		if pa.IsHard() {
			lib.M.FixTrue(lib.M.Var(name))
			continue
		}

		lib.Signals.PreassignmentOK[PersonDayKey{Person: pa.PersonID, Day: d}] = name
	}
	return nil
}
