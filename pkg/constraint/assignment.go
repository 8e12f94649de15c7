package constraint

import (
	"github.com/picu-roster/engine/pkg/catalogue"
)

// EmitAssignmentVars creates one boolean decision variable per (person,
// day, code) that is structurally reachable for that person, per
// eligibleCodes. Every other emitter looks these variables up by name
// rather than creating its own.
func EmitAssignmentVars(lib *Library) error {
	for _, p := range lib.H.Persons {
		codes := eligibleCodes(p)
		for d := range lib.H.Days {
			for _, c := range codes {
				lib.M.BoolVar(AssignName(p.ID, d, c))
			}
		}
	}
	return nil
}
