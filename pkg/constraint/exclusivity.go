package constraint

import "github.com/google/or-tools/ortools/sat/go/cpmodel"

// EmitExclusivity constrains, for each (person, day), the sum of every
// eligible code variable, OFF's own variable included, to at most 1. A
// day on which every code variable is zero also reads as OFF.
func EmitExclusivity(lib *Library) error {
	for _, p := range lib.H.Persons {
		codes := eligibleCodes(p)
		for d := range lib.H.Days {
			var lits []cpmodel.BoolVar
			for _, c := range codes {
				if lib.HasVar(p.ID, d, c) {
					lits = append(lits, lib.M.Var(AssignName(p.ID, d, c)))
				}
			}
			lib.M.AtMostOne(lits...)
		}
	}
	return nil
}
