package constraint

import "github.com/picu-roster/engine/pkg/catalogue"

// EmitFixedDayOff forbids every working code on a person's configured
// fixed day off, for persons with WTE < 1 (Person.HasFixedDayOff already
// encodes that threshold).
func EmitFixedDayOff(lib *Library) error {
	for _, p := range lib.H.Persons {
		if p.FixedDayOff == nil {
			continue
		}
		for d, day := range lib.H.Days {
			if !p.HasFixedDayOff(day.Weekday()) {
				continue
			}
			for _, c := range catalogue.WorkingCodes() {
				if lib.HasVar(p.ID, d, c) {
					lib.M.FixFalse(lib.M.Var(AssignName(p.ID, d, c)))
				}
			}
		}
	}
	return nil
}
