package constraint

// EmitPreStartGating forces every eligible code variable, OFF's own
// variable included, to false before a person's effective start date.
// With every variable zero, such a day reads as OFF.
func EmitPreStartGating(lib *Library) error {
	for _, p := range lib.H.Persons {
		codes := eligibleCodes(p)
		for d, day := range lib.H.Days {
			if p.IsActiveOn(day) {
				continue
			}
			for _, c := range codes {
				if lib.HasVar(p.ID, d, c) {
					lib.M.FixFalse(lib.M.Var(AssignName(p.ID, d, c)))
				}
			}
		}
	}
	return nil
}
