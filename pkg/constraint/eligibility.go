package constraint

// EmitGradeEligibility and EmitSupernumeraryBan are deliberately no-ops:
// eligibleCodes never creates a variable for a grade-mismatched or
// supernumerary-forbidden code in the first place, so both rules are
// already structurally enforced by EmitAssignmentVars. They remain as
// named emitters, rather than folded away, so the constraint list in
// Build reads as a complete checklist against the rule set they encode.

// EmitGradeEligibility enforces that grade-restricted codes are never
// assigned to the wrong grade.
func EmitGradeEligibility(lib *Library) error { return nil }

// EmitSupernumeraryBan enforces that Supernumerary persons never receive
// a long-day, night, or CoMET code.
func EmitSupernumeraryBan(lib *Library) error { return nil }
