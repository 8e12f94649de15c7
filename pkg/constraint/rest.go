package constraint

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
)

// nightFlag returns the literal for "person works any night code on day
// d", synthesised as a fresh bool var linked to the assignment
// variables by a two-sided linear encoding. Returns false if the person
// has no night-code variable at all on this day (pre-start, grade
// mismatch, etc.): callers then know the flag is vacuously false and
// skip creating it.
func nightFlag(lib *Library, person uuid.UUID, d int) (cpmodel.BoolVar, bool) {
	var lits []cpmodel.BoolVar
	for _, c := range catalogue.NightCodes() {
		if lib.HasVar(person, d, c) {
			lits = append(lits, lib.M.Var(AssignName(person, d, c)))
		}
	}
	if len(lits) == 0 {
		return cpmodel.BoolVar{}, false
	}
	flag := lib.M.BoolVar(fmt.Sprintf("night_%s_%d", person, d))
	for _, l := range lits {
		// Each night literal forces the flag true.
		lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{l}), cpsatSum([]cpmodel.BoolVar{flag}))
	}
	// The flag can only be true if at least one night literal is true.
	lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{flag}), cpsatSum(lits))
	return flag, true
}

// EmitRestAfterNights enforces the 46-hour rest rule: whenever a night
// block ends on day d (a night on d, no night on d+1), every working
// code is forbidden on d+1 and d+2.
func EmitRestAfterNights(lib *Library) error {
	for _, p := range lib.H.Persons {
		flags := make([]cpmodel.BoolVar, len(lib.H.Days))
		has := make([]bool, len(lib.H.Days))
		for d := range lib.H.Days {
			flags[d], has[d] = nightFlag(lib, p.ID, d)
		}

		for d := 0; d < len(lib.H.Days)-1; d++ {
			if !has[d] {
				continue
			}

			var endOfBlock cpmodel.BoolVar
			if !has[d+1] {
				// No night variable at all on d+1 means it can never be
				// a night, so every night on d unconditionally ends a
				// block here.
				endOfBlock = flags[d]
			} else {
				endOfBlock = lib.M.BoolVar(fmt.Sprintf("eob_%s_%d", p.ID, d))
				// endOfBlock <= flags[d], endOfBlock <= NOT flags[d+1],
				// endOfBlock >= flags[d] + (1-flags[d+1]) - 1.
				notNext := cpmodel.NewLinearExpr()
				notNext.AddTerm(flags[d+1], -1)
				notNext.Add(cpmodel.NewConstant(1))

				lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{endOfBlock}), cpsatSum([]cpmodel.BoolVar{flags[d]}))
				lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{endOfBlock}), notNext)

				lower := cpmodel.NewLinearExpr()
				lower.Add(flags[d])
				lower.AddTerm(flags[d+1], -1)
				lower.Add(cpmodel.NewConstant(1))
				lib.M.GreaterOrEqual(cpsatSum([]cpmodel.BoolVar{endOfBlock}), subtractOne(lower))
			}

			for _, offset := range []int{1, 2} {
				rd := d + offset
				if rd >= len(lib.H.Days) {
					continue
				}
				for _, c := range catalogue.WorkingCodes() {
					if lib.HasVar(p.ID, rd, c) {
						v := lib.M.Var(AssignName(p.ID, rd, c))
						lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{v, endOfBlock}), cpsatConstant(1))
					}
				}
			}
		}
	}
	return nil
}

func subtractOne(expr *cpmodel.LinearExpr) *cpmodel.LinearExpr {
	out := cpmodel.NewLinearExpr()
	out.Add(expr)
	out.Add(cpmodel.NewConstant(-1))
	return out
}

// EmitRollingHoursCap bounds the sum of hours over every 7-day window to
// 72, per person. Whether LV/SLV hours count toward this cap is an open
// policy question the source leaves ambiguous; catalogue.WorkingCodes
// includes both (see DESIGN.md), matching the source's behaviour.
func EmitRollingHoursCap(lib *Library) error {
	for _, p := range lib.H.Persons {
		for start := 0; start+7 <= len(lib.H.Days); start++ {
			expr := cpmodel.NewLinearExpr()
			for d := start; d < start+7; d++ {
				for _, c := range catalogue.WorkingCodes() {
					if lib.HasVar(p.ID, d, c) {
						expr.AddTerm(lib.M.Var(AssignName(p.ID, d, c)), int64(catalogue.Hours(c)))
					}
				}
			}
			lib.M.LessOrEqual(expr, cpsatConstant(72))
		}
	}
	return nil
}
