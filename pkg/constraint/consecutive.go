package constraint

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
)

// classFlag synthesises an OR-flag over a code subset for (person, day),
// named with prefix so long-shift and working-day flags never collide
// with the night flags built in rest.go.
func classFlag(lib *Library, prefix string, codes []catalogue.Code, person uuid.UUID, d int) (cpmodel.BoolVar, bool) {
	var lits []cpmodel.BoolVar
	for _, c := range codes {
		if lib.HasVar(person, d, c) {
			lits = append(lits, lib.M.Var(AssignName(person, d, c)))
		}
	}
	if len(lits) == 0 {
		return cpmodel.BoolVar{}, false
	}
	flag := lib.M.BoolVar(fmt.Sprintf("%s_%s_%d", prefix, person, d))
	for _, l := range lits {
		lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{l}), cpsatSum([]cpmodel.BoolVar{flag}))
	}
	lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{flag}), cpsatSum(lits))
	return flag, true
}

// capWindow bounds the sum of flags over every window of length size to
// at most cap.
func capWindow(lib *Library, flags []cpmodel.BoolVar, has []bool, size, maxCount int) {
	for start := 0; start+size <= len(flags); start++ {
		expr := cpmodel.NewLinearExpr()
		any := false
		for d := start; d < start+size; d++ {
			if has[d] {
				expr.Add(flags[d])
				any = true
			}
		}
		if any {
			lib.M.LessOrEqual(expr, cpsatConstant(int64(maxCount)))
		}
	}
}

// postRunRest forbids the class flag on each of the restDays days
// immediately after a full-length run of runLen consecutive flags.
func postRunRest(lib *Library, flags []cpmodel.BoolVar, has []bool, runLen, restDays int) {
	for d := runLen - 1; d < len(flags); d++ {
		window := cpmodel.NewLinearExpr()
		complete := true
		for i := d - runLen + 1; i <= d; i++ {
			if !has[i] {
				complete = false
				break
			}
			window.Add(flags[i])
		}
		if !complete {
			continue
		}
		for r := 1; r <= restDays; r++ {
			rd := d + r
			if rd >= len(flags) || !has[rd] {
				continue
			}
			bound := cpmodel.NewLinearExpr()
			bound.Add(window)
			bound.Add(flags[rd])
			lib.M.LessOrEqual(bound, cpsatConstant(int64(runLen)))
		}
	}
}

// EmitConsecutiveLongShifts caps long shifts (hours > 10) at 4 in any
// 5-day window, and forces two clear days after any complete 4-run.
func EmitConsecutiveLongShifts(lib *Library) error {
	for _, p := range lib.H.Persons {
		flags := make([]cpmodel.BoolVar, len(lib.H.Days))
		has := make([]bool, len(lib.H.Days))
		for d := range lib.H.Days {
			flags[d], has[d] = classFlag(lib, "long", catalogue.LongShiftCodes(), p.ID, d)
		}
		capWindow(lib, flags, has, 5, 4)
		postRunRest(lib, flags, has, 4, 2)
	}
	return nil
}

// EmitConsecutiveWorkingDays caps working days at 7 in any 8-day window,
// and forces two clear days after any complete 7-run.
func EmitConsecutiveWorkingDays(lib *Library) error {
	for _, p := range lib.H.Persons {
		flags := make([]cpmodel.BoolVar, len(lib.H.Days))
		has := make([]bool, len(lib.H.Days))
		for d := range lib.H.Days {
			flags[d], has[d] = classFlag(lib, "work", catalogue.WorkingCodes(), p.ID, d)
		}
		capWindow(lib, flags, has, 8, 7)
		postRunRest(lib, flags, has, 7, 2)
	}
	return nil
}
