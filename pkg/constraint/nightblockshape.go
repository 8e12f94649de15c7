package constraint

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"
)

// EmitNightBlockShape enforces the three hard block-shape rules: no
// singleton nights, no 5-consecutive-night window, and at least 5 clear
// days between distinct night blocks.
func EmitNightBlockShape(lib *Library) error {
	for _, p := range lib.H.Persons {
		flags := make([]cpmodel.BoolVar, len(lib.H.Days))
		has := make([]bool, len(lib.H.Days))
		for d := range lib.H.Days {
			if v, ok := flagVarIfExists(lib, p.ID, d); ok {
				flags[d], has[d] = v, true
			}
		}

		// (a) no singleton nights: for interior days, a night implies a
		// neighbouring night either side.
		for d := 1; d < len(lib.H.Days)-1; d++ {
			if !has[d] {
				continue
			}
			neighbours := cpmodel.NewLinearExpr()
			if has[d-1] {
				neighbours.Add(flags[d-1])
			}
			if has[d+1] {
				neighbours.Add(flags[d+1])
			}
			lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{flags[d]}), neighbours)
		}

		// (b) no 5 consecutive nights in any 5-day window.
		for start := 0; start+5 <= len(lib.H.Days); start++ {
			expr := cpmodel.NewLinearExpr()
			any := false
			for d := start; d < start+5; d++ {
				if has[d] {
					expr.Add(flags[d])
					any = true
				}
			}
			if any {
				lib.M.LessOrEqual(expr, cpsatConstant(4))
			}
		}

		// (c) at least 5 clear days between blocks: a night in [d, d+3]
		// forbids any night in [d+4, d+8], encoded pairwise.
		for d := 0; d+8 < len(lib.H.Days); d++ {
			for i := d; i <= d+3; i++ {
				if !has[i] {
					continue
				}
				for j := d + 4; j <= d+8; j++ {
					if !has[j] {
						continue
					}
					lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{flags[i], flags[j]}), cpsatConstant(1))
				}
			}
		}
	}
	return nil
}

// flagVarIfExists looks up the night-flag variable for (person, day)
// that EmitRestAfterNights already created, without re-deriving the
// OR-equality encoding a second time. EmitRestAfterNights must run
// before this emitter; Build's DefaultEmitters order guarantees it.
func flagVarIfExists(lib *Library, person uuid.UUID, d int) (cpmodel.BoolVar, bool) {
	name := fmt.Sprintf("night_%s_%d", person, d)
	if !lib.M.Has(name) {
		return cpmodel.BoolVar{}, false
	}
	return lib.M.Var(name), true
}
