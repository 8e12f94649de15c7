package constraint

import (
	"fmt"
	"math"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/picu-roster/engine/pkg/catalogue"
)

// EmitWeekendFrequencyCap enforces the hard weekend cap
// ceil(N_weekends * WTE / 2), and creates a firm-overage indicator over
// the soft ceil(N_weekends * WTE / 3) band that the objective shaper
// penalises (tier 3).
func EmitWeekendFrequencyCap(lib *Library) error {
	weekends := lib.H.Weekends()

	for _, p := range lib.H.Persons {
		var workedFlags []cpmodel.BoolVar
		for wi, w := range weekends {
			var dayIdxs []int
			if !w.Saturday.IsZero() {
				dayIdxs = append(dayIdxs, lib.H.DayOf(w.Saturday))
			}
			if !w.Sunday.IsZero() {
				dayIdxs = append(dayIdxs, lib.H.DayOf(w.Sunday))
			}

			var lits []cpmodel.BoolVar
			for _, d := range dayIdxs {
				if d < 0 {
					continue
				}
				for _, c := range catalogue.WorkingCodes() {
					if lib.HasVar(p.ID, d, c) {
						lits = append(lits, lib.M.Var(AssignName(p.ID, d, c)))
					}
				}
			}
			if len(lits) == 0 {
				continue
			}

			flag := lib.M.BoolVar(fmt.Sprintf("weworked_%s_%d", p.ID, wi))
			for _, l := range lits {
				lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{l}), cpsatSum([]cpmodel.BoolVar{flag}))
			}
			lib.M.LessOrEqual(cpsatSum([]cpmodel.BoolVar{flag}), cpsatSum(lits))
			workedFlags = append(workedFlags, flag)
		}

		n := len(weekends)
		hardCap := int64(math.Ceil(float64(n) * p.WTE / 2))
		firmCap := int64(math.Ceil(float64(n) * p.WTE / 3))

		total := cpsatSum(workedFlags)
		lib.M.LessOrEqual(total, cpsatConstant(hardCap))

		// overage is a single boolean indicator rather than an integer
		// magnitude: it is forced to 1 whenever the worked count exceeds
		// the firm band at all. (n+1) is large enough that the
		// inequality never binds when overage=1 and the count is below
		// the firm cap, since total-firmCap can never exceed n.
		overageName := fmt.Sprintf("firmoverage_%s", p.ID)
		overage := lib.M.BoolVar(overageName)
		lib.M.GreaterOrEqual(scaleVar(overage, int64(n)+1), subtractConst(total, firmCap))
		lib.Signals.FirmWeekendOverage[p.ID] = overageName
	}
	return nil
}

func subtractConst(expr *cpmodel.LinearExpr, k int64) cpmodel.LinearArgument {
	out := cpmodel.NewLinearExpr()
	out.Add(expr)
	out.Add(cpmodel.NewConstant(-k))
	return out
}

func scaleVar(v cpmodel.BoolVar, coeff int64) cpmodel.LinearArgument {
	out := cpmodel.NewLinearExpr()
	out.AddTerm(v, coeff)
	return out
}
