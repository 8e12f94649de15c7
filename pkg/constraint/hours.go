package constraint

import (
	"math"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/picu-roster/engine/pkg/catalogue"
)

// minHorizonWeeksForAverage is the threshold below which the average
// weekly hours bound is suppressed, since a staged partial solve or a
// short horizon makes the bound meaningless.
const minHorizonWeeksForAverage = 20

// EmitAverageWeeklyHours bounds each person's total horizon hours to
// [floor(42*weeks*WTE), ceil(47*weeks*WTE)], only when the horizon spans
// at least 20 weeks.
func EmitAverageWeeklyHours(lib *Library) error {
	weeks := lib.H.NumWeeks()
	if weeks < minHorizonWeeksForAverage {
		return nil
	}

	for _, p := range lib.H.Persons {
		expr := cpmodel.NewLinearExpr()
		for d := range lib.H.Days {
			for _, c := range catalogue.WorkingCodes() {
				if lib.HasVar(p.ID, d, c) {
					expr.AddTerm(lib.M.Var(AssignName(p.ID, d, c)), int64(catalogue.Hours(c)))
				}
			}
		}
		lo := int64(math.Floor(42 * float64(weeks) * p.WTE))
		hi := int64(math.Ceil(47 * float64(weeks) * p.WTE))
		lib.M.GreaterOrEqual(expr, cpsatConstant(lo))
		lib.M.LessOrEqual(expr, cpsatConstant(hi))
	}
	return nil
}
