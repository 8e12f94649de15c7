package constraint

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

// EmitCoverage fills in every mandatory-cover role per day (LDR, LDS,
// NR, NS, CMD, CMN) plus the weekday short-day band, each with its
// locum slack column so a role is always satisfiable.
func EmitCoverage(lib *Library) error {
	for d := range lib.H.Days {
		emitRoleCoverage(lib, d, catalogue.LDR, model.LocRegLD, catalogue.GradeRegistrar)
		emitRoleCoverage(lib, d, catalogue.LDS, model.LocSHOLD, catalogue.GradeSHO)
		emitRoleCoverage(lib, d, catalogue.NR, model.LocRegN, catalogue.GradeRegistrar)
		emitRoleCoverage(lib, d, catalogue.NS, model.LocSHON, catalogue.GradeSHO)
		emitCometCoverage(lib, d)
		emitShortDayCoverage(lib, d)
	}
	return nil
}

// emitRoleCoverage wires "exactly one eligible person on code, or one
// unit of locum slack" for a single mandatory-cover role on day d.
func emitRoleCoverage(lib *Library, d int, code catalogue.Code, col model.LocumColumn, grade catalogue.Grade) {
	var lits []cpmodel.BoolVar
	for _, p := range lib.H.Persons {
		if p.Grade != grade {
			continue
		}
		if lib.HasVar(p.ID, d, code) {
			lits = append(lits, lib.M.Var(AssignName(p.ID, d, code)))
		}
	}
	loc := lib.LocumVar(d, col, 0)
	lits = append(lits, loc)
	lib.M.Equal(cpsatSum(lits), cpsatConstant(1))
}

// emitCometCoverage fills CMD/CMN on CoMET days and zeroes both the
// assignment variables and the locum slack on every other day.
func emitCometCoverage(lib *Library, d int) {
	if lib.H.IsCometWeek[d] {
		emitRoleCoverage(lib, d, catalogue.CMD, model.LocRegCMD, catalogue.GradeRegistrar)
		emitRoleCoverage(lib, d, catalogue.CMN, model.LocRegCMN, catalogue.GradeRegistrar)
		return
	}
	for _, p := range lib.H.Persons {
		for _, c := range []catalogue.Code{catalogue.CMD, catalogue.CMN} {
			if lib.HasVar(p.ID, d, c) {
				lib.M.FixFalse(lib.M.Var(AssignName(p.ID, d, c)))
			}
		}
	}
	lib.M.FixFalse(lib.LocumVar(d, model.LocRegCMD, 0))
	lib.M.FixFalse(lib.LocumVar(d, model.LocRegCMN, 0))
}

// emitShortDayCoverage bounds the weekday SD count to [1, 3], topped up
// by up to three locum units to reach the floor, and zeroes SD entirely
// on weekends, bank holidays and induction days.
func emitShortDayCoverage(lib *Library, d int) {
	day := lib.H.Days[d]
	restricted := lib.H.IsWeekend[d] || lib.H.IsBankHoliday[d] || lib.In.Config.IsInductionDay(day)

	var lits []cpmodel.BoolVar
	for _, p := range lib.H.Persons {
		if lib.HasVar(p.ID, d, catalogue.SD) {
			v := lib.M.Var(AssignName(p.ID, d, catalogue.SD))
			if restricted {
				lib.M.FixFalse(v)
				continue
			}
			lits = append(lits, v)
		}
	}
	if restricted {
		for _, u := range lib.LocumUnitVars(d, model.LocSDAny) {
			lib.M.FixFalse(u)
		}
		return
	}

	lo, hi := lib.In.Config.SDWeekdayBounds()
	locUnits := lib.LocumUnitVars(d, model.LocSDAny)

	assigned := cpsatSum(lits)
	lib.M.LessOrEqual(assigned, cpsatConstant(int64(hi)))
	lib.M.GreaterOrEqual(cpsatSum(append(append([]cpmodel.BoolVar{}, lits...), locUnits...)), cpsatConstant(int64(lo)))
}

func cpsatSum(lits []cpmodel.BoolVar) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, l := range lits {
		expr.Add(l)
	}
	return expr
}

func cpsatConstant(v int64) cpmodel.LinearArgument {
	return cpmodel.NewConstant(v)
}

// oneMinusVar builds the linear argument (1 - v) for a single bool var,
// used by every soft indicator defined as the negation of another.
func oneMinusVar(v cpmodel.BoolVar) cpmodel.LinearArgument {
	expr := cpmodel.NewLinearExpr()
	expr.AddTerm(v, -1)
	expr.Add(cpmodel.NewConstant(1))
	return expr
}
