package staged

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/cpsat"
	"github.com/picu-roster/engine/pkg/model"
)

// runWeekdayLongDays CP-solves the remaining weekday LDR slots: exactly
// one registrar per weekday not already assigned, honouring rest
// against earlier commitments and an integer ±20% WTE-fairness band
// within this stage alone.
func (s *StagedSolver) runWeekdayLongDays(ctx context.Context, timeout time.Duration) (StageResult, error) {
	if err := ctx.Err(); err != nil {
		return StageResult{}, err
	}

	days := s.openWeekdays(catalogue.LDR)
	if len(days) == 0 {
		return StageResult{Name: StageWeekdayLongDays, Succeeded: true, Message: "no open weekday LDR slots"}, nil
	}

	m := cpsat.NewModel()
	vars := s.buildLongDayVars(m, days)

	locVars, unmet := s.emitLongDayCoverage(m, vars, days)
	fairness := s.emitIntegerFairnessBand(m, vars, days, 20)

	obj := cpmodel.NewLinearExpr()
	for _, v := range fairness {
		obj.Add(v)
	}
	m.MinimizeExpr(obj)

	result, err := m.Solve(cpsat.Params{MaxTime: timeout, NumWorkers: 8, RandomSeed: 42})
	if err != nil {
		return StageResult{}, fmt.Errorf("staged: weekday long-day sub-solve: %w", err)
	}
	if result.Status != cpsat.StatusOptimal && result.Status != cpsat.StatusFeasible {
		return StageResult{Name: StageWeekdayLongDays, Succeeded: false, Unassigned: unmet, Message: "no feasible weekday long-day assignment found"}, nil
	}

	for d, byPerson := range vars {
		for personID, v := range byPerson {
			if result.BooleanValue(v) {
				s.roster.Set(personID, s.H.Days[d], catalogue.LDR)
				s.totals.hours[personID] += catalogue.Hours(catalogue.LDR)
				s.totals.longDays[personID]++
			}
		}
		if loc, ok := locVars[d]; ok && result.BooleanValue(loc) {
			s.roster.SetLocum(s.H.Days[d], model.LocRegLD, 1)
		}
	}

	remaining := 0
	for _, d := range days {
		if !s.dayHasCode(d, catalogue.LDR) {
			remaining++
		}
	}
	return StageResult{
		Name:       StageWeekdayLongDays,
		Succeeded:  remaining == 0,
		Unassigned: remaining,
		Message:    "CP-solved weekday LDR coverage with an integer WTE-fairness band",
	}, nil
}

// openWeekdays returns every weekday horizon index that isn't a bank
// holiday and doesn't already carry code.
func (s *StagedSolver) openWeekdays(code catalogue.Code) []int {
	var out []int
	for d := range s.H.Days {
		if s.H.IsWeekend[d] || s.H.IsBankHoliday[d] {
			continue
		}
		if s.dayHasCode(d, code) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// buildLongDayVars creates one decision var per (day, registrar)
// currently OFF and rest-clear, across the given open days.
func (s *StagedSolver) buildLongDayVars(m *cpsat.Model, days []int) map[int]map[uuid.UUID]cpmodel.BoolVar {
	out := make(map[int]map[uuid.UUID]cpmodel.BoolVar, len(days))
	for _, d := range days {
		out[d] = make(map[uuid.UUID]cpmodel.BoolVar)
		for _, p := range s.In.Persons {
			if p.Grade != catalogue.GradeRegistrar {
				continue
			}
			if s.roster.CodeOn(p.ID, s.H.Days[d]) != catalogue.OFF {
				continue
			}
			if !s.restOK(p, d, d) {
				continue
			}
			out[d][p.ID] = m.BoolVar(fmt.Sprintf("uldr_%s_%d", p.ID, d))
		}
	}
	return out
}

// emitLongDayCoverage requires exactly one LDR per open day (or one
// locum unit), returning the locum variables (for committing back into
// the roster) and the count of days with no eligible candidate.
func (s *StagedSolver) emitLongDayCoverage(m *cpsat.Model, vars map[int]map[uuid.UUID]cpmodel.BoolVar, days []int) (map[int]cpmodel.BoolVar, int) {
	locVars := make(map[int]cpmodel.BoolVar, len(days))
	unmet := 0
	for _, d := range days {
		var lits []cpmodel.BoolVar
		for _, v := range vars[d] {
			lits = append(lits, v)
		}
		loc := m.BoolVar(fmt.Sprintf("uldrloc_%d", d))
		locVars[d] = loc
		all := append(append([]cpmodel.BoolVar{}, lits...), loc)
		m.Equal(cpsat.Sum(all...), cpsat.Constant(1))
		if len(lits) == 0 {
			unmet++
		}
	}
	return locVars, unmet
}

// emitIntegerFairnessBand bounds each pair of registrars' new LDR counts
// within a +-pct band expressed as integer cross-multiplication, to
// avoid floating point in the CP-SAT model, and returns the
// soft-violation indicators to minimise.
func (s *StagedSolver) emitIntegerFairnessBand(m *cpsat.Model, vars map[int]map[uuid.UUID]cpmodel.BoolVar, days []int, pct int64) []*cpmodel.LinearExpr {
	var members []model.Person
	for _, p := range s.In.Persons {
		if p.Grade == catalogue.GradeRegistrar && p.WTE > 0 {
			members = append(members, p)
		}
	}
	bigM := int64(len(days)+1) * 100 * (100 + pct)
	var softTerms []*cpmodel.LinearExpr

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			pi, pj := members[i], members[j]
			wi := int64(pi.WTE * 100)
			wj := int64(pj.WTE * 100)

			// count_i/WTE_i within [1-pct%, 1+pct%] of count_j/WTE_j.
			ei := longDayCountExpr(vars, days, pi.ID, wj*100)
			ejHi := longDayCountExpr(vars, days, pj.ID, wi*(100+pct))
			ejLo := longDayCountExpr(vars, days, pj.ID, wi*(100-pct))

			over := m.BoolVar(fmt.Sprintf("uldrfair_over_%s_%s", pi.ID, pj.ID))
			under := m.BoolVar(fmt.Sprintf("uldrfair_under_%s_%s", pi.ID, pj.ID))

			lhsOver := cpmodel.NewLinearExpr()
			lhsOver.Add(ejHi)
			lhsOver.AddTerm(over, bigM)
			m.GreaterOrEqual(lhsOver, ei)

			lhsUnder := cpmodel.NewLinearExpr()
			lhsUnder.Add(ei)
			lhsUnder.AddTerm(under, bigM)
			m.GreaterOrEqual(lhsUnder, ejLo)

			term := cpmodel.NewLinearExpr()
			term.AddTerm(over, 10)
			term.AddTerm(under, 10)
			softTerms = append(softTerms, term)
		}
	}
	return softTerms
}

func longDayCountExpr(vars map[int]map[uuid.UUID]cpmodel.BoolVar, days []int, person uuid.UUID, coeff int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, d := range days {
		if v, ok := vars[d][person]; ok {
			expr.AddTerm(v, coeff)
		}
	}
	return expr
}
