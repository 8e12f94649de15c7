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

// nightRole pairs the grade eligible for a unit-night code with the
// catalogue code and locum column it fills.
type nightRole struct {
	Grade catalogue.Grade
	Code  catalogue.Code
	Locum model.LocumColumn
}

var nightRoles = []nightRole{
	{catalogue.GradeRegistrar, catalogue.NR, model.LocRegN},
	{catalogue.GradeSHO, catalogue.NS, model.LocSHON},
}

// runNights fills the remaining non-CoMET night roles (NR, NS) with a
// dedicated CP-SAT sub-model: one decision variable per (person, day)
// created only where the person is currently OFF and clear of any
// already-committed night block, maximising 2-4 night blocks over
// singletons (forbidden outright) and lightly penalising WTE-weighted
// imbalance in the resulting night counts.
func (s *StagedSolver) runNights(ctx context.Context, timeout time.Duration) (StageResult, error) {
	if err := ctx.Err(); err != nil {
		return StageResult{}, err
	}

	m := cpsat.NewModel()
	vars := s.buildNightVars(m)

	locVars, unmet := s.emitNightCoverage(m, vars)
	s.emitNightBlockRules(m, vars)

	blockTerm := s.nightBlockBonus(m, vars)
	fairTerm := s.nightFairnessPenalty(m, vars)
	m.MinimizeExpr(cpsat.CombineExprs(blockTerm, fairTerm))

	result, err := m.Solve(cpsat.Params{
		MaxTime:    timeout,
		NumWorkers: 8,
		RandomSeed: 42,
	})
	if err != nil {
		return StageResult{}, fmt.Errorf("staged: nights sub-solve: %w", err)
	}

	if result.Status != cpsat.StatusOptimal && result.Status != cpsat.StatusFeasible {
		return StageResult{
			Name:       StageNights,
			Succeeded:  false,
			Unassigned: unmet,
			Message:    "nights sub-model found no feasible solution; every role left on locum slack",
		}, nil
	}

	s.commitNightResult(vars, locVars, result)
	remaining := s.countUnfilledNightRoles()
	return StageResult{
		Name:       StageNights,
		Succeeded:  remaining == 0,
		Unassigned: remaining,
		Message:    "solved unit-night coverage with a block-shape-weighted CP sub-model",
	}, nil
}

// nightVarSet is the (person, day) -> decision variable map for a single
// role's night code.
type nightVarSet map[uuid.UUID]map[int]cpmodel.BoolVar

// buildNightVars creates one variable per (role, person, day) where the
// person is currently OFF and placing a night there would not break the
// rest gap against anything already committed in an earlier stage.
func (s *StagedSolver) buildNightVars(m *cpsat.Model) map[catalogue.Code]nightVarSet {
	out := make(map[catalogue.Code]nightVarSet, len(nightRoles))
	for _, role := range nightRoles {
		set := make(nightVarSet)
		for _, p := range s.In.Persons {
			if p.Grade != role.Grade {
				continue
			}
			for d := range s.H.Days {
				if s.roster.CodeOn(p.ID, s.H.Days[d]) != catalogue.OFF {
					continue
				}
				if !s.restOK(p, d, d) {
					continue
				}
				if set[p.ID] == nil {
					set[p.ID] = make(map[int]cpmodel.BoolVar)
				}
				set[p.ID][d] = m.BoolVar(fmt.Sprintf("unight_%s_%s_%d", role.Code, p.ID, d))
			}
		}
		out[role.Code] = set
	}
	return out
}

// nightLocVarSet is the (day, role code) -> locum slack variable map.
type nightLocVarSet map[catalogue.Code]map[int]cpmodel.BoolVar

// emitNightCoverage requires exactly one assignment (or one locum unit)
// per role per day, mirroring the hard-constraint library's coverage
// emitter but scoped to this stage's own variable set. Returns the
// locum variables (for committing back into the roster) and the number
// of days that had no eligible candidate at all, left to locum.
func (s *StagedSolver) emitNightCoverage(m *cpsat.Model, vars map[catalogue.Code]nightVarSet) (nightLocVarSet, int) {
	locVars := make(nightLocVarSet, len(nightRoles))
	unmet := 0
	for _, role := range nightRoles {
		locVars[role.Code] = make(map[int]cpmodel.BoolVar, len(s.H.Days))
		set := vars[role.Code]
		for d := range s.H.Days {
			var lits []cpmodel.BoolVar
			for _, byDay := range set {
				if v, ok := byDay[d]; ok {
					lits = append(lits, v)
				}
			}
			loc := m.BoolVar(fmt.Sprintf("unightloc_%s_%d", role.Code, d))
			locVars[role.Code][d] = loc
			all := append(append([]cpmodel.BoolVar{}, lits...), loc)
			m.Equal(cpsat.Sum(all...), cpsat.Constant(1))
			if len(lits) == 0 {
				unmet++
			}
		}
	}
	return locVars, unmet
}

// emitNightBlockRules enforces the same three hard block-shape rules as
// the full model's night-block emitter (no singletons, no 5-consecutive
// run, 5 clear days between blocks), evaluated per person across both
// of their role's variables combined: a person only ever has variables
// under one role, so the per-role loop is equivalent to a per-person one.
func (s *StagedSolver) emitNightBlockRules(m *cpsat.Model, vars map[catalogue.Code]nightVarSet) {
	for _, role := range nightRoles {
		for _, p := range s.In.Persons {
			byDay, ok := vars[role.Code][p.ID]
			if !ok {
				continue
			}
			flags := make([]cpmodel.BoolVar, len(s.H.Days))
			has := make([]bool, len(s.H.Days))
			for d, v := range byDay {
				flags[d], has[d] = v, true
			}

			for d := 1; d < len(s.H.Days)-1; d++ {
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
				m.LessOrEqual(cpsat.Sum(flags[d]), neighbours)
			}

			for start := 0; start+5 <= len(s.H.Days); start++ {
				expr := cpmodel.NewLinearExpr()
				any := false
				for d := start; d < start+5; d++ {
					if has[d] {
						expr.Add(flags[d])
						any = true
					}
				}
				if any {
					m.LessOrEqual(expr, cpsat.Constant(4))
				}
			}

			for d := 0; d+8 < len(s.H.Days); d++ {
				for i := d; i <= d+3; i++ {
					if !has[i] {
						continue
					}
					for j := d + 4; j <= d+8; j++ {
						if !has[j] {
							continue
						}
						m.LessOrEqual(cpsat.Sum(flags[i], flags[j]), cpsat.Constant(1))
					}
				}
			}
		}
	}
}

// nightBlockBonus rewards adjacent-pair and adjacent-triple placements
// so the minimised objective favours 3-4 night runs over bare 2-night
// ones (singletons are already forbidden outright by the hard rules).
func (s *StagedSolver) nightBlockBonus(m *cpsat.Model, vars map[catalogue.Code]nightVarSet) *cpmodel.LinearExpr {
	total := cpmodel.NewLinearExpr()
	for _, role := range nightRoles {
		for personID, byDay := range vars[role.Code] {
			for d := range s.H.Days {
				cur, ok := byDay[d]
				if !ok {
					continue
				}
				next, hasNext := byDay[d+1]
				if hasNext {
					pair := m.BoolVar(fmt.Sprintf("unightpair_%s_%s_%d", role.Code, personID, d))
					m.LessOrEqual(cpsat.Sum(pair), cpsat.Sum(cur))
					m.LessOrEqual(cpsat.Sum(pair), cpsat.Sum(next))
					total.AddTerm(pair, -150)

					next2, hasNext2 := byDay[d+2]
					if hasNext2 {
						triple := m.BoolVar(fmt.Sprintf("unighttriple_%s_%s_%d", role.Code, personID, d))
						m.LessOrEqual(cpsat.Sum(triple), cpsat.Sum(cur))
						m.LessOrEqual(cpsat.Sum(triple), cpsat.Sum(next))
						m.LessOrEqual(cpsat.Sum(triple), cpsat.Sum(next2))
						total.AddTerm(triple, -250)
					}
				}
			}
		}
	}
	return total
}

// nightFairnessPenalty cross-multiplies each same-role pair's new night
// counts by the other's integer WTE percentage, the same big-M pairwise
// encoding the global solver's nights-only pass uses, weighted well
// below the block-shape bonus so shape dominates fairness here.
func (s *StagedSolver) nightFairnessPenalty(m *cpsat.Model, vars map[catalogue.Code]nightVarSet) *cpmodel.LinearExpr {
	total := cpmodel.NewLinearExpr()
	bigM := int64(len(s.H.Days)+1) * 100

	for _, role := range nightRoles {
		var members []model.Person
		for _, p := range s.In.Persons {
			if p.Grade == role.Grade && p.WTE > 0 {
				members = append(members, p)
			}
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pi, pj := members[i], members[j]
				wi := int64(pi.WTE * 100)
				wj := int64(pj.WTE * 100)

				ei := weightedNightCount(vars[role.Code][pi.ID], wj)
				ej := weightedNightCount(vars[role.Code][pj.ID], wi)

				over := m.BoolVar(fmt.Sprintf("unightfair_over_%s_%s", pi.ID, pj.ID))
				under := m.BoolVar(fmt.Sprintf("unightfair_under_%s_%s", pi.ID, pj.ID))

				lhsOver := cpmodel.NewLinearExpr()
				lhsOver.Add(ei)
				lhsOver.AddTerm(over, bigM)
				m.GreaterOrEqual(lhsOver, ej)

				lhsUnder := cpmodel.NewLinearExpr()
				lhsUnder.Add(ej)
				lhsUnder.AddTerm(under, bigM)
				m.GreaterOrEqual(lhsUnder, ei)

				total.AddTerm(over, 5)
				total.AddTerm(under, 5)
			}
		}
	}
	return total
}

func weightedNightCount(byDay map[int]cpmodel.BoolVar, coeff int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, v := range byDay {
		expr.AddTerm(v, coeff)
	}
	return expr
}

// commitNightResult writes every true night variable and locum unit
// back into the shared partial roster and running totals.
func (s *StagedSolver) commitNightResult(vars map[catalogue.Code]nightVarSet, locVars nightLocVarSet, result cpsat.Result) {
	for _, role := range nightRoles {
		for personID, byDay := range vars[role.Code] {
			for d, v := range byDay {
				if !result.BooleanValue(v) {
					continue
				}
				s.roster.Set(personID, s.H.Days[d], role.Code)
				s.totals.nights[personID]++
				s.totals.hours[personID] += catalogue.Hours(role.Code)
			}
		}
		for d, loc := range locVars[role.Code] {
			if result.BooleanValue(loc) {
				s.roster.SetLocum(s.H.Days[d], role.Locum, 1)
			}
		}
	}
}

// countUnfilledNightRoles reports how many (day, role) slots still have
// neither a real assignment nor a recorded locum unit after the commit.
func (s *StagedSolver) countUnfilledNightRoles() int {
	unfilled := 0
	for _, role := range nightRoles {
		for d := range s.H.Days {
			covered := false
			for _, p := range s.In.Persons {
				if p.Grade != role.Grade {
					continue
				}
				if s.roster.CodeOn(p.ID, s.H.Days[d]) == role.Code {
					covered = true
					break
				}
			}
			if !covered && s.roster.Days[d].LocumCounts[role.Locum] == 0 {
				unfilled++
			}
		}
	}
	return unfilled
}
