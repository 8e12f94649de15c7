// Package global implements a two-pass CP solver: a nights-only warm
// solve whose fixed assignments seed and bias a second, full-objective
// solve.
package global

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/constraint"
	"github.com/picu-roster/engine/pkg/cpsat"
	"github.com/picu-roster/engine/pkg/errors"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/logger"
	"github.com/picu-roster/engine/pkg/model"
	"github.com/picu-roster/engine/pkg/objective"
)

// Status describes how a two-pass solve concluded, distinguishing a
// normal result from the diagnostic locum-only fallback.
type Status string

const (
	StatusOptimal             Status = "optimal"
	StatusFeasible            Status = "feasible"
	StatusTimedOut            Status = "timed_out"
	StatusInfeasibleLocumOnly Status = "infeasible_locum_only"
)

// Result is the outcome of Solve: the roster plus enough metadata for a
// caller to decide whether to trust it outright or flag it for review.
type Result struct {
	Roster  model.Roster
	Status  Status
	Reason  string // populated only for StatusInfeasibleLocumOnly and StatusTimedOut
}

// fixedTriple is one (person, day, night-code) the nights-only pass
// pinned to true, to be locked and hinted in the full pass.
type fixedTriple struct {
	Person uuid.UUID
	Day    int
	Code   catalogue.Code
}

// Params carries the two passes' resource bounds.
type Params struct {
	NightsOnlyTimeout time.Duration
	FullTimeout       time.Duration
	NumSearchWorkers  int
	RandomSeed        int64
}

// Solve runs the nights-only warm pass followed by the full-objective
// pass, locking pass 1's fixed night assignments into pass 2.
func Solve(ctx context.Context, in model.ProblemInput, p Params) (Result, error) {
	h := horizon.Build(in.Config, in.Persons)
	log := logger.NewSolverLogger()
	log.StartSolve("global", len(in.Persons), h.NumDays())

	fixed, err := solveNightsOnly(h, in, p, log)
	if err != nil {
		return Result{}, fmt.Errorf("global: nights-only pass: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("global: cancelled between passes: %w", err)
	}

	return solveFull(h, in, p, fixed, log)
}

// solveNightsOnly builds the full constraint set (coverage for every
// role still holds; day and short-day variables simply go unrewarded)
// but shapes the objective purely around night locums, singleton
// blocks, and night-equivalent fairness.
func solveNightsOnly(h horizon.Index, in model.ProblemInput, p Params, log *logger.SolverLogger) ([]fixedTriple, error) {
	start := time.Now()
	m := cpsat.NewModel()
	lib := constraint.NewLibrary(m, h, in)
	if err := lib.Build(); err != nil {
		return nil, err
	}

	attachNightsOnlyObjective(lib)

	result, err := m.Solve(cpsat.Params{
		MaxTime:    p.NightsOnlyTimeout,
		NumWorkers: p.NumSearchWorkers,
		RandomSeed: p.RandomSeed,
	})
	if err != nil {
		return nil, err
	}
	log.PassComplete("nights_only", time.Since(start), statusName(result.Status), result.Objective)
	if result.Status != cpsat.StatusOptimal && result.Status != cpsat.StatusFeasible {
		// No usable night shape; pass 2 runs unconstrained by F.
		return nil, nil
	}

	var fixed []fixedTriple
	for _, p := range in.Persons {
		for d := range h.Days {
			for _, code := range catalogue.NightCodes() {
				if !lib.HasVar(p.ID, d, code) {
					continue
				}
				if result.BooleanValue(m.Var(constraint.AssignName(p.ID, d, code))) {
					fixed = append(fixed, fixedTriple{Person: p.ID, Day: d, Code: code})
				}
			}
		}
	}
	return fixed, nil
}

// attachNightsOnlyObjective minimises night locum usage, isolated
// one-night blocks, and the WTE-weighted spread of night-equivalent
// counts, suppressing every other tier of the full objective.
func attachNightsOnlyObjective(lib *constraint.Library) {
	terms := []*cpmodel.LinearExpr{
		nightLocumTerm(lib),
		singletonNightTerm(lib),
		nightFairnessVarianceTerm(lib),
	}
	lib.M.MinimizeExpr(cpsat.CombineExprs(terms...))
}

func nightLocumTerm(lib *constraint.Library) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for d := range lib.H.Days {
		for _, col := range []model.LocumColumn{model.LocRegN, model.LocSHON, model.LocRegCMN} {
			for _, v := range lib.LocumUnitVars(d, col) {
				expr.AddTerm(v, 1000)
			}
		}
	}
	return expr
}

func singletonNightTerm(lib *constraint.Library) *cpmodel.LinearExpr {
	total := cpmodel.NewLinearExpr()
	for _, p := range lib.In.Persons {
		for d := range lib.H.Days {
			cur, ok := nightFlag(lib, p.ID, d)
			if !ok {
				continue
			}
			prev, hasPrev := nightFlag(lib, p.ID, d-1)
			next, hasNext := nightFlag(lib, p.ID, d+1)

			forced := cpmodel.NewLinearExpr()
			forced.AddTerm(cur, 1)
			if hasPrev {
				forced.AddTerm(prev, -1)
			}
			if hasNext {
				forced.AddTerm(next, -1)
			}

			singleton := lib.M.BoolVar(fmt.Sprintf("globalsingleton_%s_%d", p.ID, d))
			lhs := cpmodel.NewLinearExpr()
			lhs.AddTerm(singleton, 1)
			lib.M.GreaterOrEqual(lhs, forced)

			total.AddTerm(singleton, 300)
		}
	}
	return total
}

func nightFlag(lib *constraint.Library, person uuid.UUID, d int) (cpmodel.BoolVar, bool) {
	if d < 0 || d >= len(lib.H.Days) {
		return cpmodel.BoolVar{}, false
	}
	name := fmt.Sprintf("night_%s_%d", person, d)
	if !lib.M.Has(name) {
		return cpmodel.BoolVar{}, false
	}
	return lib.M.Var(name), true
}

// nightFairnessVarianceTerm cross-multiplies each same-grade pair's
// night-equivalent totals by the other's integer WTE percentage,
// mirroring the full objective's tier 9 pairwise fairness encoding but
// scoped to night codes alone.
func nightFairnessVarianceTerm(lib *constraint.Library) *cpmodel.LinearExpr {
	total := cpmodel.NewLinearExpr()
	byGrade := map[catalogue.Grade][]model.Person{}
	for _, p := range lib.In.Persons {
		if p.WTE <= 0 {
			continue
		}
		byGrade[p.Grade] = append(byGrade[p.Grade], p)
	}
	bigM := int64(len(lib.H.Days)+1) * 100

	for _, members := range byGrade {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pi, pj := members[i], members[j]
				wi := int64(pi.WTE * 100)
				wj := int64(pj.WTE * 100)

				ei := nightEquivalentExpr(lib, pi, wj)
				ej := nightEquivalentExpr(lib, pj, wi)

				over := lib.M.BoolVar(fmt.Sprintf("globalnightfair_over_%s_%s", pi.ID, pj.ID))
				under := lib.M.BoolVar(fmt.Sprintf("globalnightfair_under_%s_%s", pi.ID, pj.ID))

				lhsOver := cpmodel.NewLinearExpr()
				lhsOver.Add(ei)
				lhsOver.AddTerm(over, bigM)
				lib.M.GreaterOrEqual(lhsOver, ej)

				lhsUnder := cpmodel.NewLinearExpr()
				lhsUnder.Add(ej)
				lhsUnder.AddTerm(under, bigM)
				lib.M.GreaterOrEqual(lhsUnder, ei)

				total.AddTerm(over, 2)
				total.AddTerm(under, 2)
			}
		}
	}
	return total
}

func nightEquivalentExpr(lib *constraint.Library, p model.Person, coeff int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for d := range lib.H.Days {
		for _, code := range catalogue.NightCodes() {
			if lib.HasVar(p.ID, d, code) {
				expr.AddTerm(lib.M.Var(constraint.AssignName(p.ID, d, code)), coeff)
			}
		}
	}
	return expr
}

// solveFull builds a fresh library with every hard constraint and the
// full twelve-tier objective, locks fixed into place, hints the search
// from it, and solves.
func solveFull(h horizon.Index, in model.ProblemInput, p Params, fixed []fixedTriple, log *logger.SolverLogger) (Result, error) {
	start := time.Now()
	m := cpsat.NewModel()
	lib := constraint.NewLibrary(m, h, in)
	if err := lib.Build(); err != nil {
		return Result{}, err
	}

	objective.NewShaper(lib, h, in).Attach()

	lockFixed(lib, fixed)

	result, err := m.Solve(cpsat.Params{
		MaxTime:    p.FullTimeout,
		NumWorkers: p.NumSearchWorkers,
		RandomSeed: p.RandomSeed,
	})
	if err != nil {
		return Result{}, err
	}
	log.PassComplete("full_objective", time.Since(start), statusName(result.Status), result.Objective)

	switch result.Status {
	case cpsat.StatusOptimal, cpsat.StatusFeasible:
		roster := extractRoster(h, in, lib, m, result)
		status := StatusOptimal
		if result.Status == cpsat.StatusFeasible {
			status = StatusFeasible
		}
		return Result{Roster: roster, Status: status}, nil
	case cpsat.StatusInfeasible:
		res := locumOnlyFallback(h, in)
		log.LocumFallback(res.Reason)
		return res, nil
	case cpsat.StatusUnknown:
		res := locumOnlyFallback(h, in)
		res.Status = StatusTimedOut
		res.Reason = errors.New(errors.CodeTimeout, "full-objective pass timed out before finding or ruling out a feasible solution").Error()
		log.LocumFallback(res.Reason)
		return res, nil
	default:
		res := locumOnlyFallback(h, in)
		log.LocumFallback(res.Reason)
		return res, nil
	}
}

// statusName renders a cpsat.Status for logging.
func statusName(s cpsat.Status) string {
	switch s {
	case cpsat.StatusOptimal:
		return "optimal"
	case cpsat.StatusFeasible:
		return "feasible"
	case cpsat.StatusInfeasible:
		return "infeasible"
	case cpsat.StatusModelInvalid:
		return "model_invalid"
	default:
		return "unknown"
	}
}

// lockFixed equalities-lock every pass-1 fixed triple to true, zeroes
// its {NR, CMN} sibling, and hints the solver toward the pass-1 shape.
func lockFixed(lib *constraint.Library, fixed []fixedTriple) {
	for _, f := range fixed {
		if !lib.HasVar(f.Person, f.Day, f.Code) {
			continue
		}
		v := lib.M.Var(constraint.AssignName(f.Person, f.Day, f.Code))
		lib.M.FixTrue(v)
		lib.M.Hint(v, true)

		sibling := siblingNightCode(f.Code)
		if sibling != "" && lib.HasVar(f.Person, f.Day, sibling) {
			lib.M.FixFalse(lib.M.Var(constraint.AssignName(f.Person, f.Day, sibling)))
		}
	}
}

func siblingNightCode(code catalogue.Code) catalogue.Code {
	switch code {
	case catalogue.NR:
		return catalogue.CMN
	case catalogue.CMN:
		return catalogue.NR
	}
	return ""
}

// extractRoster reads every person/day/code assignment and locum count
// out of a solved model into a model.Roster.
func extractRoster(h horizon.Index, in model.ProblemInput, lib *constraint.Library, m *cpsat.Model, result cpsat.Result) model.Roster {
	roster := model.NewRoster(h.Days, in.Persons)
	for _, p := range in.Persons {
		for d := range h.Days {
			for _, e := range catalogue.All() {
				if e.Code == catalogue.LOC {
					continue
				}
				if !lib.HasVar(p.ID, d, e.Code) {
					continue
				}
				if result.BooleanValue(m.Var(constraint.AssignName(p.ID, d, e.Code))) {
					roster.Set(p.ID, h.Days[d], e.Code)
				}
			}
		}
	}
	for d := range h.Days {
		for _, col := range model.AllLocumColumns() {
			n := 0
			for _, v := range lib.LocumUnitVars(d, col) {
				if result.BooleanValue(v) {
					n++
				}
			}
			roster.SetLocum(h.Days[d], col, n)
		}
	}
	return roster
}

// locumOnlyFallback emits every mandatory-cover role as pure locum
// slack, a diagnostic roster returned when pass 2 finds no feasible
// solution at all.
func locumOnlyFallback(h horizon.Index, in model.ProblemInput) Result {
	roster := model.NewRoster(h.Days, in.Persons)
	for d := range h.Days {
		for _, role := range catalogue.MandatoryCoverCodes() {
			if (role == catalogue.CMD || role == catalogue.CMN) && !h.IsCometWeek[d] {
				continue
			}
			col := locumColumnFor(role)
			if col != "" {
				roster.SetLocum(h.Days[d], col, 1)
			}
		}
	}
	reason := errors.NoFeasibleSolution("pass 2 found no feasible solution even with locum slack; every mandatory role filled by locum").Error()
	return Result{Roster: roster, Status: StatusInfeasibleLocumOnly, Reason: reason}
}

func locumColumnFor(role catalogue.Code) model.LocumColumn {
	switch role {
	case catalogue.LDR:
		return model.LocRegLD
	case catalogue.LDS:
		return model.LocSHOLD
	case catalogue.NR:
		return model.LocRegN
	case catalogue.NS:
		return model.LocSHON
	case catalogue.CMD:
		return model.LocRegCMD
	case catalogue.CMN:
		return model.LocRegCMN
	}
	return ""
}
