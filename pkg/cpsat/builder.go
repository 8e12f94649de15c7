// Package cpsat wraps github.com/google/or-tools/ortools/sat/go/cpmodel
// with the subset of the CP-SAT API the roster engine needs: bool/day
// variables keyed by (person, day, code), linear sums over them, and a
// single Solve entry point that returns a typed result instead of a raw
// protobuf response. Every constraint and objective package builds on
// top of this one rather than touching cpmodel directly.
package cpsat

import (
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
)

// Model owns the underlying CpModelBuilder plus the variable registry the
// constraint and objective packages read back from.
type Model struct {
	cp *cpmodel.CpModelBuilder

	vars  map[string]cpmodel.BoolVar
	order []string
}

// NewModel starts a fresh, empty CP-SAT model.
func NewModel() *Model {
	return &Model{
		cp:   cpmodel.NewCpModelBuilder(),
		vars: make(map[string]cpmodel.BoolVar),
	}
}

// BoolVar creates (or returns, if already created) a named boolean
// decision variable. Names must be unique within a model; constraint
// emitters build them from (person, day, code) triples so collisions
// indicate a bug in the caller, not a normal occurrence.
func (m *Model) BoolVar(name string) cpmodel.BoolVar {
	if v, ok := m.vars[name]; ok {
		return v
	}
	v := m.cp.NewBoolVar().WithName(name)
	m.vars[name] = v
	m.order = append(m.order, name)
	return v
}

// Var looks up a previously created variable by name. It panics if the
// name is unknown: callers build variables before referencing them, so
// a miss means the constraint graph was assembled out of order.
func (m *Model) Var(name string) cpmodel.BoolVar {
	v, ok := m.vars[name]
	if !ok {
		panic(fmt.Sprintf("cpsat: unknown variable %q", name))
	}
	return v
}

// Has reports whether a variable with this name has been created.
func (m *Model) Has(name string) bool {
	_, ok := m.vars[name]
	return ok
}

// ExactlyOne constrains exactly one of the given literals to be true.
func (m *Model) ExactlyOne(lits ...cpmodel.BoolVar) {
	if len(lits) == 0 {
		return
	}
	m.cp.AddExactlyOne(lits...)
}

// AtMostOne constrains at most one of the given literals to be true.
func (m *Model) AtMostOne(lits ...cpmodel.BoolVar) {
	if len(lits) == 0 {
		return
	}
	m.cp.AddAtMostOne(lits...)
}

// Sum builds a linear expression over boolean literals, one term per
// literal with coefficient 1. Use WeightedSum for non-unit coefficients.
func Sum(lits ...cpmodel.BoolVar) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, l := range lits {
		expr.Add(l)
	}
	return expr
}

// WeightedSum builds sum(coeffs[i] * lits[i]). len(lits) must equal
// len(coeffs).
func WeightedSum(lits []cpmodel.BoolVar, coeffs []int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for i, l := range lits {
		expr.AddTerm(l, coeffs[i])
	}
	return expr
}

// Equal constrains left == right.
func (m *Model) Equal(left, right cpmodel.LinearArgument) {
	m.cp.AddEquality(left, right)
}

// LessOrEqual constrains left <= right.
func (m *Model) LessOrEqual(left, right cpmodel.LinearArgument) {
	m.cp.AddLessOrEqual(left, right)
}

// GreaterOrEqual constrains left >= right.
func (m *Model) GreaterOrEqual(left, right cpmodel.LinearArgument) {
	m.cp.AddGreaterOrEqual(left, right)
}

// Constant wraps an int64 literal for use in linear expressions.
func Constant(v int64) cpmodel.LinearArgument {
	return cpmodel.NewConstant(v)
}

// FixTrue forces a variable to true, used to lock nights-pass results
// before the full-objective pass in the two-pass global solver.
func (m *Model) FixTrue(v cpmodel.BoolVar) {
	m.cp.AddEquality(v, cpmodel.NewConstant(1))
}

// FixFalse forces a variable to false.
func (m *Model) FixFalse(v cpmodel.BoolVar) {
	m.cp.AddEquality(v, cpmodel.NewConstant(0))
}

// CombineExprs sums several pre-weighted linear expressions into one.
// The objective shaper builds one WeightedSum per tier (tier weight
// baked into the coefficients) and combines them here before minimizing,
// so tier dominance falls out of the coefficient magnitudes alone.
func CombineExprs(exprs ...*cpmodel.LinearExpr) *cpmodel.LinearExpr {
	total := cpmodel.NewLinearExpr()
	for _, e := range exprs {
		total.Add(e)
	}
	return total
}

// MinimizeExpr sets the model's objective to expr, typically the result
// of CombineExprs over every tier's weighted penalty sum.
func (m *Model) MinimizeExpr(expr *cpmodel.LinearExpr) {
	m.cp.Minimize(expr)
}

// Params controls the underlying CP-SAT search.
type Params struct {
	MaxTime      time.Duration
	NumWorkers   int
	RandomSeed   int64
	RelativeGap  float64
	EnableLogger bool
}

// Status mirrors the subset of cpmodel.CpSolverStatus values callers
// branch on, decoupling the rest of the engine from the protobuf enum.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
)

// Result is the typed outcome of a solve: status, objective value, and
// the builder needed to read back variable assignments.
type Result struct {
	Status    Status
	Objective float64
	response  *cpmodel.CpSolverResponse
}

// BooleanValue reads the solved value of a boolean variable out of a
// solve result. Call only when Status is Optimal or Feasible.
func (r Result) BooleanValue(v cpmodel.BoolVar) bool {
	return cpmodel.SolutionBooleanValue(r.response, v)
}

// Solve builds the CP-SAT proto model and runs the solver with the given
// search parameters. A zero-value Params falls back to CP-SAT's own
// defaults for workers, seed and time limit.
func (m *Model) Solve(p Params) (Result, error) {
	proto, err := m.cp.Model()
	if err != nil {
		return Result{}, fmt.Errorf("cpsat: failed to instantiate model: %w", err)
	}

	params := &sppb.SatParameters{}
	if p.MaxTime > 0 {
		seconds := p.MaxTime.Seconds()
		params.MaxTimeInSeconds = &seconds
	}
	if p.NumWorkers > 0 {
		workers := int32(p.NumWorkers)
		params.NumSearchWorkers = &workers
	}
	if p.RandomSeed != 0 {
		seed := int32(p.RandomSeed)
		params.RandomSeed = &seed
	}
	if p.RelativeGap > 0 {
		params.RelativeGapLimit = &p.RelativeGap
	}
	params.LogSearchProgress = &p.EnableLogger

	response, err := cpmodel.SolveCpModelWithParameters(proto, params)
	if err != nil {
		return Result{}, fmt.Errorf("cpsat: solve failed: %w", err)
	}

	return Result{
		Status:    statusOf(response),
		Objective: response.GetObjectiveValue(),
		response:  response,
	}, nil
}

func statusOf(response *cpmodel.CpSolverResponse) Status {
	switch response.GetStatus().String() {
	case "OPTIMAL":
		return StatusOptimal
	case "FEASIBLE":
		return StatusFeasible
	case "INFEASIBLE":
		return StatusInfeasible
	case "MODEL_INVALID":
		return StatusModelInvalid
	default:
		return StatusUnknown
	}
}

// Hint suggests a starting value for v without constraining the model,
// used by the global solver's second pass to seed the search from the
// nights-only warm solve's assignments.
func (m *Model) Hint(v cpmodel.BoolVar, value bool) {
	m.cp.AddHint(v, value)
}

// Names returns every variable name registered on this model, in
// creation order.
func (m *Model) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
