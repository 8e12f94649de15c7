// Package roster is the façade tying the catalogue, horizon, constraint,
// objective, and solver packages together into one inbound-problem to
// outbound-report pipeline. It also defines the interface boundary for
// the explicitly out-of-scope collaborators (persistence, rendering) so
// a caller can supply its own implementation without this repo needing
// to know about a database or a transport.
package roster

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/model"
	"github.com/picu-roster/engine/pkg/report"
	"github.com/picu-roster/engine/pkg/solver/global"
	"github.com/picu-roster/engine/pkg/solver/staged"
	"github.com/picu-roster/engine/pkg/validator"
)

// ProblemSource stands in for persistent storage of people/preassignment
// data (out of scope for this repo). Callers needing a database or file
// loader implement this themselves; MemoryStore is the reference
// implementation used by this package's own tests.
type ProblemSource interface {
	Load(ctx context.Context, jobID uuid.UUID) (model.ProblemInput, error)
}

// RosterSink stands in for persistent storage of a solved roster/job
// state (out of scope for this repo).
type RosterSink interface {
	Save(ctx context.Context, jobID uuid.UUID, r model.Roster) error
}

// ReportRenderer stands in for Excel/HTML rendering (out of scope);
// report.TerminalRenderer is the only implementation this repo ships.
type ReportRenderer interface {
	Render(w io.Writer, r model.Roster, b report.BreachReport, s report.Summary) error
}

// Strategy selects which solver drives a Solve call.
type Strategy string

const (
	// StrategyGlobal runs the nights-only-then-full two-pass CP solve.
	StrategyGlobal Strategy = "global"
	// StrategyStaged runs the six-stage greedy+CP decomposition.
	StrategyStaged Strategy = "staged"
)

// Params configures a Solve call, covering both solver strategies so a
// caller doesn't need to branch on Strategy itself.
type Params struct {
	Strategy Strategy

	Global global.Params

	StagedTimeout    time.Duration
	StagedController staged.StagedController
}

// DefaultParams returns global-strategy parameters with conservative
// default timeouts suitable for a full six-month horizon.
func DefaultParams() Params {
	return Params{
		Strategy: StrategyGlobal,
		Global: global.Params{
			NightsOnlyTimeout: 60 * time.Second,
			FullTimeout:       300 * time.Second,
			NumSearchWorkers:  8,
			RandomSeed:        42,
		},
		StagedTimeout: 120 * time.Second,
	}
}

// Outcome is a solved roster plus the validation and summary passes a
// caller actually wants to inspect it with.
type Outcome struct {
	Roster   model.Roster
	Status   string
	Reason   string
	Breaches report.BreachReport
	Summary  report.Summary
}

// Solve validates the inbound problem, runs the selected solver strategy,
// and attaches an independent validation pass plus summary statistics.
// A non-nil error is a category-1 (invalid input) failure or an error
// the chosen solver returned (a cancelled context, a controller abort, a
// model build or solve failure); an infeasible or locum-heavy solve
// still returns a populated Outcome with its Status/Reason/Breaches
// describing the shortfall.
func Solve(ctx context.Context, in model.ProblemInput, p Params) (Outcome, error) {
	if err := ValidateInput(in); err != nil {
		return Outcome{}, err
	}

	var (
		solved model.Roster
		status string
		reason string
	)

	switch p.Strategy {
	case StrategyStaged:
		s := staged.New(in)
		controller := p.StagedController
		if controller == nil {
			controller = staged.AlwaysContinue{}
		}
		results, err := s.SolveWithCheckpoints(ctx, p.StagedTimeout, controller)
		if err != nil {
			return Outcome{}, err
		}
		solved = s.CurrentRoster()
		status, reason = stagedStatus(results)
	default:
		res, err := global.Solve(ctx, in, p.Global)
		if err != nil {
			return Outcome{}, err
		}
		solved = res.Roster
		status = string(res.Status)
		reason = res.Reason
	}

	h := horizon.Build(in.Config, in.Persons)
	vr := validator.ValidateAll(h, in, solved)
	summary := report.Build(h, in, solved)

	return Outcome{
		Roster:   solved,
		Status:   status,
		Reason:   reason,
		Breaches: report.FromValidation(vr),
		Summary:  summary,
	}, nil
}

// stagedStatus derives an overall status string from the staged solver's
// per-stage results: complete if every stage fully assigned its targets,
// partial (with the first failing stage named) otherwise.
func stagedStatus(results []staged.StageResult) (status, reason string) {
	for _, r := range results {
		if !r.Succeeded {
			return "partial", fmt.Sprintf("stage %q left %d slot(s) unassigned: %s", r.Name, r.Unassigned, r.Message)
		}
	}
	return "complete", ""
}
