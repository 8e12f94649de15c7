// Package staged implements a six-stage decomposed solver: CoMET
// nights, unit nights, bank-holiday fill, CoMET days, weekday
// long days, and short days, each stage committing into a shared
// partial roster before the next runs.
package staged

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/logger"
	"github.com/picu-roster/engine/pkg/model"
)

// defaultStageTimeout bounds each staged CP-SAT sub-solve when a caller
// doesn't supply one explicitly.
const defaultStageTimeout = 120 * time.Second

// StageName is one of the six stable stage identifiers.
type StageName string

const (
	StageCometNights    StageName = "comet_nights"
	StageNights         StageName = "nights"
	StageWeekendHolidays StageName = "weekend_holidays"
	StageCometDays      StageName = "comet_days"
	StageWeekdayLongDays StageName = "weekday_long_days"
	StageShortDays      StageName = "short_days"
)

// Order is the fixed stage sequence; a stage never rewrites an earlier
// stage's commitments.
func Order() []StageName {
	return []StageName{
		StageCometNights,
		StageNights,
		StageWeekendHolidays,
		StageCometDays,
		StageWeekdayLongDays,
		StageShortDays,
	}
}

// Decision is the controller's verdict after inspecting a StageResult.
type Decision int

const (
	Continue Decision = iota
	Pause
	Abort
)

// StageResult is what a completed stage reports to the checkpoint
// controller: its name, whether it fully assigned its targets, and any
// unassigned slots it had to give up on.
type StageResult struct {
	Name       StageName
	Succeeded  bool
	Unassigned int
	Message    string
}

// StagedController inspects each stage's result and decides whether the
// solve continues, pauses for later resumption, or aborts outright.
type StagedController interface {
	Decide(result StageResult) Decision
}

// AlwaysContinue is the default controller for non-interactive use: it
// never pauses or aborts regardless of stage outcome.
type AlwaysContinue struct{}

func (AlwaysContinue) Decide(StageResult) Decision { return Continue }

// runningTotals tracks each person's running counts across stages, the
// shared state every stage's fairness heuristics read and update.
type runningTotals struct {
	hours    map[uuid.UUID]float64
	nights   map[uuid.UUID]int
	longDays map[uuid.UUID]int
	shortDays map[uuid.UUID]int
}

func newRunningTotals(persons []model.Person) *runningTotals {
	rt := &runningTotals{
		hours:    make(map[uuid.UUID]float64, len(persons)),
		nights:   make(map[uuid.UUID]int, len(persons)),
		longDays: make(map[uuid.UUID]int, len(persons)),
		shortDays: make(map[uuid.UUID]int, len(persons)),
	}
	for _, p := range persons {
		rt.hours[p.ID] = 0
		rt.nights[p.ID] = 0
		rt.longDays[p.ID] = 0
		rt.shortDays[p.ID] = 0
	}
	return rt
}

// StagedSolver owns the partial roster and running totals for one
// solve, single-threaded at the orchestration layer (each stage's own
// CP-SAT sub-solve may still use multiple search workers internally).
type StagedSolver struct {
	H   horizon.Index
	In  model.ProblemInput
	log *logger.SolverLogger

	roster  model.Roster
	totals  *runningTotals
	results map[StageName]StageResult
}

// New creates a staged solver over a fresh, fully-OFF partial roster with
// every hard preassignment (absence codes) seeded in before any stage
// runs, so later stages see those slots as already taken rather than
// available. Soft (working-code) preassignments are a full-solver-only
// concern (constraint.EmitPreassignments): the staged decomposition has
// no bookkeeping for a penalised "did we honour it" signal, so they are
// left for the candidate-selection heuristics to stumble onto, not
// forced.
func New(in model.ProblemInput) *StagedSolver {
	h := horizon.Build(in.Config, in.Persons)
	roster := model.NewRoster(h.Days, in.Persons)
	for _, pa := range in.Preassignments {
		if !pa.IsHard() {
			continue
		}
		d := h.DayOf(pa.Date)
		if d < 0 {
			continue
		}
		roster.Set(pa.PersonID, h.Days[d], pa.Code)
	}
	return &StagedSolver{
		H:       h,
		In:      in,
		log:     logger.NewSolverLogger(),
		roster:  roster,
		totals:  newRunningTotals(in.Persons),
		results: make(map[StageName]StageResult),
	}
}

// CurrentRoster returns the partial roster built so far.
func (s *StagedSolver) CurrentRoster() model.Roster {
	return s.roster
}

// CheckHardConstraints re-validates the partial roster built so far
// against rest-after-nights: the two days after every night block's end
// must be OFF or LTFT. Block shape is not checked here.
func (s *StagedSolver) CheckHardConstraints() error {
	for _, p := range s.In.Persons {
		timeline := s.roster.PersonTimeline(p.ID)
		for d := 0; d < len(timeline); d++ {
			if !catalogue.IsNight(timeline[d]) {
				continue
			}
			isEnd := d == len(timeline)-1 || !catalogue.IsNight(timeline[d+1])
			if !isEnd {
				continue
			}
			for offset := 1; offset <= 2 && d+offset < len(timeline); offset++ {
				c := timeline[d+offset]
				if c != catalogue.OFF && c != catalogue.LTFT {
					details := fmt.Sprintf("person %s has %s %d day(s) after a night block end, want OFF/LTFT", p.ID, c, offset)
					s.log.ConstraintViolation("rest_after_nights", details)
					return fmt.Errorf("staged: %s", details)
				}
			}
		}
	}
	return nil
}

// SolveStage runs exactly one named stage against the current partial
// roster and records its result. A zero timeout falls back to
// defaultStageTimeout.
func (s *StagedSolver) SolveStage(ctx context.Context, name StageName, timeout time.Duration) (StageResult, error) {
	if err := ctx.Err(); err != nil {
		return StageResult{}, err
	}
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}

	s.log.StageStarted(string(name), len(s.In.Persons), len(s.H.Days))
	start := time.Now()

	var result StageResult
	var err error
	switch name {
	case StageCometNights:
		result, err = s.runCometNights(ctx)
	case StageNights:
		result, err = s.runNights(ctx, timeout)
	case StageWeekendHolidays:
		result, err = s.runWeekendHolidays(ctx)
	case StageCometDays:
		result, err = s.runCometDays(ctx)
	case StageWeekdayLongDays:
		result, err = s.runWeekdayLongDays(ctx, timeout)
	case StageShortDays:
		result, err = s.runShortDays(ctx)
	default:
		return StageResult{}, fmt.Errorf("staged: unknown stage %q", name)
	}
	if err != nil {
		return StageResult{}, err
	}
	s.log.StageCompleted(string(name), time.Since(start), result.Succeeded, result.Unassigned)
	s.results[name] = result
	return result, nil
}

// SolveWithCheckpoints runs every stage in order, pausing after each one
// for controller to decide whether to continue, pause, or abort.
func (s *StagedSolver) SolveWithCheckpoints(ctx context.Context, timeout time.Duration, controller StagedController) ([]StageResult, error) {
	if controller == nil {
		controller = AlwaysContinue{}
	}
	s.log.StartSolve("staged", len(s.In.Persons), len(s.H.Days))
	var results []StageResult
	for _, name := range Order() {
		result, err := s.SolveStage(ctx, name, timeout)
		if err != nil {
			return results, err
		}
		results = append(results, result)

		switch controller.Decide(result) {
		case Abort:
			return results, fmt.Errorf("staged: aborted by controller after stage %q", name)
		case Pause:
			return results, nil
		}
	}
	return results, nil
}

// ResumeFromStage re-enters SolveWithCheckpoints starting at a named
// stage, for a caller that paused a prior run and wants to continue
// from the same partial roster and totals.
func (s *StagedSolver) ResumeFromStage(ctx context.Context, name StageName, timeout time.Duration, controller StagedController) ([]StageResult, error) {
	if controller == nil {
		controller = AlwaysContinue{}
	}
	order := Order()
	startIdx := -1
	for i, n := range order {
		if n == name {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil, fmt.Errorf("staged: unknown resume stage %q", name)
	}

	var results []StageResult
	for _, n := range order[startIdx:] {
		result, err := s.SolveStage(ctx, n, timeout)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		switch controller.Decide(result) {
		case Abort:
			return results, fmt.Errorf("staged: aborted by controller after stage %q", n)
		case Pause:
			return results, nil
		}
	}
	return results, nil
}
