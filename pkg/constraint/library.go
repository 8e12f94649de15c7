// Package constraint emits the roster's hard rules into a CP-SAT model:
// exclusivity, grade eligibility, coverage, rest, sequencing, fairness
// bands, preassignments, and training gating. Every emitter is a small
// function taking the shared Library and adding whatever variables and
// constraints it owns; Build wires them in a fixed, documented order so
// later emitters can assume earlier ones already exist.
package constraint

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/cpsat"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/model"
)

// cpmodelBoolVar aliases the underlying CP-SAT boolean variable type so
// most of this package never has to import cpmodel directly for the
// common case of passing variables around.
type cpmodelBoolVar = cpmodel.BoolVar

// Library holds the CP-SAT model, the horizon index, and the problem
// input every emitter reads from. It also owns the assignment variable
// registry: one bool var per (person, day, code) that is actually
// reachable for that person, plus the locum slack variables.
type Library struct {
	M  *cpsat.Model
	H  horizon.Index
	In model.ProblemInput

	// LocumVars holds one variable per (day index, locum column, unit).
	LocumVars map[locumKey]string

	// Signals collects the names of every soft-penalty variable created
	// while emitting hard constraints (firm weekend overage, soft
	// preassignment indicators, training gaps) so the objective shaper
	// can look them up without rebuilding the same CP-SAT sub-graphs.
	Signals Signals
}

// Signals is the set of soft-penalty variable names the objective
// shaper weights into the minimised sum. Every map is keyed by person
// ID; preassignment and training signals are further keyed by day.
type Signals struct {
	FirmWeekendOverage map[uuid.UUID]string
	PreassignmentOK    map[PersonDayKey]string
	TrainingGap        map[PersonDayKey]string
}

// PersonDayKey identifies a per-person, per-day soft signal.
type PersonDayKey struct {
	Person uuid.UUID
	Day    int
}

type locumKey struct {
	Day  int
	Col  model.LocumColumn
	Unit int
}

// NewLibrary constructs an empty Library over an already-built horizon
// index and CP-SAT model.
func NewLibrary(m *cpsat.Model, h horizon.Index, in model.ProblemInput) *Library {
	return &Library{
		M:         m,
		H:         h,
		In:        in,
		LocumVars: make(map[locumKey]string),
		Signals: Signals{
			FirmWeekendOverage: make(map[uuid.UUID]string),
			PreassignmentOK:    make(map[PersonDayKey]string),
			TrainingGap:        make(map[PersonDayKey]string),
		},
	}
}

// AssignName builds the canonical variable name for a (person, day,
// code) decision variable.
func AssignName(person uuid.UUID, day int, code catalogue.Code) string {
	return fmt.Sprintf("a_%s_%d_%s", person, day, code)
}

// LocumName builds the canonical variable name for a locum slack count
// at (day, column). unit distinguishes the k-th unit of slack for
// columns that can take more than one unit (e.g. LOC_SD_ANY).
func LocumName(day int, col model.LocumColumn, unit int) string {
	return fmt.Sprintf("loc_%d_%s_%d", day, col, unit)
}

// Emitter is one self-contained rule. Emitters run in Build's fixed
// order and may assume every emitter before them has already run.
type Emitter func(lib *Library) error

// DefaultEmitters lists every hard-constraint emitter in the order
// Build runs them. Coverage must run after exclusivity and eligibility
// so its locum slack equalities see the final variable set; rest and
// sequencing constraints read night/long/working subsets that the
// eligibility pass has already zeroed out by omission.
func DefaultEmitters() []Emitter {
	return []Emitter{
		EmitAssignmentVars,
		EmitExclusivity,
		EmitPreStartGating,
		EmitGradeEligibility,
		EmitSupernumeraryBan,
		EmitFixedDayOff,
		EmitCoverage,
		EmitRestAfterNights,
		EmitRollingHoursCap,
		EmitNightBlockShape,
		EmitConsecutiveLongShifts,
		EmitConsecutiveWorkingDays,
		EmitWeekendFrequencyCap,
		EmitAverageWeeklyHours,
		EmitFairnessBands,
		EmitPreassignments,
		EmitTrainingGating,
	}
}

// Build runs every default emitter against lib in order, stopping at
// the first error.
func (lib *Library) Build() error {
	for _, e := range DefaultEmitters() {
		if err := e(lib); err != nil {
			return err
		}
	}
	return nil
}

// eligibleCodes returns the catalogue codes a person could ever be
// assigned, pre-filtering supernumeraries and grade mismatches so the
// model never creates a variable that a later hard constraint would
// just force back to zero. CoMET codes are included regardless of
// per-day CoMET-week membership; EmitCoverage zeroes those out on
// non-CoMET days.
func eligibleCodes(p model.Person) []catalogue.Code {
	var out []catalogue.Code
	for _, e := range catalogue.All() {
		if e.Code == catalogue.LOC {
			continue
		}
		if p.Grade == catalogue.GradeSupernumerary {
			switch e.Code {
			case catalogue.LDR, catalogue.LDS, catalogue.NR, catalogue.NS, catalogue.CMD, catalogue.CMN:
				continue
			}
		}
		if e.GradeRequirement != "" && e.GradeRequirement != p.Grade {
			continue
		}
		if (e.Code == catalogue.CMD || e.Code == catalogue.CMN) && !p.CometEligible {
			continue
		}
		out = append(out, e.Code)
	}
	return out
}

// LocumUnits returns how many individual slack units a locum column can
// take in a single day. Mandatory-cover roles take at most one unit;
// LOC_SD_ANY can absorb up to three, matching the short-day band [1,3].
func LocumUnits(col model.LocumColumn) int {
	if col == model.LocSDAny {
		return 3
	}
	return 1
}

// LocumVar creates (or returns) the unit-th slack variable for (day,
// col), recording it in lib.LocumVars so the objective and report
// packages can enumerate every locum variable without reconstructing
// names themselves.
func (lib *Library) LocumVar(day int, col model.LocumColumn, unit int) cpmodelBoolVar {
	name := LocumName(day, col, unit)
	lib.LocumVars[locumKey{Day: day, Col: col, Unit: unit}] = name
	return lib.M.BoolVar(name)
}

// LocumUnitVars returns every slack unit variable for (day, col).
func (lib *Library) LocumUnitVars(day int, col model.LocumColumn) []cpmodelBoolVar {
	out := make([]cpmodelBoolVar, 0, LocumUnits(col))
	for u := 0; u < LocumUnits(col); u++ {
		out = append(out, lib.LocumVar(day, col, u))
	}
	return out
}

// HasVar reports whether (person, day, code) has an assignment
// variable. Callers treat a missing variable as structurally
// impossible, an implicitly forced-to-zero value, without spending a
// real CP-SAT variable on it.
func (lib *Library) HasVar(person uuid.UUID, day int, code catalogue.Code) bool {
	return lib.M.Has(AssignName(person, day, code))
}
