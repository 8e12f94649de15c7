// Package validator re-checks an emitted roster against every hard
// invariant the constraint layer was supposed to enforce, independent of
// the solver itself. It is the engine's second line of defense: a bug in
// the CP-SAT model construction should still surface here rather than
// silently shipping a broken roster.
package validator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/constraint"
	"github.com/picu-roster/engine/pkg/errors"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/model"
)

// Report collects every invariant violation found across a full pass.
type Report struct {
	Violations []Violation
}

// Violation is one failed invariant, named after the rule it breaks so
// a reader can map it back without re-deriving it.
type Violation struct {
	Invariant string
	PersonID  uuid.UUID
	Date      time.Time
	Message   string
}

func (r *Report) add(invariant string, person uuid.UUID, date time.Time, format string, args ...interface{}) {
	r.Violations = append(r.Violations, Violation{
		Invariant: invariant,
		PersonID:  person,
		Date:      date,
		Message:   fmt.Sprintf(format, args...),
	})
}

// OK reports whether the report is empty.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// ToAppError flattens every violation into one AppError, for callers that
// need a single terminal error rather than a structured report.
func (r *Report) ToAppError() *errors.AppError {
	ve := &errors.ValidationErrors{}
	for _, v := range r.Violations {
		ve.Add(v.Invariant, v.Message)
	}
	return ve.ToAppError()
}

// ValidateAll runs every quantified invariant against roster and returns
// the combined report.
func ValidateAll(h horizon.Index, in model.ProblemInput, roster model.Roster) *Report {
	r := &Report{}
	CheckExclusivity(h, in, roster, r)
	CheckCoverage(h, in, roster, r)
	CheckRollingHours(h, in, roster, r)
	CheckRestAfterNights(h, in, roster, r)
	CheckBlockShape(h, in, roster, r)
	CheckWeekendCap(h, in, roster, r)
	CheckAverageWeeklyHours(h, in, roster, r)
	CheckFairnessBands(h, in, roster, r)
	CheckCometEligibility(h, in, roster, r)
	return r
}

// CheckExclusivity verifies property 1: every person has exactly one code
// per day, and that code's grade requirement (if any) matches the
// person's grade.
func CheckExclusivity(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	for _, p := range in.Persons {
		for d, day := range roster.Days {
			code, ok := day.Codes[p.ID]
			if !ok {
				r.add("exclusivity", p.ID, h.Days[d], "no code assigned")
				continue
			}
			entry, ok := catalogue.Lookup(code)
			if !ok {
				r.add("exclusivity", p.ID, h.Days[d], "unknown code %q", code)
				continue
			}
			if entry.GradeRequirement != "" && entry.GradeRequirement != p.Grade {
				r.add("exclusivity", p.ID, h.Days[d], "code %s requires grade %s, person is %s", code, entry.GradeRequirement, p.Grade)
			}
		}
	}
}

// CheckCoverage verifies property 2: every mandatory-cover role applicable
// to a day is filled exactly once, counting locum slack.
func CheckCoverage(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	for d, day := range roster.Days {
		for _, role := range catalogue.MandatoryCoverCodes() {
			if (role == catalogue.CMD || role == catalogue.CMN) && !h.IsCometWeek[d] {
				continue
			}
			count := 0
			for _, c := range day.Codes {
				if c == role {
					count++
				}
			}
			locumCol := roleLocumColumn(role)
			if locumCol != "" {
				count += day.LocumCounts[locumCol]
			}
			if count != 1 {
				r.add("coverage", uuid.Nil, h.Days[d], "role %s covered %d times, want 1", role, count)
			}
		}
	}
}

func roleLocumColumn(role catalogue.Code) model.LocumColumn {
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

// CheckRollingHours verifies property 3: no person's trailing 7-day
// window sums to more than 72 hours.
func CheckRollingHours(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	for _, p := range in.Persons {
		timeline := roster.PersonTimeline(p.ID)
		for d := range timeline {
			total := 0.0
			lo := d - 6
			if lo < 0 {
				lo = 0
			}
			for w := lo; w <= d; w++ {
				total += catalogue.Hours(timeline[w])
			}
			if total > 72 {
				r.add("rolling_hours", p.ID, h.Days[d], "7-day window ending here sums to %.0fh, exceeds 72h", total)
			}
		}
	}
}

// CheckRestAfterNights verifies property 4: the two days after the end of
// any night block are OFF or LTFT.
func CheckRestAfterNights(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	for _, p := range in.Persons {
		timeline := roster.PersonTimeline(p.ID)
		for d := 0; d < len(timeline); d++ {
			if !catalogue.IsNight(timeline[d]) {
				continue
			}
			isBlockEnd := d == len(timeline)-1 || !catalogue.IsNight(timeline[d+1])
			if !isBlockEnd {
				continue
			}
			for offset := 1; offset <= 2; offset++ {
				idx := d + offset
				if idx >= len(timeline) {
					continue
				}
				c := timeline[idx]
				if c != catalogue.OFF && c != catalogue.LTFT {
					r.add("rest_after_nights", p.ID, h.Days[idx], "day %d after night block end is %s, want OFF/LTFT", offset, c)
				}
			}
		}
	}
}

// CheckBlockShape verifies property 5: no 5 consecutive nights, no 8
// consecutive working days, no 5 consecutive long shifts.
func CheckBlockShape(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	for _, p := range in.Persons {
		timeline := roster.PersonTimeline(p.ID)
		checkMaxRun(timeline, catalogue.IsNight, 5, func(start, run int) {
			r.add("block_shape", p.ID, h.Days[start], "%d consecutive nights, max is 4", run)
		})
		checkMaxRun(timeline, func(c catalogue.Code) bool { return catalogue.Hours(c) > 0 }, 8, func(start, run int) {
			r.add("block_shape", p.ID, h.Days[start], "%d consecutive working days, max is 7", run)
		})
		checkMaxRun(timeline, catalogue.IsLong, 5, func(start, run int) {
			r.add("block_shape", p.ID, h.Days[start], "%d consecutive long shifts, max is 4", run)
		})
	}
}

// checkMaxRun scans timeline for any run of pred longer than limit-1,
// reporting the run's start index and length once it reaches limit.
func checkMaxRun(timeline []catalogue.Code, pred func(catalogue.Code) bool, limit int, report func(start, run int)) {
	run := 0
	start := 0
	for d, c := range timeline {
		if pred(c) {
			if run == 0 {
				start = d
			}
			run++
			if run == limit {
				report(start, run)
			}
		} else {
			run = 0
		}
	}
}

// CheckWeekendCap verifies property 6: weekends worked is at most
// ceil(N_weekends * WTE / 2).
func CheckWeekendCap(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	weekends := h.Weekends()
	for _, p := range in.Persons {
		worked := 0
		for _, we := range weekends {
			if dayHasWorkingCode(roster, p.ID, we.Saturday) || dayHasWorkingCode(roster, p.ID, we.Sunday) {
				worked++
			}
		}
		cap := ceilDiv(float64(len(weekends))*p.WTE, 2)
		if worked > cap {
			r.add("weekend_cap", p.ID, time.Time{}, "worked %d weekends, cap is %d", worked, cap)
		}
	}
}

func dayHasWorkingCode(roster model.Roster, person uuid.UUID, d time.Time) bool {
	if d.IsZero() {
		return false
	}
	c := roster.CodeOn(person, d)
	return catalogue.Hours(c) > 0
}

func ceilDiv(n, d float64) int {
	if d == 0 {
		return 0
	}
	v := n / d
	out := int(v)
	if float64(out) < v {
		out++
	}
	return out
}

// CheckAverageWeeklyHours verifies property 7: for horizons of 20 weeks
// or more, total hours fall within [floor(42*weeks*WTE), ceil(47*weeks*WTE)].
func CheckAverageWeeklyHours(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	weeks := h.NumWeeks()
	if weeks < 20 {
		return
	}
	for _, p := range in.Persons {
		total := 0.0
		for _, c := range roster.PersonTimeline(p.ID) {
			total += catalogue.Hours(c)
		}
		lo := float64(int(42 * float64(weeks) * p.WTE))
		hi := ceilDiv(47*float64(weeks)*p.WTE, 1)
		if total < lo || total > float64(hi) {
			r.add("average_weekly_hours", p.ID, time.Time{}, "total %0.0fh outside [%0.0f, %d]", total, lo, hi)
		}
	}
}

// CheckFairnessBands verifies property 8: every person's share of a
// grade-shift fairness group is within the WTE-weighted band, reusing the
// same grouping logic the hard constraint layer enforces during solve.
func CheckFairnessBands(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	for _, g := range constraint.FairnessGroups() {
		members := membersOfGrade(in, g.Grade)
		if len(members) == 0 {
			continue
		}
		weights := make([]float64, len(members))
		denom := 0.0
		for i, p := range members {
			w := p.WTE
			if g.Comet && p.CometEligible {
				w *= 0.8
			}
			active := float64(h.ActiveDayCount(p))
			weights[i] = w * active
			denom += w * active
		}
		if denom <= 0 {
			continue
		}
		totalRequired := groupTotalActual(h, roster, in, g)
		if totalRequired <= 0 {
			continue
		}
		for i, p := range members {
			actual := personGroupActual(h, roster, g, p)
			expected := totalRequired * weights[i] / denom
			cushion := 0.0
			if expected < 2 {
				cushion = 1
			}
			lo := 0.75*expected - cushion
			hi := 1.25*expected + cushion
			if lo < 0 {
				lo = 0
			}
			if float64(actual) < lo-1e-6 || float64(actual) > hi+1e-6 {
				r.add("fairness_band", p.ID, time.Time{}, "group %s share %d outside [%.1f, %.1f]", g.Name, actual, lo, hi)
			}
		}
	}
}

func membersOfGrade(in model.ProblemInput, grade catalogue.Grade) []model.Person {
	var out []model.Person
	for _, p := range in.Persons {
		if p.Grade == grade {
			out = append(out, p)
		}
	}
	return out
}

func groupTotalActual(h horizon.Index, roster model.Roster, in model.ProblemInput, g constraint.FairnessGroup) float64 {
	total := 0
	for _, p := range membersOfGrade(in, g.Grade) {
		total += personGroupActual(h, roster, g, p)
	}
	return float64(total)
}

func personGroupActual(h horizon.Index, roster model.Roster, g constraint.FairnessGroup, p model.Person) int {
	if g.Weekend {
		count := 0
		for _, we := range h.Weekends() {
			if dayHasWorkingCode(roster, p.ID, we.Saturday) || dayHasWorkingCode(roster, p.ID, we.Sunday) {
				count++
			}
		}
		return count
	}
	count := 0
	for _, d := range h.Days {
		c := roster.CodeOn(p.ID, d)
		for _, code := range g.Codes {
			if c == code {
				count++
			}
		}
	}
	return count
}

// CheckCometEligibility verifies property 9: CMD/CMN appear only on a
// CoMET day, and only for CoMET-eligible registrars.
func CheckCometEligibility(h horizon.Index, in model.ProblemInput, roster model.Roster, r *Report) {
	eligibility := make(map[uuid.UUID]bool, len(in.Persons))
	for _, p := range in.Persons {
		eligibility[p.ID] = p.CometEligible
	}
	for d, day := range roster.Days {
		for person, code := range day.Codes {
			if code != catalogue.CMD && code != catalogue.CMN {
				continue
			}
			if !h.IsCometWeek[d] {
				r.add("comet_eligibility", person, h.Days[d], "%s assigned outside a CoMET week", code)
			}
			if !eligibility[person] {
				r.add("comet_eligibility", person, h.Days[d], "%s assigned to a non-CoMET-eligible person", code)
			}
		}
	}
}
