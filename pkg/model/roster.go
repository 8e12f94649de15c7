package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
)

// LocumColumn names a virtual locum slack column used to track unfilled
// coverage by role rather than leaving a slot genuinely unassigned.
type LocumColumn string

const (
	LocSHOLD  LocumColumn = "LOC_SHO_LD"
	LocRegLD  LocumColumn = "LOC_REG_LD"
	LocSHON   LocumColumn = "LOC_SHO_N"
	LocRegN   LocumColumn = "LOC_REG_N"
	LocRegCMD LocumColumn = "LOC_REG_CMD"
	LocRegCMN LocumColumn = "LOC_REG_CMN"
	LocSDAny  LocumColumn = "LOC_SD_ANY"
)

// AllLocumColumns lists every locum column in a stable order.
func AllLocumColumns() []LocumColumn {
	return []LocumColumn{LocSHOLD, LocRegLD, LocSHON, LocRegN, LocRegCMD, LocRegCMN, LocSDAny}
}

// DayRoster is one calendar day's assignments: every person's code, plus
// the locum slack counts that filled any unmet mandatory-cover role.
type DayRoster struct {
	Date        time.Time
	Codes       map[uuid.UUID]catalogue.Code
	LocumCounts map[LocumColumn]int
}

// Roster is the dense day x person matrix of shift codes the engine
// produces, plus the locum columns, for the full horizon.
type Roster struct {
	Days []DayRoster
}

// NewRoster creates an empty roster over the given ordered day list, with
// every person defaulted to OFF and every locum column at zero.
func NewRoster(days []time.Time, persons []Person) Roster {
	r := Roster{Days: make([]DayRoster, len(days))}
	for i, d := range days {
		codes := make(map[uuid.UUID]catalogue.Code, len(persons))
		for _, p := range persons {
			codes[p.ID] = catalogue.OFF
		}
		locs := make(map[LocumColumn]int, len(AllLocumColumns()))
		for _, lc := range AllLocumColumns() {
			locs[lc] = 0
		}
		r.Days[i] = DayRoster{Date: d, Codes: codes, LocumCounts: locs}
	}
	return r
}

// DayIndex returns the index of d within r.Days, or -1 if not present.
func (r Roster) DayIndex(d time.Time) int {
	for i, dr := range r.Days {
		if sameDate(dr.Date, d) {
			return i
		}
	}
	return -1
}

// CodeOn returns the code assigned to person on date d. Returns OFF if the
// date is outside the roster or the person is unknown.
func (r Roster) CodeOn(person uuid.UUID, d time.Time) catalogue.Code {
	idx := r.DayIndex(d)
	if idx < 0 {
		return catalogue.OFF
	}
	if c, ok := r.Days[idx].Codes[person]; ok {
		return c
	}
	return catalogue.OFF
}

// Set assigns code to person on date d, creating the day's map entries if
// needed. It is the sole mutator used while building a roster; once
// returned from a solve, a Roster is treated as immutable by convention.
func (r *Roster) Set(person uuid.UUID, d time.Time, code catalogue.Code) {
	idx := r.DayIndex(d)
	if idx < 0 {
		return
	}
	r.Days[idx].Codes[person] = code
}

// SetLocum sets the locum slack count for column lc on date d.
func (r *Roster) SetLocum(d time.Time, lc LocumColumn, n int) {
	idx := r.DayIndex(d)
	if idx < 0 {
		return
	}
	r.Days[idx].LocumCounts[lc] = n
}

// PersonTimeline returns the ordered sequence of codes assigned to person
// across every day of the roster, in day order.
func (r Roster) PersonTimeline(person uuid.UUID) []catalogue.Code {
	out := make([]catalogue.Code, len(r.Days))
	for i, dr := range r.Days {
		if c, ok := dr.Codes[person]; ok {
			out[i] = c
		} else {
			out[i] = catalogue.OFF
		}
	}
	return out
}
