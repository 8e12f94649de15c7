// Package horizon materialises the ordered day sequence and the per-day,
// per-person indices the constraint library and objective shaper build
// their decision variables against.
package horizon

import (
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/model"
)

// Index is the set of derived artefacts the Horizon Indexer produces:
// the ordered day array, day/person lookup maps, and the per-day
// weekend/bank-holiday/CoMET masks.
type Index struct {
	Days        []time.Time
	DayIndex    map[time.Time]int
	Persons     []model.Person
	PersonIndex map[uuid.UUID]int

	IsWeekend     []bool
	IsBankHoliday []bool
	IsCometWeek   []bool
}

// Build walks cfg.StartDate..cfg.EndDate inclusive and indexes persons,
// filtering out nobody: pre-start gating is a constraint, not a filter,
// so every person supplied appears in the index regardless of effective
// start date.
func Build(cfg model.Config, persons []model.Person) Index {
	var days []time.Time
	for d := cfg.StartDate; !d.After(cfg.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	dayIdx := make(map[time.Time]int, len(days))
	isWeekend := make([]bool, len(days))
	isBankHol := make([]bool, len(days))
	isComet := make([]bool, len(days))
	for i, d := range days {
		dayIdx[d] = i
		wd := d.Weekday()
		isWeekend[i] = wd == time.Saturday || wd == time.Sunday
		isBankHol[i] = cfg.IsBankHoliday(d)
		isComet[i] = cfg.IsCometWeek(d)
	}

	personIdx := make(map[uuid.UUID]int, len(persons))
	for i, p := range persons {
		personIdx[p.ID] = i
	}

	return Index{
		Days:          days,
		DayIndex:      dayIdx,
		Persons:       persons,
		PersonIndex:   personIdx,
		IsWeekend:     isWeekend,
		IsBankHoliday: isBankHol,
		IsCometWeek:   isComet,
	}
}

// NumDays returns the horizon length in days.
func (idx Index) NumDays() int { return len(idx.Days) }

// NumWeeks returns the horizon length in whole weeks, rounded down.
// Used by the average-weekly-hours constraint, which only applies at
// >= 20 weeks.
func (idx Index) NumWeeks() int { return len(idx.Days) / 7 }

// DayOf returns the index of d within idx.Days, or -1 if d is outside the
// horizon.
func (idx Index) DayOf(d time.Time) int {
	if i, ok := idx.DayIndex[d]; ok {
		return i
	}
	return -1
}

// PersonOf returns the index of a person within idx.Persons, or -1.
func (idx Index) PersonOf(id uuid.UUID) int {
	if i, ok := idx.PersonIndex[id]; ok {
		return i
	}
	return -1
}

// ActiveDayCount returns the number of horizon days on or after p's
// effective start, the denominator fairness-band computations weight by.
func (idx Index) ActiveDayCount(p model.Person) int {
	n := 0
	for _, d := range idx.Days {
		if p.IsActiveOn(d) {
			n++
		}
	}
	return n
}

// ActiveWeekendCount returns the number of weekend calendar days (not
// weekend pairs) on or after p's effective start.
func (idx Index) ActiveWeekendCount(p model.Person) int {
	n := 0
	for i, d := range idx.Days {
		if idx.IsWeekend[i] && p.IsActiveOn(d) {
			n++
		}
	}
	return n
}

// Weekend is a Saturday/Sunday pair anchored at the Saturday. Horizon
// boundaries may produce a half weekend (a lone Saturday or Sunday);
// either day worked still counts it as worked, and it still counts
// toward the weekend cap denominator the same as a full pair.
type Weekend struct {
	Saturday time.Time // zero if the horizon starts mid-weekend and omits Saturday
	Sunday   time.Time // zero if the horizon ends mid-weekend and omits Sunday
}

// Weekends groups the horizon's weekend days into Saturday/Sunday pairs,
// including boundary half-weekends.
func (idx Index) Weekends() []Weekend {
	var out []Weekend
	for i, d := range idx.Days {
		if d.Weekday() != time.Saturday {
			continue
		}
		w := Weekend{Saturday: d}
		if i+1 < len(idx.Days) && idx.Days[i+1].Weekday() == time.Sunday {
			w.Sunday = idx.Days[i+1]
		}
		out = append(out, w)
	}
	// Leading Sunday with no preceding Saturday in the horizon.
	if len(idx.Days) > 0 && idx.Days[0].Weekday() == time.Sunday {
		out = append([]Weekend{{Sunday: idx.Days[0]}}, out...)
	}
	return out
}
