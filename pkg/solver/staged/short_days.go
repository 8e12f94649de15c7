package staged

import (
	"context"
	"sort"

	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

// shortDayTargetPerDay is the number of SD person-days a weekday still
// needing coverage aims for: 1-3 short-day assignments totalling three
// person-days.
const shortDayTargetPerDay = 3

// runShortDays is the final sweep: every weekday not already fully
// covered by an earlier stage gets 1-3 short-day assignments totalling
// three person-days, honouring rest from prior night commitments and
// balancing the running SD count across candidates.
func (s *StagedSolver) runShortDays(ctx context.Context) (StageResult, error) {
	unassigned := 0
	for d := range s.H.Days {
		if err := ctx.Err(); err != nil {
			return StageResult{}, err
		}
		if s.H.IsWeekend[d] || s.H.IsBankHoliday[d] {
			continue
		}
		filled := s.countCode(d, catalogue.SD)
		for filled < shortDayTargetPerDay {
			if !s.fillShortDay(d) {
				unassigned += shortDayTargetPerDay - filled
				break
			}
			filled++
		}
	}

	return StageResult{
		Name:       StageShortDays,
		Succeeded:  unassigned == 0,
		Unassigned: unassigned,
		Message:    "swept remaining weekdays for short-day coverage, balancing by running SD count",
	}, nil
}

func (s *StagedSolver) countCode(d int, code catalogue.Code) int {
	n := 0
	for _, c := range s.roster.Days[d].Codes {
		if c == code {
			n++
		}
	}
	return n
}

// fillShortDay assigns one SD to the least-used, rest-clear candidate
// currently OFF on d. Any grade may take a short day.
func (s *StagedSolver) fillShortDay(d int) bool {
	var candidates []model.Person
	for _, p := range s.In.Persons {
		if s.roster.CodeOn(p.ID, s.H.Days[d]) != catalogue.OFF {
			continue
		}
		if !s.restOK(p, d, d) {
			continue
		}
		candidates = append(candidates, p)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return s.totals.shortDays[candidates[i].ID] < s.totals.shortDays[candidates[j].ID]
	})
	if len(candidates) == 0 {
		return false
	}
	p := candidates[0]
	s.roster.Set(p.ID, s.H.Days[d], catalogue.SD)
	s.totals.hours[p.ID] += catalogue.Hours(catalogue.SD)
	s.totals.shortDays[p.ID]++
	return true
}
