package staged

import (
	"context"
	"sort"

	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

// runWeekendHolidays is the bank-holiday-only pass: it first fills CMD
// on bank holidays with CoMET-eligible registrars, minimising the
// max-min spread of each registrar's CoMET-holiday count, then fills
// any bank holiday still missing its long-day registrar role.
func (s *StagedSolver) runWeekendHolidays(ctx context.Context) (StageResult, error) {
	unassigned := 0
	for d := range s.H.Days {
		if err := ctx.Err(); err != nil {
			return StageResult{}, err
		}
		if !s.H.IsBankHoliday[d] {
			continue
		}
		if s.H.IsCometWeek[d] && !s.dayHasCode(d, catalogue.CMD) {
			if !s.fillHolidayRole(d, catalogue.CMD, cometHolidayCandidates) {
				unassigned++
			}
		}
	}
	for d := range s.H.Days {
		if !s.H.IsBankHoliday[d] {
			continue
		}
		if !s.dayHasCode(d, catalogue.LDR) {
			if !s.fillHolidayRole(d, catalogue.LDR, longDayCandidates) {
				unassigned++
			}
		}
	}

	return StageResult{
		Name:       StageWeekendHolidays,
		Succeeded:  unassigned == 0,
		Unassigned: unassigned,
		Message:    "filled bank-holiday CMD then LDR, balancing each registrar's holiday-role count",
	}, nil
}

// dayHasCode reports whether any person already carries code on day d.
func (s *StagedSolver) dayHasCode(d int, code catalogue.Code) bool {
	for _, c := range s.roster.Days[d].Codes {
		if c == code {
			return true
		}
	}
	return false
}

// holidayRoleCount tracks, per person, how many bank-holiday instances of a
// given role they have already been assigned, the quantity this
// stage's greedy fill keeps max-min balanced.
func (s *StagedSolver) holidayRoleCount(code catalogue.Code) map[model.Person]int {
	counts := make(map[model.Person]int)
	for _, p := range s.In.Persons {
		n := 0
		for d := range s.H.Days {
			if s.H.IsBankHoliday[d] && s.roster.CodeOn(p.ID, s.H.Days[d]) == code {
				n++
			}
		}
		counts[p] = n
	}
	return counts
}

// cometHolidayCandidates returns CoMET-eligible registrars who are
// currently OFF on d, least-assigned-first.
func cometHolidayCandidates(s *StagedSolver, d int) []model.Person {
	var out []model.Person
	for _, p := range s.In.Persons {
		if p.Grade != catalogue.GradeRegistrar || !p.CometEligible {
			continue
		}
		if s.roster.CodeOn(p.ID, s.H.Days[d]) != catalogue.OFF {
			continue
		}
		out = append(out, p)
	}
	return sortByHolidayCount(s, out, catalogue.CMD)
}

// longDayCandidates returns registrars currently OFF on d, ordered by
// fewest bank-holiday LDRs first and then ascending running hours, so
// the fallback long-day fill stays fair too.
func longDayCandidates(s *StagedSolver, d int) []model.Person {
	var out []model.Person
	for _, p := range s.In.Persons {
		if p.Grade != catalogue.GradeRegistrar {
			continue
		}
		if s.roster.CodeOn(p.ID, s.H.Days[d]) != catalogue.OFF {
			continue
		}
		out = append(out, p)
	}
	return sortByHolidayCount(s, out, catalogue.LDR)
}

func sortByHolidayCount(s *StagedSolver, persons []model.Person, code catalogue.Code) []model.Person {
	counts := s.holidayRoleCount(code)
	sort.Slice(persons, func(i, j int) bool {
		ci, cj := counts[persons[i]], counts[persons[j]]
		if ci != cj {
			return ci < cj
		}
		return s.totals.hours[persons[i].ID] < s.totals.hours[persons[j].ID]
	})
	return persons
}

// fillHolidayRole assigns the first candidate (from candidateFn) that
// passes the rest check. Returns false if no candidate was eligible.
func (s *StagedSolver) fillHolidayRole(d int, code catalogue.Code, candidateFn func(*StagedSolver, int) []model.Person) bool {
	for _, p := range candidateFn(s, d) {
		if !s.restOK(p, d, d) {
			continue
		}
		s.roster.Set(p.ID, s.H.Days[d], code)
		s.totals.hours[p.ID] += catalogue.Hours(code)
		if catalogue.IsLong(code) {
			s.totals.longDays[p.ID]++
		}
		return true
	}
	return false
}
