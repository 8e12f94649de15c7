package staged

import (
	"context"
	"sort"

	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

// blockPatterns lists the ways to cover a CoMET week's 7 nights with
// consecutive blocks, in the priority order they are tried.
var blockPatterns = [][]int{
	{4, 3},
	{3, 4},
	{3, 2, 2},
	{2, 3, 2},
	{2, 2, 3},
}

// runCometNights greedily packs each CoMET week's CMN coverage into
// 2-4 night blocks, preferring the priority-ordered weekly patterns,
// then falls back to a cleanup loop and singleton placement under a
// 46-hour (two clear day) rest check in both directions.
func (s *StagedSolver) runCometNights(ctx context.Context) (StageResult, error) {
	weekStarts := s.cometWeekStarts()

	unassigned := 0
	for _, weekStart := range weekStarts {
		if err := ctx.Err(); err != nil {
			return StageResult{}, err
		}
		unassigned += s.packCometWeek(weekStart)
	}

	unassigned -= s.cometCleanupLoop(20)

	for _, weekStart := range weekStarts {
		unassigned -= s.fillCometSingletons(weekStart)
	}
	if unassigned < 0 {
		unassigned = 0
	}

	return StageResult{
		Name:       StageCometNights,
		Succeeded:  unassigned == 0,
		Unassigned: unassigned,
		Message:    "packed CoMET-eligible registrars into block patterns by WTE-adjusted shortfall",
	}, nil
}

// cometWeekStarts returns the horizon-day index of every day that begins
// a CoMET week: the first day of the horizon flagged CoMET, or any day
// whose predecessor is not itself CoMET-flagged.
func (s *StagedSolver) cometWeekStarts() []int {
	var out []int
	for d := range s.H.Days {
		if !s.H.IsCometWeek[d] {
			continue
		}
		if d == 0 || !s.H.IsCometWeek[d-1] {
			out = append(out, d)
		}
	}
	return out
}

// cometBlockSizeFitsWTE reports whether length is the block size this
// person's WTE favours: part-time (WTE <= 0.6) favours shorter 2-3
// night blocks, full-time favours the longer 3-4 night blocks.
func cometBlockSizeFitsWTE(p model.Person, length int) bool {
	if p.WTE <= 0.6 {
		return length == 2 || length == 3
	}
	return length == 3 || length == 4
}

// cometEligibleCandidates returns CoMET-eligible registrars ordered for
// a greedy pick against a block of the given length: block-size fit
// against WTE first, then descending WTE-adjusted shortfall (the
// horizon's CoMET-day count times WTE, minus nights already held) as the
// "most behind first" tie-break within each fit bucket.
func (s *StagedSolver) cometEligibleCandidates(length int) []model.Person {
	var out []model.Person
	for _, p := range s.In.Persons {
		if p.Grade == catalogue.GradeRegistrar && p.CometEligible {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		fi := cometBlockSizeFitsWTE(out[i], length)
		fj := cometBlockSizeFitsWTE(out[j], length)
		if fi != fj {
			return fi
		}
		si := s.cometShortfall(out[i])
		sj := s.cometShortfall(out[j])
		return si > sj
	})
	return out
}

func (s *StagedSolver) cometShortfall(p model.Person) float64 {
	totalCometDays := 0
	for d := range s.H.Days {
		if s.H.IsCometWeek[d] {
			totalCometDays++
		}
	}
	expected := float64(totalCometDays) * p.WTE
	return expected - float64(s.totals.nights[p.ID])
}

// packCometWeek tries each block pattern in priority order against the
// 7 days starting at weekStart, stopping at the first pattern whose
// blocks it can all staff. Blocks placed by a pattern that fails partway
// stay committed. Returns the count of nights left uncovered.
func (s *StagedSolver) packCometWeek(weekStart int) int {
	weekEnd := weekStart + 6
	if weekEnd >= len(s.H.Days) {
		weekEnd = len(s.H.Days) - 1
	}
	weekLen := weekEnd - weekStart + 1

	for _, pattern := range blockPatterns {
		total := 0
		for _, n := range pattern {
			total += n
		}
		if total > weekLen {
			continue
		}
		if s.tryPlacePattern(weekStart, weekEnd, pattern) {
			return 0
		}
	}
	uncovered := 0
	for d := weekStart; d <= weekEnd; d++ {
		if !s.dayHasCMN(d) {
			uncovered++
		}
	}
	return uncovered
}

// tryPlacePattern lays consecutive blocks of the given sizes back to
// back starting at weekStart, assigning each block to the eligible
// doctor with the greatest shortfall who passes the rest check and
// preferring a block-size match to WTE (WTE <= 0.6 favours 2-3 night
// blocks, full-time favours 3-4).
func (s *StagedSolver) tryPlacePattern(weekStart, weekEnd int, pattern []int) bool {
	cursor := weekStart
	for _, blockLen := range pattern {
		if cursor+blockLen-1 > weekEnd {
			return false
		}
		person, ok := s.pickCometCandidate(cursor, blockLen)
		if !ok {
			return false
		}
		s.commitCometBlock(person, cursor, blockLen)
		cursor += blockLen
	}
	return true
}

func (s *StagedSolver) pickCometCandidate(start, length int) (model.Person, bool) {
	for _, p := range s.cometEligibleCandidates(length) {
		if s.cometBlockFits(p, start, length) {
			return p, true
		}
	}
	return model.Person{}, false
}

// cometBlockFits checks the person is OFF for the whole block and that
// placing it respects the two-clear-day rest rule in both directions
// against anything already committed.
func (s *StagedSolver) cometBlockFits(p model.Person, start, length int) bool {
	for d := start; d < start+length; d++ {
		if s.roster.CodeOn(p.ID, s.H.Days[d]) != catalogue.OFF {
			return false
		}
	}
	return s.restOK(p, start, start+length-1)
}

// restOK reports whether a night block [blockStart, blockEnd] leaves
// two clear rest days before and after relative to any other night
// block already committed for p.
func (s *StagedSolver) restOK(p model.Person, blockStart, blockEnd int) bool {
	timeline := s.roster.PersonTimeline(p.ID)

	for back := blockStart - 1; back >= 0 && back >= blockStart-2; back-- {
		if catalogue.IsWorking(timeline[back]) {
			return false
		}
	}
	priorEnd := -1
	for d := blockStart - 1; d >= 0; d-- {
		if catalogue.IsNight(timeline[d]) {
			priorEnd = d
			break
		}
		if d < blockStart-10 {
			break
		}
	}
	if priorEnd >= 0 && blockStart-priorEnd < 3 {
		return false
	}

	for fwd := blockEnd + 1; fwd < len(timeline) && fwd <= blockEnd+2; fwd++ {
		if catalogue.IsWorking(timeline[fwd]) {
			return false
		}
	}
	return true
}

func (s *StagedSolver) commitCometBlock(p model.Person, start, length int) {
	for d := start; d < start+length; d++ {
		s.roster.Set(p.ID, s.H.Days[d], catalogue.CMN)
		s.totals.nights[p.ID]++
		s.totals.hours[p.ID] += catalogue.Hours(catalogue.CMN)
	}
}

// cometCleanupLoop retries 2-3 night placements for still-under-target
// doctors against any week this pass didn't fully pack, up to rounds
// iterations.
func (s *StagedSolver) cometCleanupLoop(rounds int) int {
	weekStarts := s.cometWeekStarts()
	fixed := 0
	for round := 0; round < rounds; round++ {
		progress := false
		for _, weekStart := range weekStarts {
			weekEnd := weekStart + 6
			if weekEnd >= len(s.H.Days) {
				weekEnd = len(s.H.Days) - 1
			}
			gap, length := s.findUncoveredCometRun(weekStart, weekEnd)
			if gap < 0 {
				continue
			}
			blockLen := length
			if blockLen > 3 {
				blockLen = 3
			}
			if blockLen < 2 {
				continue
			}
			var person model.Person
			ok := false
			for _, p := range s.cometEligibleCandidates(blockLen) {
				if s.cometShortfall(p) > 0 && s.cometBlockFits(p, gap, blockLen) {
					person, ok = p, true
					break
				}
			}
			if !ok {
				continue
			}
			s.commitCometBlock(person, gap, blockLen)
			fixed += blockLen
			progress = true
		}
		if !progress {
			break
		}
	}
	return fixed
}

// findUncoveredCometRun returns the start and length of the first run
// of CMN-uncovered days within [weekStart, weekEnd], or -1 if none.
func (s *StagedSolver) findUncoveredCometRun(weekStart, weekEnd int) (int, int) {
	start := -1
	for d := weekStart; d <= weekEnd; d++ {
		if !s.dayHasCMN(d) {
			if start < 0 {
				start = d
			}
		} else if start >= 0 {
			return start, d - start
		}
	}
	if start >= 0 {
		return start, weekEnd - start + 1
	}
	return -1, 0
}

func (s *StagedSolver) dayHasCMN(d int) bool {
	for _, code := range s.roster.Days[d].Codes {
		if code == catalogue.CMN {
			return true
		}
	}
	return false
}

// fillCometSingletons covers any CMN day still uncovered after packing
// and cleanup with a single-night placement, the last resort the rest
// check still gates.
func (s *StagedSolver) fillCometSingletons(weekStart int) int {
	weekEnd := weekStart + 6
	if weekEnd >= len(s.H.Days) {
		weekEnd = len(s.H.Days) - 1
	}
	fixed := 0
	for d := weekStart; d <= weekEnd; d++ {
		if s.dayHasCMN(d) {
			continue
		}
		person, ok := s.pickCometCandidate(d, 1)
		if !ok {
			continue
		}
		s.commitCometBlock(person, d, 1)
		fixed++
	}
	return fixed
}
