// Package objective attaches the weighted soft-penalty objective to a
// CP-SAT model already populated with the hard constraints from
// pkg/constraint. Every tier contributes one weighted linear expression;
// Attach combines them and calls MinimizeExpr once, so tier dominance
// falls entirely out of the coefficient magnitudes in model.Weights.
package objective

import (
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/constraint"
	"github.com/picu-roster/engine/pkg/cpsat"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/model"
)

// Shaper builds the weighted objective from a Library already built by
// constraint.Build, plus the horizon index and problem it was built
// with.
type Shaper struct {
	Lib *constraint.Library
	H   horizon.Index
	In  model.ProblemInput
}

// NewShaper wraps an already-built constraint Library.
func NewShaper(lib *constraint.Library, h horizon.Index, in model.ProblemInput) *Shaper {
	return &Shaper{Lib: lib, H: h, In: in}
}

// Attach builds every tier's weighted penalty expression, combines them,
// and sets the CP-SAT model's objective.
func (s *Shaper) Attach() {
	w := s.In.Weights
	terms := []*cpmodel.LinearExpr{
		s.locumCostTerm(w),
		s.preassignmentTerm(w),
		s.firmWeekendOverageTerm(w),
		s.trainingGapTerm(w),
		s.sdDeviationTerm(w),
		s.weekendSplitTerm(w),
		s.weeklyHoursDeviationTerm(w),
		s.nightBlockShapeTerm(w),
		s.pairwiseFairnessVarianceTerm(w),
		s.fairnessBandSlackTerm(w),
		s.trainingBandSlackTerm(w),
		s.continuityBonusTerm(w),
	}
	s.Lib.M.MinimizeExpr(cpsat.CombineExprs(terms...))
}

// locumRoleWeight returns the tier-1 per-role weight, implementing the
// ladder CoMET night >= unit night >= CoMET day >= bank-holiday long day
// >= weekend long day >= weekday long day >= weekday short day.
func (s *Shaper) locumRoleWeight(w model.Weights, col model.LocumColumn, d int) int64 {
	switch col {
	case model.LocRegCMN:
		return int64(w.LocumCometNight)
	case model.LocRegN, model.LocSHON:
		return int64(w.LocumUnitNight)
	case model.LocRegCMD:
		return int64(w.LocumCometDay)
	case model.LocRegLD, model.LocSHOLD:
		if s.H.IsBankHoliday[d] {
			return int64(w.LocumBankHolidayLD)
		}
		if s.H.IsWeekend[d] {
			return int64(w.LocumWeekendLD)
		}
		return int64(w.LocumWeekdayLD)
	default: // model.LocSDAny
		return int64(w.LocumWeekdaySD)
	}
}

// locumCostTerm (tier 1) sums every locum slack unit, weighted by the
// per-role ladder.
func (s *Shaper) locumCostTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for key, name := range s.Lib.LocumVars {
		if s.Lib.M.Has(name) {
			expr.AddTerm(s.Lib.M.Var(name), s.locumRoleWeight(w, key.Col, key.Day))
		}
	}
	return expr
}

// preassignmentTerm (tier 2) penalises every soft preassignment whose
// assignment variable ends up false: weight * (1 - ok).
func (s *Shaper) preassignmentTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	weight := int64(w.PreassignmentViolation)
	for _, name := range s.Lib.Signals.PreassignmentOK {
		if s.Lib.M.Has(name) {
			expr.Add(cpmodel.NewConstant(weight))
			expr.AddTerm(s.Lib.M.Var(name), -weight)
		}
	}
	return expr
}

// firmWeekendOverageTerm (tier 3) penalises the per-person firm-cap
// overage indicator built in EmitWeekendFrequencyCap.
func (s *Shaper) firmWeekendOverageTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, name := range s.Lib.Signals.FirmWeekendOverage {
		if s.Lib.M.Has(name) {
			expr.AddTerm(s.Lib.M.Var(name), int64(w.FirmWeekendCapOverage))
		}
	}
	return expr
}

// trainingGapTerm (tier 4) penalises every training-gap indicator.
func (s *Shaper) trainingGapTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, name := range s.Lib.Signals.TrainingGap {
		if s.Lib.M.Has(name) {
			expr.AddTerm(s.Lib.M.Var(name), int64(w.TrainingNonAttendance))
		}
	}
	return expr
}

// sdDeviationTerm (tier 5) penalises weekday SD counts that fall short
// of the soft target of 2, via a boolean shortfall indicator per day
// (the hard band already bounds the count to [1, 3], so only the
// below-2 case needs softening): shortfall forced to 1 whenever
// sum(SD) + 3*shortfall < 2 would otherwise be violated.
func (s *Shaper) sdDeviationTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for d, day := range s.H.Days {
		if s.H.IsWeekend[d] || s.H.IsBankHoliday[d] || s.In.Config.IsInductionDay(day) {
			continue
		}
		sum := cpmodel.NewLinearExpr()
		any := false
		for _, p := range s.H.Persons {
			if s.Lib.HasVar(p.ID, d, catalogue.SD) {
				sum.Add(s.Lib.M.Var(constraint.AssignName(p.ID, d, catalogue.SD)))
				any = true
			}
		}
		if !any {
			continue
		}
		shortfall := s.Lib.M.BoolVar(fmt.Sprintf("sd_shortfall_%d", d))
		sum.AddTerm(shortfall, 3)
		s.Lib.M.GreaterOrEqual(sum, cpmodel.NewConstant(2))
		expr.AddTerm(shortfall, int64(w.SDDeviation))
	}
	return expr
}

// weekendSplitTerm (tier 6) penalises a person covering only one day of
// a weekend's long-day role (Sat xor Sun) rather than neither or both.
func (s *Shaper) weekendSplitTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, p := range s.H.Persons {
		ldCode := catalogue.LDR
		if p.Grade == catalogue.GradeSHO {
			ldCode = catalogue.LDS
		}
		for _, we := range s.H.Weekends() {
			if we.Saturday.IsZero() || we.Sunday.IsZero() {
				continue
			}
			satD, sunD := s.H.DayOf(we.Saturday), s.H.DayOf(we.Sunday)
			if !s.Lib.HasVar(p.ID, satD, ldCode) || !s.Lib.HasVar(p.ID, sunD, ldCode) {
				continue
			}
			sat := s.Lib.M.Var(constraint.AssignName(p.ID, satD, ldCode))
			sun := s.Lib.M.Var(constraint.AssignName(p.ID, sunD, ldCode))
			split := s.Lib.M.BoolVar(fmt.Sprintf("wesplit_%s_%d", p.ID, satD))

			// split + sun >= sat  and  split + sat >= sun: split is
			// forced to 1 exactly when sat and sun differ.
			left1 := cpmodel.NewLinearExpr()
			left1.Add(split)
			left1.Add(sun)
			s.Lib.M.GreaterOrEqual(left1, sat)

			left2 := cpmodel.NewLinearExpr()
			left2.Add(split)
			left2.Add(sat)
			s.Lib.M.GreaterOrEqual(left2, sun)

			expr.AddTerm(split, int64(w.WeekendSplit))
		}
	}
	return expr
}

// weeklyHoursDeviationTerm (tier 7) penalises a person's total horizon
// hours falling outside [45*WTE, 48*WTE] via an under/over indicator
// pair, each forced to 1 by a big-M bound keyed off the horizon's
// maximum possible hours.
func (s *Shaper) weeklyHoursDeviationTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	maxHours := int64(len(s.H.Days)) * 13

	for _, p := range s.H.Persons {
		total := cpmodel.NewLinearExpr()
		for d := range s.H.Days {
			for _, c := range catalogue.WorkingCodes() {
				if s.Lib.HasVar(p.ID, d, c) {
					total.AddTerm(s.Lib.M.Var(constraint.AssignName(p.ID, d, c)), int64(catalogue.Hours(c)))
				}
			}
		}
		lo := int64(45 * p.WTE)
		hi := int64(48 * p.WTE)

		under := s.Lib.M.BoolVar(fmt.Sprintf("hours_under_%s", p.ID))
		over := s.Lib.M.BoolVar(fmt.Sprintf("hours_over_%s", p.ID))

		// total + maxHours*under >= lo: under forced to 1 if total < lo.
		underLeft := cpmodel.NewLinearExpr()
		underLeft.Add(total)
		underLeft.AddTerm(under, maxHours)
		s.Lib.M.GreaterOrEqual(underLeft, cpmodel.NewConstant(lo))

		// total <= hi + maxHours*over: over forced to 1 if total > hi.
		overRight := cpmodel.NewLinearExpr()
		overRight.Add(cpmodel.NewConstant(hi))
		overRight.AddTerm(over, maxHours)
		s.Lib.M.LessOrEqual(total, overRight)

		expr.AddTerm(under, int64(w.WeeklyHoursDeviation))
		expr.AddTerm(over, int64(w.WeeklyHoursDeviation))
	}
	return expr
}

// nightFlagVar looks up the night-flag variable EmitRestAfterNights
// creates for (person, day), without re-deriving its OR-encoding.
func (s *Shaper) nightFlagVar(person uuid.UUID, d int) (cpmodel.BoolVar, bool) {
	name := fmt.Sprintf("night_%s_%d", person, d)
	if !s.Lib.M.Has(name) {
		return cpmodel.BoolVar{}, false
	}
	return s.Lib.M.Var(name), true
}

// nightBlockShapeTerm (tier 8) softly discourages 2-night blocks in
// favour of the 3-4 night blocks the hard shape rules already permit: a
// "shortBlock" indicator is forced to 1 whenever a night run starts and
// ends after exactly two nights (no night the day before, none the day
// after the second night).
func (s *Shaper) nightBlockShapeTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, p := range s.H.Persons {
		for d := 1; d+2 < len(s.H.Days); d++ {
			before, okBefore := s.nightFlagVar(p.ID, d-1)
			first, okFirst := s.nightFlagVar(p.ID, d)
			second, okSecond := s.nightFlagVar(p.ID, d+1)
			after, okAfter := s.nightFlagVar(p.ID, d+2)
			if !okBefore || !okFirst || !okSecond || !okAfter {
				continue
			}
			short := s.Lib.M.BoolVar(fmt.Sprintf("shortnightblock_%s_%d", p.ID, d))

			// short forced to 1 when before=0, first=1, second=1, after=0:
			// short + 3 >= first + second + (1-before) + (1-after).
			left := cpmodel.NewLinearExpr()
			left.Add(short)
			left.Add(cpmodel.NewConstant(3))

			right := cpmodel.NewLinearExpr()
			right.Add(first)
			right.Add(second)
			right.AddTerm(before, -1)
			right.Add(cpmodel.NewConstant(1))
			right.AddTerm(after, -1)
			right.Add(cpmodel.NewConstant(1))

			s.Lib.M.GreaterOrEqual(left, right)
			expr.AddTerm(short, int64(w.NightBlockShape))
		}
	}
	return expr
}

// pairwiseFairnessVarianceTerm (tier 9) softly discourages WTE-weighted
// imbalance between any two same-grade members of a fairness group,
// beyond what the hard ±25% band in pkg/constraint already bounds.
// Cross-multiplying by each other's WTE (scaled to an integer
// percentage) keeps every coefficient integral without dividing a CP-SAT
// expression by a decision variable.
func (s *Shaper) pairwiseFairnessVarianceTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, g := range constraint.FairnessGroups() {
		members := constraint.MembersOf(s.Lib, g.Grade)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pi, pj := members[i], members[j]
				wtePctI := int64(pi.WTE * 100)
				wtePctJ := int64(pj.WTE * 100)
				if wtePctI == 0 || wtePctJ == 0 {
					continue
				}

				left := weightedGroupExpr(s.Lib, g, pi, wtePctJ)
				right := weightedGroupExpr(s.Lib, g, pj, wtePctI)

				diffPos := s.Lib.M.BoolVar(fmt.Sprintf("fairdiffpos_%s_%s_%s", g.Name, pi.ID, pj.ID))
				diffNeg := s.Lib.M.BoolVar(fmt.Sprintf("fairdiffneg_%s_%s_%s", g.Name, pi.ID, pj.ID))
				bigM := int64(len(s.H.Days)+1) * 100

				// diffPos forced up when left exceeds right.
				posLeft := cpmodel.NewLinearExpr()
				posLeft.Add(left)
				posRight := cpmodel.NewLinearExpr()
				posRight.Add(right)
				posRight.AddTerm(diffPos, bigM)
				s.Lib.M.LessOrEqual(posLeft, posRight)

				// diffNeg forced up when right exceeds left.
				negLeft := cpmodel.NewLinearExpr()
				negLeft.Add(right)
				negRight := cpmodel.NewLinearExpr()
				negRight.Add(left)
				negRight.AddTerm(diffNeg, bigM)
				s.Lib.M.LessOrEqual(negLeft, negRight)

				expr.AddTerm(diffPos, int64(w.PairwiseFairnessVariance))
				expr.AddTerm(diffNeg, int64(w.PairwiseFairnessVariance))
			}
		}
	}
	return expr
}

// weightedGroupExpr sums a person's fairness-group decision variables
// (code-based or weekend-worked flags), each scaled by a shared integer
// coefficient, built directly from the underlying variables so no
// already-combined expression ever needs negating or rescaling.
func weightedGroupExpr(lib *constraint.Library, g constraint.FairnessGroup, p model.Person, coeff int64) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	if g.Weekend {
		for wi := range lib.H.Weekends() {
			name := fmt.Sprintf("weworked_%s_%d", p.ID, wi)
			if lib.M.Has(name) {
				expr.AddTerm(lib.M.Var(name), coeff)
			}
		}
		return expr
	}
	for d := range lib.H.Days {
		for _, c := range g.Codes {
			if lib.HasVar(p.ID, d, c) {
				expr.AddTerm(lib.M.Var(constraint.AssignName(p.ID, d, c)), coeff)
			}
		}
	}
	return expr
}

// fairnessBandSlackTerm (tier 10) narrows the hard ±25% fairness band to
// a soft ±15% preference band per member, via an under/over indicator
// pair bounded by a horizon-sized big-M.
func (s *Shaper) fairnessBandSlackTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	bigM := int64(len(s.H.Days) + 1)

	for _, g := range constraint.FairnessGroups() {
		members := constraint.MembersOf(s.Lib, g.Grade)
		if len(members) == 0 {
			continue
		}
		weights := make([]float64, len(members))
		denom := 0.0
		for i, p := range members {
			wt := p.WTE
			if g.Comet && p.CometEligible {
				wt *= constraint.CometWTEDiscount
			}
			active := float64(s.H.ActiveDayCount(p))
			weights[i] = wt * active
			denom += wt * active
		}
		if denom <= 0 {
			continue
		}
		totalRequired := constraint.GroupTotalRequired(s.Lib, g)
		if totalRequired <= 0 {
			continue
		}

		for i, p := range members {
			expected := totalRequired * weights[i] / denom
			lo := int64(0.85 * expected)
			hi := int64(1.15*expected + 0.999999)

			actual := constraint.GroupActualExpr(s.Lib, g, p)
			under := s.Lib.M.BoolVar(fmt.Sprintf("fairbandunder_%s_%s", g.Name, p.ID))
			over := s.Lib.M.BoolVar(fmt.Sprintf("fairbandover_%s_%s", g.Name, p.ID))

			underLeft := cpmodel.NewLinearExpr()
			underLeft.Add(actual)
			underLeft.AddTerm(under, bigM)
			s.Lib.M.GreaterOrEqual(underLeft, cpmodel.NewConstant(lo))

			overRight := cpmodel.NewLinearExpr()
			overRight.Add(cpmodel.NewConstant(hi))
			overRight.AddTerm(over, bigM)
			s.Lib.M.LessOrEqual(actual, overRight)

			expr.AddTerm(under, int64(w.FairnessBandSlack))
			expr.AddTerm(over, int64(w.FairnessBandSlack))
		}
	}
	return expr
}

// trainingBandSlackTerm (tier 11) penalises a person's aggregate
// training non-attendance once it exceeds a third of their applicable
// teaching days, distinct from tier 4's per-instance gap penalty.
func (s *Shaper) trainingBandSlackTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	teachingDays := map[catalogue.Grade]int{}
	for _, day := range s.H.Days {
		if s.In.Config.IsRegistrarTeachingDay(day) {
			teachingDays[catalogue.GradeRegistrar]++
		}
		if s.In.Config.IsSHOTeachingDay(day) {
			teachingDays[catalogue.GradeSHO]++
		}
	}

	byPerson := map[string]*cpmodel.LinearExpr{}
	for key, name := range s.Lib.Signals.TrainingGap {
		if !s.Lib.M.Has(name) {
			continue
		}
		id := key.Person.String()
		if byPerson[id] == nil {
			byPerson[id] = cpmodel.NewLinearExpr()
		}
		byPerson[id].Add(s.Lib.M.Var(name))
	}

	for _, p := range s.H.Persons {
		sum, ok := byPerson[p.ID.String()]
		if !ok {
			continue
		}
		limit := int64(float64(teachingDays[p.Grade]) / 3)
		over := s.Lib.M.BoolVar(fmt.Sprintf("trainbandover_%s", p.ID))
		bigM := int64(teachingDays[p.Grade] + 1)

		right := cpmodel.NewLinearExpr()
		right.Add(cpmodel.NewConstant(limit))
		right.AddTerm(over, bigM)
		s.Lib.M.LessOrEqual(sum, right)

		expr.AddTerm(over, int64(w.TrainingBandSlack))
	}
	return expr
}

// continuityBonusTerm (tier 12) rewards two concrete handover patterns
// that reduce clinician turnover across a weekend or night block: the
// same person covering Friday's long day also covering the following
// Monday's short day, and a person covering a short day on the eve of
// their own night block's first night. Rewards are capped at the
// minimum of their constituent literals so the solver can never inflate
// one for free.
func (s *Shaper) continuityBonusTerm(w model.Weights) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	bonus := int64(w.ContinuityBonus)

	for _, p := range s.H.Persons {
		ldCode := catalogue.LDR
		if p.Grade == catalogue.GradeSHO {
			ldCode = catalogue.LDS
		}
		for d, day := range s.H.Days {
			if day.Weekday() != time.Friday {
				continue
			}
			mondayD := d + 3
			if mondayD >= len(s.H.Days) {
				continue
			}
			if !s.Lib.HasVar(p.ID, d, ldCode) || !s.Lib.HasVar(p.ID, mondayD, catalogue.SD) {
				continue
			}
			fri := s.Lib.M.Var(constraint.AssignName(p.ID, d, ldCode))
			mon := s.Lib.M.Var(constraint.AssignName(p.ID, mondayD, catalogue.SD))

			reward := s.Lib.M.BoolVar(fmt.Sprintf("weekendcontinuity_%s_%d", p.ID, d))
			s.Lib.M.LessOrEqual(cpmodel.NewLinearExpr().Add(reward), fri)
			s.Lib.M.LessOrEqual(cpmodel.NewLinearExpr().Add(reward), mon)
			expr.AddTerm(reward, -bonus)
		}

		for d := range s.H.Days {
			if d == 0 {
				continue
			}
			firstNight, ok := s.nightFlagVar(p.ID, d)
			if !ok {
				continue
			}
			prevNight, hadPrev := s.nightFlagVar(p.ID, d-1)
			if !s.Lib.HasVar(p.ID, d-1, catalogue.SD) {
				continue
			}
			sd := s.Lib.M.Var(constraint.AssignName(p.ID, d-1, catalogue.SD))

			reward := s.Lib.M.BoolVar(fmt.Sprintf("nighteve_%s_%d", p.ID, d))
			s.Lib.M.LessOrEqual(cpmodel.NewLinearExpr().Add(reward), firstNight)
			s.Lib.M.LessOrEqual(cpmodel.NewLinearExpr().Add(reward), sd)
			if hadPrev {
				// exclude the interior of a block: only the first night's
				// eve counts as a handover.
				notPrev := cpmodel.NewLinearExpr()
				notPrev.AddTerm(prevNight, -1)
				notPrev.Add(cpmodel.NewConstant(1))
				s.Lib.M.LessOrEqual(cpmodel.NewLinearExpr().Add(reward), notPrev)
			}
			expr.AddTerm(reward, -bonus)
		}
	}
	return expr
}
