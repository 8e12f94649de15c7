package constraint

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
)

// EmitTrainingGating restricts TREG/TSHO/TPCCU/IND to their configured
// days, and builds a training-gap indicator for every person on a day
// their grade's teaching session runs, signalling non-attendance (e.g.
// because they were needed on mandatory cover) for the objective shaper
// to penalise (tier 4 and tier 11).
func EmitTrainingGating(lib *Library) error {
	for _, p := range lib.H.Persons {
		for d, day := range lib.H.Days {
			zeroUnlessDay(lib, p.ID, d, catalogue.TREG, lib.In.Config.IsRegistrarTeachingDay(day))
			zeroUnlessDay(lib, p.ID, d, catalogue.TSHO, lib.In.Config.IsSHOTeachingDay(day))
			zeroUnlessDay(lib, p.ID, d, catalogue.TPCCU, lib.In.Config.IsPCCUTeachingDay(day))
			zeroUnlessDay(lib, p.ID, d, catalogue.IND, lib.In.Config.IsInductionDay(day))
		}

		var trainingCode catalogue.Code
		switch p.Grade {
		case catalogue.GradeRegistrar:
			trainingCode = catalogue.TREG
		case catalogue.GradeSHO:
			trainingCode = catalogue.TSHO
		default:
			continue
		}

		for d, day := range lib.H.Days {
			applicable := p.Grade == catalogue.GradeRegistrar && lib.In.Config.IsRegistrarTeachingDay(day)
			applicable = applicable || (p.Grade == catalogue.GradeSHO && lib.In.Config.IsSHOTeachingDay(day))
			if !applicable || !lib.HasVar(p.ID, d, trainingCode) {
				continue
			}

			trainVar := lib.M.Var(AssignName(p.ID, d, trainingCode))
			gapName := fmt.Sprintf("traingap_%s_%d", p.ID, d)
			gapVar := lib.M.BoolVar(gapName)
			lib.M.Equal(gapVar, oneMinusVar(trainVar))
			lib.Signals.TrainingGap[PersonDayKey{Person: p.ID, Day: d}] = gapName
		}
	}
	return nil
}

// zeroUnlessDay forces the (person, day, code) variable to false unless
// ok is true, used to confine training/induction codes to their
// configured day sets.
func zeroUnlessDay(lib *Library, person uuid.UUID, d int, code catalogue.Code, ok bool) {
	if ok || !lib.HasVar(person, d, code) {
		return
	}
	lib.M.FixFalse(lib.M.Var(AssignName(person, d, code)))
}
