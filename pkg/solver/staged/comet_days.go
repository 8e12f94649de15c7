package staged

import (
	"context"

	"github.com/picu-roster/engine/pkg/catalogue"
)

// runCometDays fills any CoMET-week CMD slot the earlier stages left
// open. Bank-holiday CMD is already placed by the bank-holiday pass;
// this stage is a lightweight greedy top-up of the remaining days.
func (s *StagedSolver) runCometDays(ctx context.Context) (StageResult, error) {
	unassigned := 0
	for d := range s.H.Days {
		if err := ctx.Err(); err != nil {
			return StageResult{}, err
		}
		if !s.H.IsCometWeek[d] {
			continue
		}
		if s.dayHasCode(d, catalogue.CMD) {
			continue
		}
		if !s.fillHolidayRole(d, catalogue.CMD, cometHolidayCandidates) {
			unassigned++
		}
	}

	return StageResult{
		Name:       StageCometDays,
		Succeeded:  unassigned == 0,
		Unassigned: unassigned,
		Message:    "topped up remaining CoMET-week CMD coverage",
	}, nil
}
