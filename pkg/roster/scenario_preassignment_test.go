package roster

import (
	"context"
	"testing"

	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

// TestHardPreassignmentSurvivesStagedSolve seeds a hard leave
// preassignment and checks it reaches the final roster unchanged: no
// stage may overwrite a day already carrying an absence code.
func TestHardPreassignmentSurvivesStagedSolve(t *testing.T) {
	in := smokeInput()
	r1 := in.Persons[0]
	leaveDay := mustDate("2025-02-10")
	in.Preassignments = []model.Preassignment{
		{PersonID: r1.ID, Date: leaveDay, Code: catalogue.LV},
	}

	out, err := Solve(context.Background(), in, stagedParams())
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if got := out.Roster.CodeOn(r1.ID, leaveDay); got != catalogue.LV {
		t.Errorf("expected %s's hard leave preassignment on %s to survive, got %s", r1.Name, leaveDay.Format("2006-01-02"), got)
	}
}

func TestValidateInputRejectsContradictoryHardPreassignments(t *testing.T) {
	in := smokeInput()
	r1 := in.Persons[0]
	day := mustDate("2025-02-10")
	in.Preassignments = []model.Preassignment{
		{PersonID: r1.ID, Date: day, Code: catalogue.LV},
		{PersonID: r1.ID, Date: day, Code: catalogue.SLV},
	}
	if err := ValidateInput(in); err == nil {
		t.Fatal("expected an error for two contradictory hard preassignments on the same day")
	}
}

func TestValidateInputRejectsPreassignmentOutsideHorizon(t *testing.T) {
	in := smokeInput()
	r1 := in.Persons[0]
	in.Preassignments = []model.Preassignment{
		{PersonID: r1.ID, Date: mustDate("2025-03-01"), Code: catalogue.LV},
	}
	if err := ValidateInput(in); err == nil {
		t.Fatal("expected an error for a preassignment dated outside the horizon")
	}
}
