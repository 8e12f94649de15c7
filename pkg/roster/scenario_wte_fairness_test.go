package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

// wteFairnessInput mirrors smokeInput but gives one SHO a part-time WTE
// and a fixed day off, so the fairness/summary pipeline has an uneven
// WTE split to carry through.
func wteFairnessInput() model.ProblemInput {
	in := smokeInput()
	tue := time.Tuesday
	for i := range in.Persons {
		if in.Persons[i].Name == "S2" {
			in.Persons[i].WTE = 0.6
			in.Persons[i].FixedDayOff = &tue
		}
	}
	return in
}

func TestSolveSummaryReflectsPartTimeWorkload(t *testing.T) {
	in := wteFairnessInput()
	out, err := Solve(context.Background(), in, stagedParams())
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}

	var s2 *model.Person
	for i := range in.Persons {
		if in.Persons[i].Name == "S2" {
			s2 = &in.Persons[i]
		}
	}
	if s2 == nil {
		t.Fatal("fixture missing S2")
	}

	var found bool
	for _, p := range out.Summary.Persons {
		if p.PersonID != s2.ID {
			continue
		}
		found = true
		if p.Grade != catalogue.GradeSHO {
			t.Errorf("expected S2's summary grade to stay %s, got %s", catalogue.GradeSHO, p.Grade)
		}
	}
	if !found {
		t.Error("expected S2 to appear in the summary's per-person rows")
	}

	for _, g := range out.Summary.Grades {
		if g.HoursGini < 0 || g.HoursGini > 1 {
			t.Errorf("grade %s hours Gini %.3f outside [0,1]", g.Grade, g.HoursGini)
		}
	}
}
