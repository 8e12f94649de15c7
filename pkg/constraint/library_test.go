package constraint

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/cpsat"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/model"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func smokeProblem() model.ProblemInput {
	r1 := model.Person{ID: uuid.New(), Name: "R1", Grade: catalogue.GradeRegistrar, WTE: 1.0, CometEligible: true}
	r2 := model.Person{ID: uuid.New(), Name: "R2", Grade: catalogue.GradeRegistrar, WTE: 1.0}
	s1 := model.Person{ID: uuid.New(), Name: "S1", Grade: catalogue.GradeSHO, WTE: 1.0}
	s2 := model.Person{ID: uuid.New(), Name: "S2", Grade: catalogue.GradeSHO, WTE: 1.0}

	cfg := model.Config{
		StartDate:    mustDate("2025-02-03"),
		EndDate:      mustDate("2025-02-09"),
		CometMondays: []time.Time{mustDate("2025-02-03")},
	}

	return model.ProblemInput{
		Persons: []model.Person{r1, r2, s1, s2},
		Config:  cfg,
		Weights: model.DefaultWeights(),
	}
}

func TestBuildDoesNotError(t *testing.T) {
	in := smokeProblem()
	idx := horizon.Build(in.Config, in.Persons)
	m := cpsat.NewModel()
	lib := NewLibrary(m, idx, in)

	if err := lib.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
}

func TestEligibleCodesExcludesSupernumeraryRoles(t *testing.T) {
	p := model.Person{ID: uuid.New(), Grade: catalogue.GradeSupernumerary, WTE: 1.0}
	codes := eligibleCodes(p)
	for _, c := range codes {
		switch c {
		case catalogue.LDR, catalogue.LDS, catalogue.NR, catalogue.NS, catalogue.CMD, catalogue.CMN:
			t.Errorf("supernumerary should never be eligible for %s", c)
		}
	}
}

func TestEligibleCodesExcludesCometForIneligiblePerson(t *testing.T) {
	p := model.Person{ID: uuid.New(), Grade: catalogue.GradeRegistrar, WTE: 1.0, CometEligible: false}
	codes := eligibleCodes(p)
	for _, c := range codes {
		if c == catalogue.CMD || c == catalogue.CMN {
			t.Error("non-CoMET-eligible registrar should not have CMD/CMN variables")
		}
	}
}

func TestEligibleCodesExcludesLocumPlaceholder(t *testing.T) {
	p := model.Person{ID: uuid.New(), Grade: catalogue.GradeRegistrar, WTE: 1.0}
	for _, c := range eligibleCodes(p) {
		if c == catalogue.LOC {
			t.Error("LOC is virtual slack, never a per-person variable")
		}
	}
}

func TestLocumUnitsForSDIsThree(t *testing.T) {
	if LocumUnits(model.LocSDAny) != 3 {
		t.Errorf("LocumUnits(LocSDAny) = %d, want 3", LocumUnits(model.LocSDAny))
	}
	if LocumUnits(model.LocRegLD) != 1 {
		t.Errorf("LocumUnits(LocRegLD) = %d, want 1", LocumUnits(model.LocRegLD))
	}
}

func TestPreassignmentOutsideHorizonErrors(t *testing.T) {
	in := smokeProblem()
	in.Preassignments = []model.Preassignment{
		{PersonID: in.Persons[0].ID, Date: mustDate("2099-01-01"), Code: catalogue.LV},
	}
	idx := horizon.Build(in.Config, in.Persons)
	m := cpsat.NewModel()
	lib := NewLibrary(m, idx, in)

	if err := lib.Build(); err == nil {
		t.Error("expected an error for a preassignment date outside the horizon")
	}
}

func TestHardPreassignmentFixesVariable(t *testing.T) {
	in := smokeProblem()
	in.Preassignments = []model.Preassignment{
		{PersonID: in.Persons[0].ID, Date: in.Config.StartDate, Code: catalogue.LV},
	}
	idx := horizon.Build(in.Config, in.Persons)
	m := cpsat.NewModel()
	lib := NewLibrary(m, idx, in)

	if err := lib.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !lib.HasVar(in.Persons[0].ID, 0, catalogue.LV) {
		t.Fatal("expected an LV variable for the preassigned person/day")
	}
}
