package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// smokeInput is a 4-person, 2-week fixture spanning one CoMET week, the
// shared baseline every scenario test in this package starts from.
func smokeInput() model.ProblemInput {
	r1 := model.Person{ID: uuid.New(), Name: "R1", Grade: catalogue.GradeRegistrar, WTE: 1.0, CometEligible: true}
	r2 := model.Person{ID: uuid.New(), Name: "R2", Grade: catalogue.GradeRegistrar, WTE: 1.0, CometEligible: true}
	s1 := model.Person{ID: uuid.New(), Name: "S1", Grade: catalogue.GradeSHO, WTE: 1.0}
	s2 := model.Person{ID: uuid.New(), Name: "S2", Grade: catalogue.GradeSHO, WTE: 1.0}

	cfg := model.Config{
		StartDate:    mustDate("2025-02-03"),
		EndDate:      mustDate("2025-02-16"),
		CometMondays: []time.Time{mustDate("2025-02-03")},
	}

	return model.ProblemInput{
		Persons: []model.Person{r1, r2, s1, s2},
		Config:  cfg,
		Weights: model.DefaultWeights(),
	}
}

func stagedParams() Params {
	return Params{
		Strategy:         StrategyStaged,
		StagedTimeout:    5 * time.Second,
		StagedController: nil,
	}
}

// TestSolveStagedProducesAFullyDatedRoster exercises A-F end to end via
// the staged strategy and checks the basic shape of the result.
func TestSolveStagedProducesAFullyDatedRoster(t *testing.T) {
	in := smokeInput()
	out, err := Solve(context.Background(), in, stagedParams())
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if len(out.Roster.Days) != 14 {
		t.Fatalf("expected 14 roster days, got %d", len(out.Roster.Days))
	}
	if out.Status != "complete" && out.Status != "partial" {
		t.Errorf("unexpected status %q", out.Status)
	}
	if len(out.Summary.Persons) != len(in.Persons) {
		t.Errorf("expected a summary row per person, got %d for %d persons", len(out.Summary.Persons), len(in.Persons))
	}
}

func TestSolveRejectsAnInvertedHorizon(t *testing.T) {
	in := smokeInput()
	in.Config.EndDate = mustDate("2025-01-01")
	if _, err := Solve(context.Background(), in, stagedParams()); err == nil {
		t.Fatal("expected an error when the config end date precedes the start date")
	}
}
