package global

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

func smokeInput() model.ProblemInput {
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

func TestSolveReturnsAFilledRoster(t *testing.T) {
	in := smokeInput()
	p := Params{
		NightsOnlyTimeout: 5 * time.Second,
		FullTimeout:       10 * time.Second,
		NumSearchWorkers:  4,
		RandomSeed:        7,
	}

	result, err := Solve(context.Background(), in, p)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if result.Status == StatusInfeasibleLocumOnly {
		t.Fatalf("expected a feasible roster for the smoke fixture, got locum-only fallback: %s", result.Reason)
	}
	if len(result.Roster.Days) != 7 {
		t.Fatalf("expected 7 roster days, got %d", len(result.Roster.Days))
	}
}

func TestSolveHonoursCancellationBetweenPasses(t *testing.T) {
	in := smokeInput()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, in, Params{NightsOnlyTimeout: time.Second, FullTimeout: time.Second})
	if err == nil {
		t.Fatal("expected an error for a pre-cancelled context")
	}
}
