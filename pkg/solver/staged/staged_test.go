package staged

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
		EndDate:      mustDate("2025-02-16"),
		CometMondays: []time.Time{mustDate("2025-02-03")},
	}

	return model.ProblemInput{
		Persons: []model.Person{r1, r2, s1, s2},
		Config:  cfg,
		Weights: model.DefaultWeights(),
	}
}

func TestNewStartsFromAnAllOffRoster(t *testing.T) {
	s := New(smokeInput())
	roster := s.CurrentRoster()
	if len(roster.Days) != 14 {
		t.Fatalf("expected 14 roster days, got %d", len(roster.Days))
	}
	for _, p := range s.In.Persons {
		for _, d := range roster.Days {
			if roster.CodeOn(p.ID, d.Date) != catalogue.OFF {
				t.Fatalf("expected a fresh roster to start every person OFF, got %s for %s on %s", roster.CodeOn(p.ID, d.Date), p.Name, d.Date)
			}
		}
	}
}

func TestSolveWithCheckpointsRunsEveryStageInOrder(t *testing.T) {
	s := New(smokeInput())
	results, err := s.SolveWithCheckpoints(context.Background(), 5*time.Second, AlwaysContinue{})
	if err != nil {
		t.Fatalf("SolveWithCheckpoints() error: %v", err)
	}
	if len(results) != len(Order()) {
		t.Fatalf("expected %d stage results, got %d", len(Order()), len(results))
	}
	for i, r := range results {
		if r.Name != Order()[i] {
			t.Errorf("stage %d: got %q, want %q", i, r.Name, Order()[i])
		}
	}
}

func TestCheckHardConstraintsPassesAfterFullSolve(t *testing.T) {
	s := New(smokeInput())
	if _, err := s.SolveWithCheckpoints(context.Background(), 5*time.Second, AlwaysContinue{}); err != nil {
		t.Fatalf("SolveWithCheckpoints() error: %v", err)
	}
	if err := s.CheckHardConstraints(); err != nil {
		t.Errorf("CheckHardConstraints() error after a full staged solve: %v", err)
	}
}

type pauseAfter struct {
	name StageName
}

func (p pauseAfter) Decide(r StageResult) Decision {
	if r.Name == p.name {
		return Pause
	}
	return Continue
}

func TestSolveWithCheckpointsHonoursPause(t *testing.T) {
	s := New(smokeInput())
	results, err := s.SolveWithCheckpoints(context.Background(), 5*time.Second, pauseAfter{name: StageCometNights})
	if err != nil {
		t.Fatalf("SolveWithCheckpoints() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 stage result before pausing, got %d", len(results))
	}
	if results[0].Name != StageCometNights {
		t.Fatalf("expected to pause after %q, got %q", StageCometNights, results[0].Name)
	}
}

func TestResumeFromStageContinuesWithoutRerunningEarlierStages(t *testing.T) {
	s := New(smokeInput())
	if _, err := s.SolveWithCheckpoints(context.Background(), 5*time.Second, pauseAfter{name: StageCometNights}); err != nil {
		t.Fatalf("initial SolveWithCheckpoints() error: %v", err)
	}

	results, err := s.ResumeFromStage(context.Background(), StageNights, 5*time.Second, AlwaysContinue{})
	if err != nil {
		t.Fatalf("ResumeFromStage() error: %v", err)
	}
	if len(results) != len(Order())-1 {
		t.Fatalf("expected %d remaining stage results, got %d", len(Order())-1, len(results))
	}
	if results[0].Name != StageNights {
		t.Fatalf("expected resume to start at %q, got %q", StageNights, results[0].Name)
	}
}

func TestSolveStageRejectsUnknownName(t *testing.T) {
	s := New(smokeInput())
	if _, err := s.SolveStage(context.Background(), StageName("not_a_stage"), time.Second); err == nil {
		t.Error("expected an error for an unknown stage name")
	}
}

func TestRunCometNightsAssignsOnlyCometEligibleRegistrars(t *testing.T) {
	s := New(smokeInput())
	if _, err := s.runCometNights(context.Background()); err != nil {
		t.Fatalf("runCometNights() error: %v", err)
	}
	roster := s.CurrentRoster()
	for _, p := range s.In.Persons {
		for _, d := range roster.Days {
			if roster.CodeOn(p.ID, d.Date) == catalogue.CMN && !p.CometEligible {
				t.Errorf("%s is not CoMET-eligible but was assigned CMN on %s", p.Name, d.Date)
			}
		}
	}
}
