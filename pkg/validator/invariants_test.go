package validator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
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

func smokeSetup() (horizon.Index, model.ProblemInput, model.Roster) {
	r1 := model.Person{ID: uuid.New(), Name: "R1", Grade: catalogue.GradeRegistrar, WTE: 1.0, CometEligible: true}
	r2 := model.Person{ID: uuid.New(), Name: "R2", Grade: catalogue.GradeRegistrar, WTE: 1.0}
	s1 := model.Person{ID: uuid.New(), Name: "S1", Grade: catalogue.GradeSHO, WTE: 1.0}
	s2 := model.Person{ID: uuid.New(), Name: "S2", Grade: catalogue.GradeSHO, WTE: 1.0}

	cfg := model.Config{
		StartDate: mustDate("2025-02-03"),
		EndDate:   mustDate("2025-02-09"),
	}
	in := model.ProblemInput{Persons: []model.Person{r1, r2, s1, s2}, Config: cfg, Weights: model.DefaultWeights()}
	h := horizon.Build(cfg, in.Persons)

	roster := model.NewRoster(h.Days, in.Persons)
	for d := range roster.Days {
		roster.Set(r1.ID, h.Days[d], catalogue.LDR)
		roster.Set(r2.ID, h.Days[d], catalogue.OFF)
		roster.Set(s1.ID, h.Days[d], catalogue.LDS)
		roster.Set(s2.ID, h.Days[d], catalogue.OFF)
		roster.SetLocum(h.Days[d], model.LocRegN, 1)
		roster.SetLocum(h.Days[d], model.LocSHON, 1)
		roster.SetLocum(h.Days[d], model.LocRegCMD, 1)
		roster.SetLocum(h.Days[d], model.LocRegCMN, 1)
	}
	return h, in, roster
}

func TestCheckExclusivityRejectsWrongGrade(t *testing.T) {
	h, in, roster := smokeSetup()
	roster.Set(in.Persons[2].ID, h.Days[0], catalogue.LDR) // SHO assigned a registrar-only code

	r := &Report{}
	CheckExclusivity(h, in, roster, r)
	if r.OK() {
		t.Fatal("expected a grade-mismatch violation")
	}
}

func TestCheckCoverageCountsLocumSlack(t *testing.T) {
	h, in, roster := smokeSetup()

	r := &Report{}
	CheckCoverage(h, in, roster, r)
	if !r.OK() {
		t.Fatalf("unexpected coverage violations: %+v", r.Violations)
	}
}

func TestCheckCoverageFlagsDoubleBooking(t *testing.T) {
	h, in, roster := smokeSetup()
	roster.Set(in.Persons[1].ID, h.Days[0], catalogue.LDR) // two LDRs on day 0

	r := &Report{}
	CheckCoverage(h, in, roster, r)
	if r.OK() {
		t.Fatal("expected a double-booked coverage violation")
	}
}

func TestCheckRollingHoursFlagsExcess(t *testing.T) {
	h, in, _ := smokeSetup()
	roster := model.NewRoster(h.Days, in.Persons)
	for d := range roster.Days {
		roster.Set(in.Persons[0].ID, h.Days[d], catalogue.LDR) // 13h every day, 91h in 7 days
	}

	r := &Report{}
	CheckRollingHours(h, in, roster, r)
	if r.OK() {
		t.Fatal("expected a rolling-hours violation")
	}
}

func TestCheckRestAfterNightsFlagsMissingRest(t *testing.T) {
	h, in, _ := smokeSetup()
	roster := model.NewRoster(h.Days, in.Persons)
	roster.Set(in.Persons[0].ID, h.Days[0], catalogue.NR)
	roster.Set(in.Persons[0].ID, h.Days[1], catalogue.LDR) // should be OFF/LTFT

	r := &Report{}
	CheckRestAfterNights(h, in, roster, r)
	if r.OK() {
		t.Fatal("expected a rest-after-nights violation")
	}
}

func TestCheckBlockShapeFlagsFiveConsecutiveNights(t *testing.T) {
	h, in, _ := smokeSetup()
	roster := model.NewRoster(h.Days, in.Persons)
	for d := 0; d < 5 && d < len(roster.Days); d++ {
		roster.Set(in.Persons[0].ID, h.Days[d], catalogue.NR)
	}

	r := &Report{}
	CheckBlockShape(h, in, roster, r)
	if r.OK() {
		t.Fatal("expected a block-shape violation for 5 consecutive nights")
	}
}

func TestCheckCometEligibilityFlagsIneligiblePerson(t *testing.T) {
	h, in, roster := smokeSetup()
	roster.Set(in.Persons[1].ID, h.Days[0], catalogue.CMD) // R2 is not CoMET-eligible

	r := &Report{}
	CheckCometEligibility(h, in, roster, r)
	if r.OK() {
		t.Fatal("expected a CoMET-eligibility violation")
	}
}

func TestValidateAllOnCleanRosterHasOnlyExpectedGaps(t *testing.T) {
	h, in, roster := smokeSetup()
	report := ValidateAll(h, in, roster)
	for _, v := range report.Violations {
		if v.Invariant == "comet_eligibility" {
			t.Errorf("unexpected comet_eligibility violation in smoke fixture: %s", v.Message)
		}
	}
}
