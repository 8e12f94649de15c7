package objective

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/constraint"
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

func smokeInput() model.ProblemInput {
	r1 := model.Person{ID: uuid.New(), Name: "R1", Grade: catalogue.GradeRegistrar, WTE: 1.0, CometEligible: true}
	r2 := model.Person{ID: uuid.New(), Name: "R2", Grade: catalogue.GradeRegistrar, WTE: 1.0}
	s1 := model.Person{ID: uuid.New(), Name: "S1", Grade: catalogue.GradeSHO, WTE: 1.0}
	s2 := model.Person{ID: uuid.New(), Name: "S2", Grade: catalogue.GradeSHO, WTE: 0.8}

	cfg := model.Config{
		StartDate:             mustDate("2025-02-03"),
		EndDate:               mustDate("2025-02-16"),
		CometMondays:          []time.Time{mustDate("2025-02-03")},
		RegistrarTeachingDays: []time.Time{mustDate("2025-02-05")},
		SHOTeachingDays:       []time.Time{mustDate("2025-02-06")},
	}

	return model.ProblemInput{
		Persons: []model.Person{r1, r2, s1, s2},
		Config:  cfg,
		Weights: model.DefaultWeights(),
	}
}

func buildLibrary(t *testing.T, in model.ProblemInput) (*constraint.Library, horizon.Index) {
	t.Helper()
	idx := horizon.Build(in.Config, in.Persons)
	m := cpsat.NewModel()
	lib := constraint.NewLibrary(m, idx, in)
	if err := lib.Build(); err != nil {
		t.Fatalf("constraint Build() error: %v", err)
	}
	return lib, idx
}

func TestAttachDoesNotPanic(t *testing.T) {
	in := smokeInput()
	lib, idx := buildLibrary(t, in)

	s := NewShaper(lib, idx, in)
	s.Attach()
}

func TestLocumRoleWeightOrdersLadder(t *testing.T) {
	in := smokeInput()
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)
	w := in.Weights

	weekday := 1 // a Tuesday in the smoke horizon, not a bank holiday
	if idx.IsWeekend[weekday] {
		t.Fatalf("test fixture expected day %d to be a weekday", weekday)
	}

	got := map[string]int64{
		"cometNight": s.locumRoleWeight(w, model.LocRegCMN, weekday),
		"unitNight":  s.locumRoleWeight(w, model.LocRegN, weekday),
		"cometDay":   s.locumRoleWeight(w, model.LocRegCMD, weekday),
		"weekdayLD":  s.locumRoleWeight(w, model.LocRegLD, weekday),
		"weekdaySD":  s.locumRoleWeight(w, model.LocSDAny, weekday),
	}

	if !(got["cometNight"] > got["unitNight"] && got["unitNight"] > got["cometDay"] && got["cometDay"] > got["weekdayLD"] && got["weekdayLD"] > got["weekdaySD"]) {
		t.Errorf("locum role ladder out of order: %+v", got)
	}
}

func TestLocumRoleWeightPrefersBankHolidayOverWeekendOverWeekday(t *testing.T) {
	in := smokeInput()
	in.Config.BankHolidays = []time.Time{mustDate("2025-02-05")}
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)
	w := in.Weights

	bankHolidayDay := idx.DayOf(mustDate("2025-02-05"))
	weekendDay := idx.DayOf(mustDate("2025-02-08")) // Saturday
	weekdayDay := idx.DayOf(mustDate("2025-02-04"))

	bh := s.locumRoleWeight(w, model.LocRegLD, bankHolidayDay)
	we := s.locumRoleWeight(w, model.LocRegLD, weekendDay)
	wd := s.locumRoleWeight(w, model.LocRegLD, weekdayDay)

	if !(bh > we && we > wd) {
		t.Errorf("LD locum weight ladder wrong: bankHoliday=%d weekend=%d weekday=%d", bh, we, wd)
	}
}

func TestLocumCostTermOnlyIncludesKnownVars(t *testing.T) {
	in := smokeInput()
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)

	expr := s.locumCostTerm(in.Weights)
	if expr == nil {
		t.Fatal("locumCostTerm returned nil")
	}
}

func TestSDDeviationTermSkipsRestrictedDays(t *testing.T) {
	in := smokeInput()
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)

	expr := s.sdDeviationTerm(in.Weights)
	if expr == nil {
		t.Fatal("sdDeviationTerm returned nil")
	}
	// A shortfall var must not exist for a weekend day.
	for d := range idx.Days {
		if idx.IsWeekend[d] && lib.M.Has(shortfallName(d)) {
			t.Errorf("unexpected SD shortfall indicator on weekend day %d", d)
		}
	}
}

func shortfallName(d int) string {
	return fmt.Sprintf("sd_shortfall_%d", d)
}

func TestFairnessBandSlackNarrowerThanHardBand(t *testing.T) {
	in := smokeInput()
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)

	expr := s.fairnessBandSlackTerm(in.Weights)
	if expr == nil {
		t.Fatal("fairnessBandSlackTerm returned nil")
	}
}

func TestPairwiseFairnessVarianceSkipsZeroWTE(t *testing.T) {
	in := smokeInput()
	in.Persons[3].WTE = 0
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)

	// Must not panic dividing by a zero WTE member.
	_ = s.pairwiseFairnessVarianceTerm(in.Weights)
}

func TestContinuityBonusBuildsRewardVars(t *testing.T) {
	in := smokeInput()
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)

	expr := s.continuityBonusTerm(in.Weights)
	if expr == nil {
		t.Fatal("continuityBonusTerm returned nil")
	}
}

func TestTrainingBandSlackOnlyAppliesToTeachingGrade(t *testing.T) {
	in := smokeInput()
	lib, idx := buildLibrary(t, in)
	s := NewShaper(lib, idx, in)

	expr := s.trainingBandSlackTerm(in.Weights)
	if expr == nil {
		t.Fatal("trainingBandSlackTerm returned nil")
	}
}
