package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPersonIsActiveOn(t *testing.T) {
	start := mustDate("2025-02-10")
	p := Person{EffectiveStart: &start}
	if p.IsActiveOn(mustDate("2025-02-09")) {
		t.Error("person should not be active before effective start")
	}
	if !p.IsActiveOn(mustDate("2025-02-10")) {
		t.Error("person should be active on effective start")
	}
	if !p.IsActiveOn(mustDate("2025-02-11")) {
		t.Error("person should be active after effective start")
	}
}

func TestPersonNoEffectiveStartAlwaysActive(t *testing.T) {
	p := Person{}
	if !p.IsActiveOn(mustDate("2020-01-01")) {
		t.Error("person with nil EffectiveStart is active from any date")
	}
}

func TestPersonFixedDayOffIgnoredAtFullWTE(t *testing.T) {
	mon := time.Monday
	p := Person{FixedDayOff: &mon, WTE: 1.0}
	if p.HasFixedDayOff(time.Monday) {
		t.Error("fixed day off only applies when WTE < 1")
	}
}

func TestPersonFixedDayOffAppliesBelowFullWTE(t *testing.T) {
	mon := time.Monday
	p := Person{FixedDayOff: &mon, WTE: 0.6}
	if !p.HasFixedDayOff(time.Monday) {
		t.Error("expected Monday to be the fixed day off")
	}
	if p.HasFixedDayOff(time.Tuesday) {
		t.Error("Tuesday is not the fixed day off")
	}
}

func TestPreassignmentIsHard(t *testing.T) {
	hard := []catalogue.Code{catalogue.LV, catalogue.SLV, catalogue.LTFT, catalogue.CPD, catalogue.OFF}
	for _, c := range hard {
		pa := Preassignment{Code: c}
		if !pa.IsHard() {
			t.Errorf("%s should be a hard preassignment", c)
		}
	}
	soft := []catalogue.Code{catalogue.SD, catalogue.LDR, catalogue.NR}
	for _, c := range soft {
		pa := Preassignment{Code: c}
		if pa.IsHard() {
			t.Errorf("%s should be a soft preassignment", c)
		}
	}
}

func TestConfigCometWeek(t *testing.T) {
	cfg := Config{CometMondays: []time.Time{mustDate("2025-02-03")}}
	if !cfg.IsCometWeek(mustDate("2025-02-03")) {
		t.Error("Monday itself should be in the CoMET week")
	}
	if !cfg.IsCometWeek(mustDate("2025-02-09")) {
		t.Error("Monday+6 (Sunday) should still be in the CoMET week")
	}
	if cfg.IsCometWeek(mustDate("2025-02-10")) {
		t.Error("Monday+7 should be outside the CoMET week")
	}
	if cfg.IsCometWeek(mustDate("2025-02-02")) {
		t.Error("the day before should be outside the CoMET week")
	}
}

func TestConfigSDBoundsDefault(t *testing.T) {
	cfg := Config{}
	lo, hi := cfg.SDWeekdayBounds()
	if lo != 1 || hi != 3 {
		t.Errorf("default SD bounds = [%d, %d], want [1, 3]", lo, hi)
	}
}

func TestDefaultWeightsTierOrdering(t *testing.T) {
	w := DefaultWeights()
	locums := []int{w.LocumCometNight, w.LocumUnitNight, w.LocumCometDay, w.LocumBankHolidayLD, w.LocumWeekendLD, w.LocumWeekdayLD, w.LocumWeekdaySD}
	for i := 1; i < len(locums); i++ {
		if locums[i-1] < locums[i] {
			t.Fatalf("locum ladder out of order at index %d: %v", i, locums)
		}
	}
	if w.LocumWeekdaySD <= w.PreassignmentViolation {
		t.Error("tier 1 (locums) must dominate tier 2 (preassignment violation)")
	}
	if w.ContinuityBonus >= w.TrainingBandSlack {
		t.Error("continuity bonus (tier 12) must be the smallest magnitude")
	}
}

func TestRosterSetAndCodeOn(t *testing.T) {
	p := Person{ID: uuid.New()}
	days := []time.Time{mustDate("2025-02-03"), mustDate("2025-02-04")}
	r := NewRoster(days, []Person{p})

	if r.CodeOn(p.ID, days[0]) != catalogue.OFF {
		t.Error("new roster should default to OFF")
	}

	r.Set(p.ID, days[0], catalogue.LDR)
	if r.CodeOn(p.ID, days[0]) != catalogue.LDR {
		t.Error("Set should update CodeOn")
	}
	if r.CodeOn(p.ID, days[1]) != catalogue.OFF {
		t.Error("setting one day must not affect another")
	}

	r.SetLocum(days[0], LocRegCMN, 1)
	if r.Days[0].LocumCounts[LocRegCMN] != 1 {
		t.Error("SetLocum should update the locum column")
	}
}

func TestRosterCodeOnUnknownDateReturnsOff(t *testing.T) {
	r := NewRoster(nil, nil)
	if r.CodeOn(uuid.New(), mustDate("2025-01-01")) != catalogue.OFF {
		t.Error("unknown date should default to OFF")
	}
}

func TestRosterPersonTimeline(t *testing.T) {
	p := Person{ID: uuid.New()}
	days := []time.Time{mustDate("2025-02-03"), mustDate("2025-02-04"), mustDate("2025-02-05")}
	r := NewRoster(days, []Person{p})
	r.Set(p.ID, days[1], catalogue.NR)

	timeline := r.PersonTimeline(p.ID)
	want := []catalogue.Code{catalogue.OFF, catalogue.NR, catalogue.OFF}
	for i := range want {
		if timeline[i] != want[i] {
			t.Errorf("timeline[%d] = %s, want %s", i, timeline[i], want[i])
		}
	}
}
