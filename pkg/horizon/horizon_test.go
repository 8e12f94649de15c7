package horizon

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/model"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildOrdersDaysInclusive(t *testing.T) {
	cfg := model.Config{StartDate: mustDate("2025-02-03"), EndDate: mustDate("2025-02-05")}
	idx := Build(cfg, nil)
	if idx.NumDays() != 3 {
		t.Fatalf("NumDays() = %d, want 3", idx.NumDays())
	}
	want := []time.Time{mustDate("2025-02-03"), mustDate("2025-02-04"), mustDate("2025-02-05")}
	for i, d := range want {
		if !idx.Days[i].Equal(d) {
			t.Errorf("Days[%d] = %v, want %v", i, idx.Days[i], d)
		}
	}
}

func TestBuildWeekendMask(t *testing.T) {
	cfg := model.Config{StartDate: mustDate("2025-02-01"), EndDate: mustDate("2025-02-04")}
	idx := Build(cfg, nil)
	// 2025-02-01 is a Saturday.
	want := []bool{true, true, false, false}
	for i, w := range want {
		if idx.IsWeekend[i] != w {
			t.Errorf("IsWeekend[%d] = %v, want %v", i, idx.IsWeekend[i], w)
		}
	}
}

func TestBuildBankHolidayMask(t *testing.T) {
	hol := mustDate("2025-02-04")
	cfg := model.Config{StartDate: mustDate("2025-02-03"), EndDate: mustDate("2025-02-05"), BankHolidays: []time.Time{hol}}
	idx := Build(cfg, nil)
	if idx.IsBankHoliday[0] || !idx.IsBankHoliday[1] || idx.IsBankHoliday[2] {
		t.Errorf("bank holiday mask = %v, want [false true false]", idx.IsBankHoliday)
	}
}

func TestBuildCometWeekMask(t *testing.T) {
	mon := mustDate("2025-02-03")
	cfg := model.Config{StartDate: mon, EndDate: mon.AddDate(0, 0, 7), CometMondays: []time.Time{mon}}
	idx := Build(cfg, nil)
	for i := 0; i < 7; i++ {
		if !idx.IsCometWeek[i] {
			t.Errorf("IsCometWeek[%d] = false, want true (within CoMET week)", i)
		}
	}
	if idx.IsCometWeek[7] {
		t.Error("day 7 (Monday+7) should be outside the CoMET week")
	}
}

func TestPersonIndex(t *testing.T) {
	p1, p2 := model.Person{ID: uuid.New()}, model.Person{ID: uuid.New()}
	cfg := model.Config{StartDate: mustDate("2025-02-03"), EndDate: mustDate("2025-02-03")}
	idx := Build(cfg, []model.Person{p1, p2})
	if idx.PersonOf(p1.ID) != 0 || idx.PersonOf(p2.ID) != 1 {
		t.Error("person index out of order")
	}
	if idx.PersonOf(uuid.New()) != -1 {
		t.Error("unknown person should return -1")
	}
}

func TestDayOfUnknownDateReturnsNegativeOne(t *testing.T) {
	cfg := model.Config{StartDate: mustDate("2025-02-03"), EndDate: mustDate("2025-02-03")}
	idx := Build(cfg, nil)
	if idx.DayOf(mustDate("2099-01-01")) != -1 {
		t.Error("DayOf outside horizon should return -1")
	}
}

func TestActiveDayCountRespectsEffectiveStart(t *testing.T) {
	start := mustDate("2025-02-04")
	p := model.Person{ID: uuid.New(), EffectiveStart: &start}
	cfg := model.Config{StartDate: mustDate("2025-02-03"), EndDate: mustDate("2025-02-06")}
	idx := Build(cfg, []model.Person{p})
	if got := idx.ActiveDayCount(p); got != 3 {
		t.Errorf("ActiveDayCount = %d, want 3", got)
	}
}

func TestWeekendsHandlesBoundaryHalfWeekend(t *testing.T) {
	// Horizon starts on a Sunday, mid-weekend.
	cfg := model.Config{StartDate: mustDate("2025-02-02"), EndDate: mustDate("2025-02-09")}
	idx := Build(cfg, nil)
	wes := idx.Weekends()
	if len(wes) != 2 {
		t.Fatalf("got %d weekends, want 2", len(wes))
	}
	if !wes[0].Saturday.IsZero() {
		t.Error("first weekend should be a lone Sunday with zero Saturday")
	}
	if wes[1].Saturday.IsZero() || wes[1].Sunday.IsZero() {
		t.Error("second weekend should be a full Saturday+Sunday pair")
	}
}

func TestNumWeeks(t *testing.T) {
	cfg := model.Config{StartDate: mustDate("2025-02-03"), EndDate: mustDate("2025-02-16")} // 14 days
	idx := Build(cfg, nil)
	if idx.NumWeeks() != 2 {
		t.Errorf("NumWeeks() = %d, want 2", idx.NumWeeks())
	}
}
