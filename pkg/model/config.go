package model

import "time"

// Config fixes the horizon boundaries and the calendar facts the
// constraint library and objective shaper need: bank holidays, CoMET
// rotation Mondays, training/induction day sets, and the short-day target
// band.
type Config struct {
	StartDate time.Time
	EndDate   time.Time

	BankHolidays []time.Time

	// CometMondays are the Mondays that open a CoMET week; a date is in a
	// CoMET week iff it falls in [Monday, Monday+6] for one of these.
	CometMondays []time.Time

	RegistrarTeachingDays []time.Time
	SHOTeachingDays       []time.Time
	PCCUTeachingDays      []time.Time
	InductionDays         []time.Time

	// SDWeekdayMin/Max bound the number of SD assignments on an ordinary
	// weekday (not a bank holiday, not an induction day). Defaults 1 and 3
	// per the coverage constraint if left at zero.
	SDWeekdayMin int
	SDWeekdayMax int

	// RandomSeed fixes CP-SAT tie-breaking so repeated solves over the
	// same input are deterministic.
	RandomSeed int64

	// NumSearchWorkers is the CP-SAT internal parallelism budget.
	NumSearchWorkers int32
}

func dateEqualsAny(d time.Time, set []time.Time) bool {
	for _, s := range set {
		if sameDate(d, s) {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsBankHoliday reports whether d is one of the configured bank holidays.
func (c Config) IsBankHoliday(d time.Time) bool {
	return dateEqualsAny(d, c.BankHolidays)
}

// IsInductionDay reports whether d is one of the configured induction days.
func (c Config) IsInductionDay(d time.Time) bool {
	return dateEqualsAny(d, c.InductionDays)
}

// IsRegistrarTeachingDay reports whether d is a configured registrar
// teaching day.
func (c Config) IsRegistrarTeachingDay(d time.Time) bool {
	return dateEqualsAny(d, c.RegistrarTeachingDays)
}

// IsSHOTeachingDay reports whether d is a configured SHO teaching day.
func (c Config) IsSHOTeachingDay(d time.Time) bool {
	return dateEqualsAny(d, c.SHOTeachingDays)
}

// IsPCCUTeachingDay reports whether d is a configured PCCU teaching day.
func (c Config) IsPCCUTeachingDay(d time.Time) bool {
	return dateEqualsAny(d, c.PCCUTeachingDays)
}

// CometWeekMonday returns the CoMET Monday that covers d, and true, if d
// falls within [Monday, Monday+6] for any configured Monday.
func (c Config) CometWeekMonday(d time.Time) (time.Time, bool) {
	for _, monday := range c.CometMondays {
		end := monday.AddDate(0, 0, 6)
		if !d.Before(monday) && !d.After(end) {
			return monday, true
		}
	}
	return time.Time{}, false
}

// IsCometWeek reports whether d falls within any configured CoMET week.
func (c Config) IsCometWeek(d time.Time) bool {
	_, ok := c.CometWeekMonday(d)
	return ok
}

// sdBounds returns the configured SD band, defaulting to [1, 3].
func (c Config) sdBounds() (int, int) {
	lo, hi := c.SDWeekdayMin, c.SDWeekdayMax
	if lo == 0 && hi == 0 {
		return 1, 3
	}
	return lo, hi
}

// SDWeekdayBounds is the public accessor for the (possibly defaulted)
// weekday SD target band.
func (c Config) SDWeekdayBounds() (int, int) { return c.sdBounds() }

// SearchWorkers returns the configured CP-SAT worker count, defaulting to
// 8 when unset.
func (c Config) SearchWorkers() int32 {
	if c.NumSearchWorkers == 0 {
		return 8
	}
	return c.NumSearchWorkers
}
