// Package model defines the core data model of the rostering engine: the
// clinicians, the horizon configuration, and the assignment outputs.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
)

// Person is a single clinician eligible for the roster.
type Person struct {
	ID       uuid.UUID
	Name     string
	Grade    catalogue.Grade
	WTE      float64 // whole-time-equivalent fraction, in [0.2, 1.0]

	// FixedDayOff is the weekday (a time.Weekday, so Sunday=0) a WTE<1 person never
	// works. Ignored when WTE == 1.
	FixedDayOff *time.Weekday

	CometEligible bool

	// EffectiveStart is the first date this person may be assigned any
	// code other than OFF. Nil means the horizon start.
	EffectiveStart *time.Time

	LeaveEntitlementDays int
	StudyLeaveDays       int
	CPDDays              int
}

// IsActiveOn reports whether the person may be assigned non-OFF codes on d.
func (p Person) IsActiveOn(d time.Time) bool {
	if p.EffectiveStart == nil {
		return true
	}
	return !d.Before(*p.EffectiveStart)
}

// HasFixedDayOff reports whether weekday w is this person's mandated day
// off. Only meaningful (and only checked by callers) for WTE < 1.
func (p Person) HasFixedDayOff(w time.Weekday) bool {
	return p.FixedDayOff != nil && *p.FixedDayOff == w && p.WTE < 1.0
}

// Preassignment overrides the solver's choice for a single (person, date).
// Absence codes are hard; every other code is soft, so a violation
// indicator is introduced and penalised rather than forced.
type Preassignment struct {
	PersonID uuid.UUID
	Date     time.Time
	Code     catalogue.Code
}

// IsHard reports whether this preassignment must hold unconditionally.
// Soft preassignments must never be allowed to override coverage or rest
// rules; hard ones are absence codes that cannot conflict with them.
func (pa Preassignment) IsHard() bool {
	switch pa.Code {
	case catalogue.LV, catalogue.SLV, catalogue.LTFT, catalogue.CPD, catalogue.OFF:
		return true
	default:
		return false
	}
}
