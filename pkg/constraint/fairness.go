package constraint

import (
	"fmt"
	"math"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

// CometWTEDiscount is the effective-WTE multiplier applied to
// CoMET-eligible registrars' LD/night fairness shares, reflecting their
// additional CoMET workload.
const CometWTEDiscount = 0.8

// FairnessGroup is one {grade × shift-class} band the hard ±25% rule
// applies to. Exported so the objective package can reuse the same
// groups for the softer tier 9 and 10 fairness penalties.
type FairnessGroup struct {
	Name    string
	Grade   catalogue.Grade
	Codes   []catalogue.Code
	Comet   bool // true for LD/night groups, where CoMET registrars get the 0.8 discount
	Weekend bool // true for the weekend group, which reads the weworked_* flags instead of codes
}

// FairnessGroups lists every {grade × shift-class} band.
func FairnessGroups() []FairnessGroup {
	return []FairnessGroup{
		{Name: "reg_ld", Grade: catalogue.GradeRegistrar, Codes: []catalogue.Code{catalogue.LDR, catalogue.CMD}, Comet: true},
		{Name: "reg_night", Grade: catalogue.GradeRegistrar, Codes: []catalogue.Code{catalogue.NR, catalogue.CMN}, Comet: true},
		{Name: "sho_ld", Grade: catalogue.GradeSHO, Codes: []catalogue.Code{catalogue.LDS}},
		{Name: "sho_night", Grade: catalogue.GradeSHO, Codes: []catalogue.Code{catalogue.NS}},
		{Name: "reg_weekend", Grade: catalogue.GradeRegistrar, Weekend: true},
		{Name: "sho_weekend", Grade: catalogue.GradeSHO, Weekend: true},
	}
}

// EmitFairnessBands enforces the hard WTE-weighted fairness band (±25%,
// widened by an additive ±1 cushion when the expected share is below 2)
// for each {grade × shift-class} group. Must run after
// EmitWeekendFrequencyCap, which builds the weworked_* flags the weekend
// groups read.
func EmitFairnessBands(lib *Library) error {
	for _, g := range FairnessGroups() {
		members := MembersOf(lib, g.Grade)
		if len(members) == 0 {
			continue
		}

		weights := make(map[int]float64, len(members))
		denom := 0.0
		for i, p := range members {
			w := p.WTE
			if g.Comet && p.CometEligible {
				w *= CometWTEDiscount
			}
			active := float64(lib.H.ActiveDayCount(p))
			weights[i] = w * active
			denom += w * active
		}
		if denom <= 0 {
			continue
		}

		totalRequired := GroupTotalRequired(lib, g)
		if totalRequired <= 0 {
			continue
		}

		for i, p := range members {
			actual := GroupActualExpr(lib, g, p)
			expected := totalRequired * weights[i] / denom

			cushion := 0.0
			if expected < 2 {
				cushion = 1
			}
			lo := int64(math.Ceil(0.75*expected - cushion))
			hi := int64(math.Floor(1.25*expected + cushion))
			if lo < 0 {
				lo = 0
			}
			if hi < lo {
				hi = lo
			}

			lib.M.GreaterOrEqual(actual, cpsatConstant(lo))
			lib.M.LessOrEqual(actual, cpsatConstant(hi))
		}
	}
	return nil
}

// MembersOf returns every person of the given grade, in horizon order.
func MembersOf(lib *Library, grade catalogue.Grade) []model.Person {
	var out []model.Person
	for _, p := range lib.H.Persons {
		if p.Grade == grade {
			out = append(out, p)
		}
	}
	return out
}

// GroupTotalRequired is the host-computed (non-decision-variable) count
// of coverage slots the shift class fills over the horizon: one role
// slot per applicable day, summed. This is the "totalRequired" the
// expected-share formula distributes across the group's members.
func GroupTotalRequired(lib *Library, g FairnessGroup) float64 {
	if g.Weekend {
		return float64(len(lib.H.Weekends()))
	}
	days := 0
	cometDays := 0
	for d := range lib.H.Days {
		days++
		if lib.H.IsCometWeek[d] {
			cometDays++
		}
	}
	hasComet := false
	for _, c := range g.Codes {
		if c == catalogue.CMD || c == catalogue.CMN {
			hasComet = true
		}
	}
	if hasComet {
		return float64(days + cometDays)
	}
	return float64(days)
}

// GroupActualExpr sums the decision variables that count toward a
// person's share of this fairness group: the group's codes across every
// day for code-based groups, or the weekend-worked flags for the
// weekend group.
func GroupActualExpr(lib *Library, g FairnessGroup, p model.Person) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	if g.Weekend {
		for wi := range lib.H.Weekends() {
			name := fmt.Sprintf("weworked_%s_%d", p.ID, wi)
			if lib.M.Has(name) {
				expr.Add(lib.M.Var(name))
			}
		}
		return expr
	}
	for d := range lib.H.Days {
		for _, c := range g.Codes {
			if lib.HasVar(p.ID, d, c) {
				expr.Add(lib.M.Var(AssignName(p.ID, d, c)))
			}
		}
	}
	return expr
}
