package report

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/horizon"
	"github.com/picu-roster/engine/pkg/model"
)

// PersonStat is one person's workload summary over the solved horizon.
type PersonStat struct {
	PersonID      uuid.UUID `json:"person_id"`
	Name          string    `json:"name"`
	Grade         catalogue.Grade
	TotalHours    float64 `json:"total_hours"`
	NightCount    int     `json:"night_count"`
	LongDayCount  int     `json:"long_day_count"`
	WeekendCount  int     `json:"weekend_count"`
	DeviationPct  float64 `json:"deviation_pct"` // vs. grade-average total hours
}

// GradeStat aggregates fairness dispersion across one grade's members.
type GradeStat struct {
	Grade         catalogue.Grade
	AvgHours      float64 `json:"avg_hours"`
	HoursGini     float64 `json:"hours_gini"`
	NightGini     float64 `json:"night_gini"`
}

// Summary is the full per-person / per-grade statistics breakdown.
type Summary struct {
	Persons []PersonStat
	Grades  []GradeStat
}

// Build computes a Summary from a finished roster.
func Build(h horizon.Index, in model.ProblemInput, roster model.Roster) Summary {
	stats := make([]PersonStat, 0, len(in.Persons))
	byGrade := make(map[catalogue.Grade][]PersonStat)

	for _, p := range in.Persons {
		st := PersonStat{PersonID: p.ID, Name: p.Name, Grade: p.Grade}
		timeline := roster.PersonTimeline(p.ID)
		for _, c := range timeline {
			st.TotalHours += catalogue.Hours(c)
			if catalogue.IsNight(c) {
				st.NightCount++
			}
			if catalogue.IsLong(c) && !catalogue.IsNight(c) {
				st.LongDayCount++
			}
		}
		for _, we := range h.Weekends() {
			worked := false
			if !we.Saturday.IsZero() && catalogue.Hours(roster.CodeOn(p.ID, we.Saturday)) > 0 {
				worked = true
			}
			if !we.Sunday.IsZero() && catalogue.Hours(roster.CodeOn(p.ID, we.Sunday)) > 0 {
				worked = true
			}
			if worked {
				st.WeekendCount++
			}
		}
		stats = append(stats, st)
		byGrade[p.Grade] = append(byGrade[p.Grade], st)
	}

	grades := make([]catalogue.Grade, 0, len(byGrade))
	for g := range byGrade {
		grades = append(grades, g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i] < grades[j] })

	gradeStats := make([]GradeStat, 0, len(grades))
	for _, g := range grades {
		members := byGrade[g]
		hours := make([]float64, len(members))
		nights := make([]float64, len(members))
		for i, m := range members {
			hours[i] = m.TotalHours
			nights[i] = float64(m.NightCount)
		}
		avg := mean(hours)
		for i := range members {
			if avg > 0 {
				members[i].DeviationPct = (members[i].TotalHours - avg) / avg * 100
			}
		}
		gradeStats = append(gradeStats, GradeStat{
			Grade:     g,
			AvgHours:  avg,
			HoursGini: gini(hours),
			NightGini: gini(nights),
		})
	}

	// Flatten the per-grade deviation updates back into the person list,
	// preserving the original person order for deterministic output.
	personOrder := make(map[uuid.UUID]int, len(stats))
	for i, st := range stats {
		personOrder[st.PersonID] = i
	}
	for _, members := range byGrade {
		for _, m := range members {
			stats[personOrder[m.PersonID]] = m
		}
	}

	return Summary{Persons: stats, Grades: gradeStats}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// gini computes the Gini coefficient of values (0 = perfectly even,
// 1 = maximally uneven).
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
