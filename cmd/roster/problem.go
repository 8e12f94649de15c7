package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/model"
)

const dateLayout = "2006-01-02"

// problemFile is the CLI's own JSON encoding of a model.ProblemInput.
// Loading problem data from disk is a convenience this command offers
// for its own sake, not the CSV/YAML/Excel loader layer the engine
// itself leaves out of scope: pkg/model carries no JSON tags, and a
// caller wiring in a real file format implements roster.ProblemSource
// directly instead of going through this struct.
type problemFile struct {
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	BankHolidays []string `json:"bank_holidays,omitempty"`
	CometMondays []string `json:"comet_mondays,omitempty"`

	Persons []personFile `json:"persons"`
}

type personFile struct {
	Name          string  `json:"name"`
	Grade         string  `json:"grade"`
	WTE           float64 `json:"wte"`
	CometEligible bool    `json:"comet_eligible,omitempty"`
	FixedDayOff   string  `json:"fixed_day_off,omitempty"` // e.g. "Wednesday"
}

func loadProblemFile(path string) (model.ProblemInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.ProblemInput{}, fmt.Errorf("reading problem file: %w", err)
	}
	var pf problemFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return model.ProblemInput{}, fmt.Errorf("parsing problem file: %w", err)
	}
	return pf.toProblemInput()
}

func (pf problemFile) toProblemInput() (model.ProblemInput, error) {
	start, err := time.Parse(dateLayout, pf.StartDate)
	if err != nil {
		return model.ProblemInput{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := time.Parse(dateLayout, pf.EndDate)
	if err != nil {
		return model.ProblemInput{}, fmt.Errorf("end_date: %w", err)
	}

	holidays, err := parseDates(pf.BankHolidays)
	if err != nil {
		return model.ProblemInput{}, fmt.Errorf("bank_holidays: %w", err)
	}
	comets, err := parseDates(pf.CometMondays)
	if err != nil {
		return model.ProblemInput{}, fmt.Errorf("comet_mondays: %w", err)
	}

	persons := make([]model.Person, 0, len(pf.Persons))
	for _, p := range pf.Persons {
		grade, err := parseGrade(p.Grade)
		if err != nil {
			return model.ProblemInput{}, fmt.Errorf("person %q: %w", p.Name, err)
		}
		person := model.Person{
			ID:            uuid.New(),
			Name:          p.Name,
			Grade:         grade,
			WTE:           p.WTE,
			CometEligible: p.CometEligible,
		}
		if p.FixedDayOff != "" {
			wd, err := parseWeekday(p.FixedDayOff)
			if err != nil {
				return model.ProblemInput{}, fmt.Errorf("person %q: %w", p.Name, err)
			}
			person.FixedDayOff = &wd
		}
		persons = append(persons, person)
	}

	return model.ProblemInput{
		Persons: persons,
		Config: model.Config{
			StartDate:    start,
			EndDate:      end,
			BankHolidays: holidays,
			CometMondays: comets,
		},
		Weights: model.DefaultWeights(),
	}, nil
}

func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseGrade(s string) (catalogue.Grade, error) {
	switch s {
	case string(catalogue.GradeRegistrar):
		return catalogue.GradeRegistrar, nil
	case string(catalogue.GradeSHO):
		return catalogue.GradeSHO, nil
	case string(catalogue.GradeSupernumerary):
		return catalogue.GradeSupernumerary, nil
	default:
		return "", fmt.Errorf("unknown grade %q", s)
	}
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
