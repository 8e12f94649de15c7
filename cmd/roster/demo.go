package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/picu-roster/engine/pkg/catalogue"
	"github.com/picu-roster/engine/pkg/logger"
	"github.com/picu-roster/engine/pkg/model"
	"github.com/picu-roster/engine/pkg/report"
	"github.com/picu-roster/engine/pkg/roster"
)

func newDemoCommand() *cobra.Command {
	var (
		registrars int
		shos       int
		weeks      int
		strategy   string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Solve a synthetic roster for quick smoke-testing the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(logger.DefaultConfig())

			in := syntheticProblem(registrars, shos, weeks)
			params := roster.DefaultParams()
			params.Strategy = roster.Strategy(strategy)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			out, err := roster.Solve(ctx, in, params)
			if err != nil {
				return fmt.Errorf("solve: %w", err)
			}
			return report.TerminalRenderer{}.Render(os.Stdout, out.Roster, out.Breaches, out.Summary)
		},
	}

	cmd.Flags().IntVar(&registrars, "registrars", 6, "number of registrars to generate")
	cmd.Flags().IntVar(&shos, "shos", 6, "number of SHOs to generate")
	cmd.Flags().IntVar(&weeks, "weeks", 4, "horizon length in weeks, starting next Monday (today, if today is a Monday)")
	cmd.Flags().StringVar(&strategy, "strategy", string(roster.StrategyStaged), "solver strategy: global or staged")

	return cmd
}

// syntheticProblem generates a deterministic-shape roster problem: full
// WTE registrars and SHOs, every other registrar CoMET-eligible, a
// CoMET week opening on the horizon's first Monday, for quick manual
// exercising of the full A-F pipeline without a JSON fixture on disk.
func syntheticProblem(registrars, shos, weeks int) model.ProblemInput {
	start := nextMonday(time.Now())
	end := start.AddDate(0, 0, weeks*7-1)

	persons := make([]model.Person, 0, registrars+shos)
	for i := 0; i < registrars; i++ {
		persons = append(persons, model.Person{
			ID:            uuid.New(),
			Name:          fmt.Sprintf("Registrar %d", i+1),
			Grade:         catalogue.GradeRegistrar,
			WTE:           1.0,
			CometEligible: i%2 == 0,
		})
	}
	for i := 0; i < shos; i++ {
		persons = append(persons, model.Person{
			ID:    uuid.New(),
			Name:  fmt.Sprintf("SHO %d", i+1),
			Grade: catalogue.GradeSHO,
			WTE:   1.0,
		})
	}

	return model.ProblemInput{
		Persons: persons,
		Config: model.Config{
			StartDate:    start,
			EndDate:      end,
			CometMondays: []time.Time{start},
		},
		Weights: model.DefaultWeights(),
	}
}

func nextMonday(from time.Time) time.Time {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}
