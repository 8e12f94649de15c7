package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/picu-roster/engine/pkg/logger"
	"github.com/picu-roster/engine/pkg/report"
	"github.com/picu-roster/engine/pkg/roster"
)

func newSolveCommand() *cobra.Command {
	var (
		inputPath     string
		strategy      string
		jsonOut       string
		nightsTimeout time.Duration
		fullTimeout   time.Duration
		stagedTimeout time.Duration
		workers       int
		seed          int64
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a roster problem loaded from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(logger.DefaultConfig())

			in, err := loadProblemFile(inputPath)
			if err != nil {
				return err
			}

			params := roster.DefaultParams()
			params.Strategy = roster.Strategy(strategy)
			params.Global.NightsOnlyTimeout = nightsTimeout
			params.Global.FullTimeout = fullTimeout
			params.Global.NumSearchWorkers = workers
			params.Global.RandomSeed = seed
			params.StagedTimeout = stagedTimeout

			ctx, cancel := context.WithTimeout(context.Background(), nightsTimeout+fullTimeout+stagedTimeout+30*time.Second)
			defer cancel()

			out, err := roster.Solve(ctx, in, params)
			if err != nil {
				return fmt.Errorf("solve: %w", err)
			}

			if jsonOut != "" {
				return writeJSON(jsonOut, out)
			}
			return report.TerminalRenderer{}.Render(os.Stdout, out.Roster, out.Breaches, out.Summary)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON problem file (required)")
	cmd.Flags().StringVar(&strategy, "strategy", string(roster.StrategyGlobal), "solver strategy: global or staged")
	cmd.Flags().StringVar(&jsonOut, "json-out", "", "write the solved outcome as JSON to this path instead of the terminal report")
	cmd.Flags().DurationVar(&nightsTimeout, "nights-timeout", 60*time.Second, "global strategy: nights-only pass deadline")
	cmd.Flags().DurationVar(&fullTimeout, "full-timeout", 300*time.Second, "global strategy: full-objective pass deadline")
	cmd.Flags().DurationVar(&stagedTimeout, "staged-timeout", 120*time.Second, "staged strategy: per-stage CP sub-solve deadline")
	cmd.Flags().IntVar(&workers, "search-workers", 8, "CP-SAT search worker count")
	cmd.Flags().Int64Var(&seed, "random-seed", 42, "CP-SAT random seed")
	cmd.MarkFlagRequired("input")

	return cmd
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
