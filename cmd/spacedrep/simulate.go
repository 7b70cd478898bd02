package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/spacedrep/internal/cli"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

func newSimulateCommand() *cobra.Command {
	var strategy StrategyFlag
	var start string
	cmd := &cobra.Command{
		Use:   "simulate <rating>...",
		Short: "Schedule a fresh card through a rating sequence, reviewing on each due date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratings, err := parseRatings(args)
			if err != nil {
				return err
			}
			at := now().UTC()
			if start != "" {
				at, err = time.Parse(time.DateOnly, start)
				if err != nil {
					return fmt.Errorf("invalid --start %q: %w", start, err)
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Scheduler.Strategy = string(strategy)
			}
			s, err := cfg.Scheduler.NewScheduler()
			if err != nil {
				return fmt.Errorf("cfg.Scheduler.NewScheduler() > %w", err)
			}

			w := cmd.OutOrStdout()
			printf(w, "strategy: %s\n", s.Strategy())
			printf(w, "%-3s %-10s %-6s %-10s %9s %10s %5s %8s %-10s\n",
				"#", "REVIEWED", "RATING", "PHASE", "STABILITY", "DIFFICULTY", "EASE", "INTERVAL", "DUE")
			state := scheduler.NewState(at)
			for i, rating := range ratings {
				reviewedAt := state.DueAt
				state = s.Schedule(state, rating, reviewedAt)
				printf(w, "%-3d %-10s %-6s %-10s %9.2f %10.2f %5.2f %8s %-10s\n",
					i+1, reviewedAt.Format(time.DateOnly), rating, state.Phase,
					state.Stability, state.Difficulty, state.EaseFactor,
					cli.FormatInterval(state.Interval), state.DueAt.Format(time.DateOnly))
			}
			return nil
		},
	}
	cmd.Flags().Var(&strategy, "strategy", "Scheduling strategy (fsrs, sm2). Defaults to the configured one")
	cmd.Flags().StringVar(&start, "start", "", "Date of the first review (YYYY-MM-DD). Defaults to today")
	return cmd
}
