package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/spacedrep/internal/cli"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

func newReviewCommand() *cobra.Command {
	reviewCommand := &cobra.Command{
		Use:   "review",
		Short: "Review cards",
	}
	reviewCommand.AddCommand(
		newReviewSessionCommand(),
		newReviewRateCommand(),
		newReviewPreviewCommand(),
		newReviewReplayCommand(),
	)
	return reviewCommand
}

func newReviewSessionCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Review due cards interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd.Context(), "", func(ctx context.Context, env commandEnv) error {
				cards, err := env.service.Due(ctx, now(), limit)
				if err != nil {
					return err
				}
				session := cli.NewReviewSessionCLI(env.service, cards, now, cmd.InOrStdin(), cmd.OutOrStdout())
				return session.Run(ctx, session)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of cards in the session (0 for all due cards)")
	return cmd
}

func newReviewRateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <card id> <Again|Hard|Good|Easy|1-4>",
		Short: "Record a single review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseCardID(args[0])
			if err != nil {
				return err
			}
			var rating RatingFlag
			if err := rating.Set(args[1]); err != nil {
				return err
			}

			return runWithService(cmd.Context(), "", func(ctx context.Context, env commandEnv) error {
				card, err := env.service.Review(ctx, cardID, rating.Rating(), now())
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Card %d: %s, next review in %s on %s\n",
					card.ID, card.Phase, cli.FormatInterval(card.IntervalDays), card.DueAt.Format(time.DateOnly))
				return nil
			})
		},
	}
}

func newReviewPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <card id>",
		Short: "Show the outcome of each rating without recording anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseCardID(args[0])
			if err != nil {
				return err
			}

			return runWithService(cmd.Context(), "", func(ctx context.Context, env commandEnv) error {
				preview, err := env.service.Preview(ctx, cardID, now())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, rating := range scheduler.Ratings {
					state := preview[rating]
					printf(w, "%-6s %-10s %7s  due %s\n",
						rating, state.Phase, cli.FormatInterval(state.Interval), state.DueAt.Format(time.DateOnly))
				}
				return nil
			})
		},
	}
}

func newReviewReplayCommand() *cobra.Command {
	var strategy StrategyFlag
	cmd := &cobra.Command{
		Use:   "replay <card id>",
		Short: "Rebuild a card's schedule from its review history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseCardID(args[0])
			if err != nil {
				return err
			}

			return runWithService(cmd.Context(), strategy.Strategy(), func(ctx context.Context, env commandEnv) error {
				card, err := env.service.Replay(ctx, cardID)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Card %d replayed with %s: %s, due %s\n",
					card.ID, env.service.Scheduler().Strategy(), card.Phase, card.DueAt.Format(time.DateOnly))
				return nil
			})
		},
	}
	cmd.Flags().Var(&strategy, "strategy", "Scheduling strategy to replay with (fsrs, sm2). Defaults to the configured one")
	return cmd
}

func parseCardID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid card id %q", arg)
	}
	return id, nil
}
