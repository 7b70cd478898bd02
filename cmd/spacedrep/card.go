package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCardCommand() *cobra.Command {
	cardCommand := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}
	cardCommand.AddCommand(newCardAddCommand(), newCardListCommand())
	return cardCommand
}

func newCardAddCommand() *cobra.Command {
	var front, back string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new card that is due immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd.Context(), "", func(ctx context.Context, env commandEnv) error {
				card, err := env.service.AddCard(ctx, front, back, now())
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Added card %d: %s\n", card.ID, card.Front)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&front, "front", "", "Question side of the card")
	cmd.Flags().StringVar(&back, "back", "", "Answer side of the card")
	_ = cmd.MarkFlagRequired("front")
	return cmd
}

func newCardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all cards with their scheduling state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd.Context(), "", func(ctx context.Context, env commandEnv) error {
				cards, err := env.repo.FindAll(ctx)
				if err != nil {
					return fmt.Errorf("repo.FindAll() > %w", err)
				}

				w := cmd.OutOrStdout()
				printf(w, "%-6s %-10s %-10s %8s %s\n", "ID", "PHASE", "DUE", "INTERVAL", "FRONT")
				for _, card := range cards {
					printf(w, "%-6d %-10s %-10s %7dd %s\n",
						card.ID, card.Phase, card.DueAt.Format(time.DateOnly), card.IntervalDays, card.Front)
				}
				return nil
			})
		},
	}
}
