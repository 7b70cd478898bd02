package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDueCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List cards that are due for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd.Context(), "", func(ctx context.Context, env commandEnv) error {
				at := now()
				cards, err := env.service.Due(ctx, at, limit)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if len(cards) == 0 {
					printf(w, "No cards due.\n")
					return nil
				}
				printf(w, "%-6s %-10s %-10s %6s %s\n", "ID", "PHASE", "DUE", "RECALL", "FRONT")
				for _, card := range cards {
					recall := "-"
					if r, ok := card.State().Retrievability(at); ok {
						recall = fmt.Sprintf("%.0f%%", r*100)
					}
					printf(w, "%-6d %-10s %-10s %6s %s\n",
						card.ID, card.Phase, card.DueAt.Format(time.DateOnly), recall, card.Front)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of cards to list (0 for all)")
	return cmd
}
