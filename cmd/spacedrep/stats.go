package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/spacedrep/internal/pdf"
	"github.com/at-ishikawa/spacedrep/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	var year, month int
	var pdfPath string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show review statistics per month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("invalid --month %d", month)
			}

			return runWithService(cmd.Context(), "", func(ctx context.Context, env commandEnv) error {
				logs, err := env.repo.FindAllReviewLogs(ctx)
				if err != nil {
					return fmt.Errorf("repo.FindAllReviewLogs() > %w", err)
				}
				report, err := statistics.RenderMarkdown(
					env.cfg.Outputs.StatisticsTemplate,
					statsTitle(year, month),
					statistics.CalculateStatistics(logs, year, month),
				)
				if err != nil {
					return err
				}

				if pdfPath == "" {
					printf(cmd.OutOrStdout(), "%s", report)
					return nil
				}

				markdownPath := pdfPath
				if filepath.Dir(markdownPath) == "." {
					markdownPath = filepath.Join(env.cfg.Outputs.ReportDirectory, markdownPath)
				}
				if err := os.MkdirAll(filepath.Dir(markdownPath), 0o755); err != nil {
					return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(markdownPath), err)
				}
				if err := os.WriteFile(markdownPath, []byte(report), 0o644); err != nil {
					return fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
				}
				output, err := pdf.ConvertMarkdownToPDF(markdownPath)
				if err != nil {
					return fmt.Errorf("pdf.ConvertMarkdownToPDF() > %w", err)
				}
				printf(cmd.OutOrStdout(), "Report written to %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Only include reviews in this year")
	cmd.Flags().IntVar(&month, "month", 0, "Only include reviews in this month (requires --year)")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Write the report to this markdown file and convert it to PDF")
	return cmd
}

func statsTitle(year, month int) string {
	switch {
	case year == 0:
		return "Review statistics"
	case month == 0:
		return fmt.Sprintf("Review statistics %d", year)
	default:
		return fmt.Sprintf("Review statistics %d-%02d", year, month)
	}
}
