// Package statistics summarizes review logs by period.
package statistics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/at-ishikawa/spacedrep/internal/assets"
	"github.com/at-ishikawa/spacedrep/internal/learning"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

// ReviewStatistics holds statistics for a time period
type ReviewStatistics struct {
	Period        string // "2025-01"
	Reviews       int    // Total reviews
	ReviewedCards int    // Unique cards reviewed
	NewCards      int    // Cards reviewed for the first time
	Lapses        int    // Again on a learned card
	LapsedCards   int    // Unique cards that lapsed
	Retention     float64
}

// AggregateStatistics holds totals across all periods with global unique counts
type AggregateStatistics struct {
	Reviews       int
	ReviewedCards int // Deduplicated across periods
	NewCards      int
	Lapses        int
	LapsedCards   int // Deduplicated across periods
	Retention     float64
}

// StatisticsResult holds both per-period and aggregate statistics
type StatisticsResult struct {
	Periods   []ReviewStatistics
	Aggregate AggregateStatistics
}

type periodData struct {
	reviews       int
	reviewedCards map[int64]struct{}
	newCards      int
	lapses        int
	lapsedCards   map[int64]struct{}
	matureReviews int
	matureRecalls int
}

func newPeriodData() *periodData {
	return &periodData{
		reviewedCards: make(map[int64]struct{}),
		lapsedCards:   make(map[int64]struct{}),
	}
}

// add counts one log. Retention only considers reviews of cards in the
// Review phase, since learning steps say little about long-term memory.
func (d *periodData) add(log learning.ReviewLog) {
	d.reviews++
	d.reviewedCards[log.CardID] = struct{}{}
	if log.PreviousPhase == scheduler.New {
		d.newCards++
	}
	if log.IsLapse() {
		d.lapses++
		d.lapsedCards[log.CardID] = struct{}{}
	}
	if log.PreviousPhase == scheduler.Review {
		d.matureReviews++
		if log.Rating != scheduler.Again {
			d.matureRecalls++
		}
	}
}

func (d *periodData) retention() float64 {
	if d.matureReviews == 0 {
		return 0
	}
	return float64(d.matureRecalls) / float64(d.matureReviews)
}

// CalculateStatistics calculates review statistics per month.
// It accepts optional year and month filters (0 means no filter).
func CalculateStatistics(logs []learning.ReviewLog, year, month int) StatisticsResult {
	stats := make(map[string]*periodData)
	total := newPeriodData()

	for _, log := range logs {
		if log.ReviewedAt.IsZero() {
			continue
		}
		reviewedAt := log.ReviewedAt.UTC()
		logYear := reviewedAt.Year()
		logMonth := int(reviewedAt.Month())
		if !matchesFilter(logYear, logMonth, year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", logYear, logMonth)
		if stats[period] == nil {
			stats[period] = newPeriodData()
		}
		stats[period].add(log)
		total.add(log)
	}

	return buildResult(stats, total)
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}

func buildResult(stats map[string]*periodData, total *periodData) StatisticsResult {
	periods := make([]ReviewStatistics, 0, len(stats))
	for period, data := range stats {
		periods = append(periods, ReviewStatistics{
			Period:        period,
			Reviews:       data.reviews,
			ReviewedCards: len(data.reviewedCards),
			NewCards:      data.newCards,
			Lapses:        data.lapses,
			LapsedCards:   len(data.lapsedCards),
			Retention:     data.retention(),
		})
	}

	// Sort by period descending (newest first)
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return StatisticsResult{
		Periods: periods,
		Aggregate: AggregateStatistics{
			Reviews:       total.reviews,
			ReviewedCards: len(total.reviewedCards),
			NewCards:      total.newCards,
			Lapses:        total.lapses,
			LapsedCards:   len(total.lapsedCards),
			Retention:     total.retention(),
		},
	}
}

// Report is the data handed to the statistics template.
type Report struct {
	Title  string
	Result StatisticsResult
}

// RenderMarkdown renders the result with the template at templatePath, or
// the embedded one when templatePath is empty.
func RenderMarkdown(templatePath, title string, result StatisticsResult) (string, error) {
	tmpl, err := assets.ParseStatisticsTemplate(templatePath)
	if err != nil {
		return "", fmt.Errorf("assets.ParseStatisticsTemplate() > %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, Report{Title: title, Result: result}); err != nil {
		return "", fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return sb.String(), nil
}
