// Package datasync copies cards and review logs between stores, for example
// from the YAML files into a database.
package datasync

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/spacedrep/internal/learning"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	CardsNew     int
	CardsSkipped int
	CardsUpdated int
	LogsNew      int
	LogsSkipped  int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool
	// UpdateExisting overwrites the scheduling state of cards that already
	// exist in the target. Their review logs are never copied twice.
	UpdateExisting bool
}

// Importer reads cards from one repository and writes them to another.
type Importer struct {
	source learning.Repository
	target learning.Repository
	writer io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(source, target learning.Repository, writer io.Writer) *Importer {
	return &Importer{
		source: source,
		target: target,
		writer: writer,
	}
}

type cardKey struct {
	front string
	back  string
}

// Import copies every source card that is not yet in the target, matched by
// front and back, along with its review logs.
func (imp *Importer) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	sourceCards, err := imp.source.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("source.FindAll() > %w", err)
	}
	targetCards, err := imp.target.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("target.FindAll() > %w", err)
	}
	existing := make(map[cardKey]learning.Card, len(targetCards))
	for _, c := range targetCards {
		existing[cardKey{c.Front, c.Back}] = c
	}

	var result ImportResult
	// source card ID -> target card ID for cards whose logs must be copied
	newIDs := make(map[int64]int64)

	for _, card := range sourceCards {
		card = card.UTC()
		key := cardKey{card.Front, card.Back}
		if found, ok := existing[key]; ok {
			if !opts.UpdateExisting {
				fmt.Fprintf(imp.writer, "  [SKIP]  %q\n", card.Front)
				result.CardsSkipped++
				continue
			}

			updated := found
			updated.ApplyState(card.State())
			updated.UpdatedAt = card.UpdatedAt
			if !opts.DryRun {
				if err := imp.target.UpdateState(ctx, &updated); err != nil {
					return nil, fmt.Errorf("target.UpdateState(%d) > %w", found.ID, err)
				}
			}
			fmt.Fprintf(imp.writer, "  [UPDATE]  %q\n", card.Front)
			result.CardsUpdated++
			continue
		}

		sourceID := card.ID
		created := card
		created.ID = 0
		if !opts.DryRun {
			if err := imp.target.Create(ctx, &created); err != nil {
				return nil, fmt.Errorf("target.Create(%q) > %w", card.Front, err)
			}
		}
		existing[key] = created
		newIDs[sourceID] = created.ID
		fmt.Fprintf(imp.writer, "  [NEW]  %q\n", card.Front)
		result.CardsNew++
	}

	if err := imp.importReviewLogs(ctx, newIDs, opts, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (imp *Importer) importReviewLogs(ctx context.Context, newIDs map[int64]int64, opts ImportOptions, result *ImportResult) error {
	logs, err := imp.source.FindAllReviewLogs(ctx)
	if err != nil {
		return fmt.Errorf("source.FindAllReviewLogs() > %w", err)
	}

	var toCreate []*learning.ReviewLog
	for _, l := range logs {
		targetID, ok := newIDs[l.CardID]
		if !ok {
			result.LogsSkipped++
			continue
		}
		copied := l.UTC()
		copied.ID = 0
		copied.CardID = targetID
		toCreate = append(toCreate, &copied)
	}

	if !opts.DryRun && len(toCreate) > 0 {
		if err := imp.target.BatchCreateReviewLogs(ctx, toCreate); err != nil {
			return fmt.Errorf("target.BatchCreateReviewLogs() > %w", err)
		}
	}
	result.LogsNew = len(toCreate)
	return nil
}
