// Package review applies ratings to stored cards through a scheduler.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/spacedrep/internal/learning"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

// Service loads cards, schedules them and persists the result. Reviews of the
// same card are serialized; reviews of different cards run in parallel.
// Times are stored in UTC.
type Service struct {
	scheduler scheduler.Scheduler
	repo      learning.Repository
	locks     *keyedMutex
}

func NewService(s scheduler.Scheduler, repo learning.Repository) *Service {
	return &Service{
		scheduler: s,
		repo:      repo,
		locks:     newKeyedMutex(),
	}
}

// Scheduler returns the scheduler the service reviews with.
func (s *Service) Scheduler() scheduler.Scheduler {
	return s.scheduler
}

// AddCard stores a new card that is due immediately.
func (s *Service) AddCard(ctx context.Context, front, back string, now time.Time) (learning.Card, error) {
	if front == "" {
		return learning.Card{}, fmt.Errorf("front must not be empty")
	}

	card := learning.NewCard(front, back, now.UTC())
	if err := s.repo.Create(ctx, &card); err != nil {
		return learning.Card{}, fmt.Errorf("repo.Create() > %w", err)
	}
	slog.Default().Debug("card created", "id", card.ID)
	return card, nil
}

// Review rates a card at now and returns its updated record. The card and the
// review log are stored together.
func (s *Service) Review(ctx context.Context, cardID int64, rating scheduler.Rating, now time.Time) (learning.Card, error) {
	if !rating.IsValid() {
		return learning.Card{}, fmt.Errorf("%w: %d", scheduler.ErrInvalidRating, int(rating))
	}

	now = now.UTC()
	unlock := s.locks.lock(cardID)
	defer unlock()

	card, err := s.repo.FindByID(ctx, cardID)
	if err != nil {
		return learning.Card{}, fmt.Errorf("repo.FindByID(%d) > %w", cardID, err)
	}

	next, log := scheduler.ReviewCard(s.scheduler, card.State(), rating, now)
	card.ApplyState(next)
	card.UpdatedAt = now
	stored := learning.NewReviewLog(card.ID, log)

	if err := s.repo.RecordReview(ctx, card, &stored); err != nil {
		return learning.Card{}, fmt.Errorf("repo.RecordReview(%d) > %w", cardID, err)
	}

	slog.Default().Debug("card reviewed",
		"id", card.ID,
		"rating", rating,
		"phase", card.Phase,
		"interval", card.IntervalDays,
		"due_at", card.DueAt)
	return *card, nil
}

// Preview returns the state each rating would produce without storing anything.
func (s *Service) Preview(ctx context.Context, cardID int64, now time.Time) (map[scheduler.Rating]scheduler.State, error) {
	card, err := s.repo.FindByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("repo.FindByID(%d) > %w", cardID, err)
	}
	return scheduler.Preview(s.scheduler, card.State(), now.UTC()), nil
}

// Due returns the cards due at now, earliest first.
func (s *Service) Due(ctx context.Context, now time.Time, limit int) ([]learning.Card, error) {
	cards, err := s.repo.FindDue(ctx, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("repo.FindDue() > %w", err)
	}
	return cards, nil
}

// Replay rebuilds the scheduling state of a card from its review logs with
// the service's scheduler and stores it. It is used after switching
// strategies or changing parameters.
func (s *Service) Replay(ctx context.Context, cardID int64) (learning.Card, error) {
	unlock := s.locks.lock(cardID)
	defer unlock()

	card, err := s.repo.FindByID(ctx, cardID)
	if err != nil {
		return learning.Card{}, fmt.Errorf("repo.FindByID(%d) > %w", cardID, err)
	}
	logs, err := s.repo.FindReviewLogs(ctx, cardID)
	if err != nil {
		return learning.Card{}, fmt.Errorf("repo.FindReviewLogs(%d) > %w", cardID, err)
	}

	events := make([]scheduler.ReviewEvent, 0, len(logs))
	for _, l := range logs {
		events = append(events, l.Event())
	}
	card.ApplyState(scheduler.Replay(s.scheduler, scheduler.NewState(card.CreatedAt), events))
	if len(logs) > 0 {
		card.UpdatedAt = logs[len(logs)-1].ReviewedAt
	}

	if err := s.repo.UpdateState(ctx, card); err != nil {
		return learning.Card{}, fmt.Errorf("repo.UpdateState(%d) > %w", cardID, err)
	}
	slog.Default().Info("card replayed",
		"id", card.ID,
		"strategy", s.scheduler.Strategy(),
		"reviews", len(logs))
	return *card, nil
}
