package learning

import (
	"time"

	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

// Card is a flashcard together with its persisted scheduling state.
type Card struct {
	ID             int64           `db:"id" yaml:"id"`
	Front          string          `db:"front" yaml:"front"`
	Back           string          `db:"back" yaml:"back"`
	Phase          scheduler.Phase `db:"phase" yaml:"phase"`
	Stability      float64         `db:"stability" yaml:"stability,omitempty"`
	Difficulty     float64         `db:"difficulty" yaml:"difficulty,omitempty"`
	EaseFactor     float64         `db:"ease_factor" yaml:"ease_factor,omitempty"`
	IntervalDays   int             `db:"interval_days" yaml:"interval_days,omitempty"`
	LastReviewedAt *time.Time      `db:"last_reviewed_at" yaml:"last_reviewed_at,omitempty"`
	DueAt          time.Time       `db:"due_at" yaml:"due_at"`
	CreatedAt      time.Time       `db:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" yaml:"updated_at"`
}

// NewCard returns a New card introduced at now.
func NewCard(front, back string, now time.Time) Card {
	card := Card{
		Front:     front,
		Back:      back,
		CreatedAt: now,
		UpdatedAt: now,
	}
	card.ApplyState(scheduler.NewState(now))
	return card
}

// State extracts the scheduling state of the card.
func (c Card) State() scheduler.State {
	return scheduler.State{
		Phase:          c.Phase,
		Stability:      c.Stability,
		Difficulty:     c.Difficulty,
		EaseFactor:     c.EaseFactor,
		Interval:       c.IntervalDays,
		LastReviewedAt: c.LastReviewedAt,
		DueAt:          c.DueAt,
	}
}

// ApplyState overwrites the scheduling fields of the card with s.
func (c *Card) ApplyState(s scheduler.State) {
	c.Phase = s.Phase
	c.Stability = s.Stability
	c.Difficulty = s.Difficulty
	c.EaseFactor = s.EaseFactor
	c.IntervalDays = s.Interval
	c.LastReviewedAt = s.LastReviewedAt
	c.DueAt = s.DueAt
}

// UTC returns a copy of the card with every timestamp in UTC. Stores that
// compare times as text rely on it for due ordering.
func (c Card) UTC() Card {
	if c.LastReviewedAt != nil {
		last := c.LastReviewedAt.UTC()
		c.LastReviewedAt = &last
	}
	c.DueAt = c.DueAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c
}

// ReviewLog is the stored record of one review: the rating and the state it
// produced.
type ReviewLog struct {
	ID             int64            `db:"id" yaml:"id"`
	CardID         int64            `db:"card_id" yaml:"card_id"`
	Rating         scheduler.Rating `db:"rating" yaml:"rating"`
	Strategy       string           `db:"strategy" yaml:"strategy"`
	PreviousPhase  scheduler.Phase  `db:"previous_phase" yaml:"previous_phase"`
	Phase          scheduler.Phase  `db:"phase" yaml:"phase"`
	Stability      float64          `db:"stability" yaml:"stability,omitempty"`
	Difficulty     float64          `db:"difficulty" yaml:"difficulty,omitempty"`
	EaseFactor     float64          `db:"ease_factor" yaml:"ease_factor,omitempty"`
	IntervalDays   int              `db:"interval_days" yaml:"interval_days"`
	Retrievability float64          `db:"retrievability" yaml:"retrievability,omitempty"`
	ElapsedDays    int              `db:"elapsed_days" yaml:"elapsed_days"`
	ReviewedAt     time.Time        `db:"reviewed_at" yaml:"reviewed_at"`
	DueAt          time.Time        `db:"due_at" yaml:"due_at"`
}

// NewReviewLog converts a scheduler log into its stored form.
func NewReviewLog(cardID int64, log scheduler.ReviewLog) ReviewLog {
	return ReviewLog{
		CardID:         cardID,
		Rating:         log.Rating,
		Strategy:       string(log.Strategy),
		PreviousPhase:  log.Previous.Phase,
		Phase:          log.Next.Phase,
		Stability:      log.Next.Stability,
		Difficulty:     log.Next.Difficulty,
		EaseFactor:     log.Next.EaseFactor,
		IntervalDays:   log.Next.Interval,
		Retrievability: log.Retrievability,
		ElapsedDays:    log.ElapsedDays,
		ReviewedAt:     log.ReviewedAt,
		DueAt:          log.Next.DueAt,
	}
}

// Event returns the rating and time of the review for replaying.
func (l ReviewLog) Event() scheduler.ReviewEvent {
	return scheduler.ReviewEvent{Rating: l.Rating, ReviewedAt: l.ReviewedAt}
}

// IsLapse reports whether the review forgot a card that had been learned.
func (l ReviewLog) IsLapse() bool {
	return l.Rating == scheduler.Again &&
		(l.PreviousPhase == scheduler.Review || l.PreviousPhase == scheduler.Relearning)
}

// UTC returns a copy of the log with its timestamps in UTC.
func (l ReviewLog) UTC() ReviewLog {
	l.ReviewedAt = l.ReviewedAt.UTC()
	l.DueAt = l.DueAt.UTC()
	return l
}
