// Package learning stores cards and their review logs.
package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/spacedrep/internal/database"
)

// ErrCardNotFound is returned when no card has the requested ID.
var ErrCardNotFound = errors.New("card not found")

//go:generate mockgen -source=repository.go -destination=../mocks/learning/mock_repository.go -package=mock_learning

// Repository persists cards and review logs. It is the only owner of card
// state between reviews.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Card, error)
	FindAll(ctx context.Context) ([]Card, error)
	// FindDue returns cards due at or before now, earliest first. A limit of
	// zero or less returns every due card.
	FindDue(ctx context.Context, now time.Time, limit int) ([]Card, error)
	Create(ctx context.Context, card *Card) error
	UpdateState(ctx context.Context, card *Card) error
	// RecordReview stores the card's new state and appends the log.
	RecordReview(ctx context.Context, card *Card, log *ReviewLog) error
	FindReviewLogs(ctx context.Context, cardID int64) ([]ReviewLog, error)
	FindAllReviewLogs(ctx context.Context) ([]ReviewLog, error)
	BatchCreateReviewLogs(ctx context.Context, logs []*ReviewLog) error
}

const (
	cardColumns      = "id, front, back, phase, stability, difficulty, ease_factor, interval_days, last_reviewed_at, due_at, created_at, updated_at"
	reviewLogColumns = "id, card_id, rating, strategy, previous_phase, phase, stability, difficulty, ease_factor, interval_days, retrievability, elapsed_days, reviewed_at, due_at"
)

var reviewLogInsertColumns = []string{
	"card_id", "rating", "strategy", "previous_phase", "phase", "stability", "difficulty",
	"ease_factor", "interval_days", "retrievability", "elapsed_days", "reviewed_at", "due_at",
}

// DBRepository implements Repository using MySQL or SQLite.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindByID returns the card with id, or ErrCardNotFound.
func (r *DBRepository) FindByID(ctx context.Context, id int64) (*Card, error) {
	var card Card
	err := r.db.GetContext(ctx, &card, "SELECT "+cardColumns+" FROM cards WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(card %d) > %w", id, err)
	}
	return &card, nil
}

// FindAll returns all cards ordered by ID.
func (r *DBRepository) FindAll(ctx context.Context) ([]Card, error) {
	var cards []Card
	if err := r.db.SelectContext(ctx, &cards, "SELECT "+cardColumns+" FROM cards ORDER BY id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(cards) > %w", err)
	}
	return cards, nil
}

func (r *DBRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]Card, error) {
	query := "SELECT " + cardColumns + " FROM cards WHERE due_at <= ? ORDER BY due_at, id"
	args := []interface{}{now}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var cards []Card
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due cards) > %w", err)
	}
	return cards, nil
}

// Create inserts a new card and sets its ID.
func (r *DBRepository) Create(ctx context.Context, card *Card) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (front, back, phase, stability, difficulty, ease_factor, interval_days, last_reviewed_at, due_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.Front, card.Back, card.Phase, card.Stability, card.Difficulty, card.EaseFactor,
		card.IntervalDays, card.LastReviewedAt, card.DueAt, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert card) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	card.ID = id
	return nil
}

// UpdateState stores the scheduling fields of card.
func (r *DBRepository) UpdateState(ctx context.Context, card *Card) error {
	return updateState(ctx, r.db, card)
}

func (r *DBRepository) RecordReview(ctx context.Context, card *Card, log *ReviewLog) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := updateState(ctx, tx, card); err != nil {
			return err
		}

		log.CardID = card.ID
		result, err := tx.ExecContext(ctx,
			"INSERT INTO review_logs ("+strings.Join(reviewLogInsertColumns, ", ")+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			reviewLogArgs(log)...)
		if err != nil {
			return fmt.Errorf("insert review log: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("result.LastInsertId() > %w", err)
		}
		log.ID = id
		return nil
	})
}

// FindReviewLogs returns the logs of a card in review order.
func (r *DBRepository) FindReviewLogs(ctx context.Context, cardID int64) ([]ReviewLog, error) {
	var logs []ReviewLog
	if err := r.db.SelectContext(ctx, &logs,
		"SELECT "+reviewLogColumns+" FROM review_logs WHERE card_id = ? ORDER BY reviewed_at, id",
		cardID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_logs by card) > %w", err)
	}
	return logs, nil
}

func (r *DBRepository) FindAllReviewLogs(ctx context.Context) ([]ReviewLog, error) {
	var logs []ReviewLog
	if err := r.db.SelectContext(ctx, &logs, "SELECT "+reviewLogColumns+" FROM review_logs ORDER BY reviewed_at, id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_logs) > %w", err)
	}
	return logs, nil
}

// BatchCreateReviewLogs inserts multiple logs in a single transaction using a multi-row INSERT.
func (r *DBRepository) BatchCreateReviewLogs(ctx context.Context, logs []*ReviewLog) error {
	if len(logs) == 0 {
		return nil
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := database.BuildMultiRowInsert("review_logs", reviewLogInsertColumns, len(logs))

		var args []interface{}
		for _, l := range logs {
			args = append(args, reviewLogArgs(l)...)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert review logs: %w", err)
		}
		return nil
	})
}

// updateState falls back to an existence check when no row was reported as
// affected, since drivers may count changed rather than matched rows.
func updateState(ctx context.Context, db sqlx.ExtContext, card *Card) error {
	result, err := db.ExecContext(ctx,
		`UPDATE cards SET phase = ?, stability = ?, difficulty = ?, ease_factor = ?, interval_days = ?, last_reviewed_at = ?, due_at = ?, updated_at = ?
		WHERE id = ?`,
		card.Phase, card.Stability, card.Difficulty, card.EaseFactor, card.IntervalDays,
		card.LastReviewedAt, card.DueAt, card.UpdatedAt, card.ID)
	if err != nil {
		return fmt.Errorf("update card %d: %w", card.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected > 0 {
		return nil
	}

	var count int
	if err := sqlx.GetContext(ctx, db, &count, "SELECT COUNT(*) FROM cards WHERE id = ?", card.ID); err != nil {
		return fmt.Errorf("sqlx.GetContext(count card %d) > %w", card.ID, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %d", ErrCardNotFound, card.ID)
	}
	return nil
}

func reviewLogArgs(l *ReviewLog) []interface{} {
	return []interface{}{
		l.CardID, l.Rating, l.Strategy, l.PreviousPhase, l.Phase, l.Stability, l.Difficulty,
		l.EaseFactor, l.IntervalDays, l.Retrievability, l.ElapsedDays, l.ReviewedAt, l.DueAt,
	}
}
