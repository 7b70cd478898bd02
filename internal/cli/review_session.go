package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/at-ishikawa/spacedrep/internal/learning"
	"github.com/at-ishikawa/spacedrep/internal/review"
	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

// ReviewSessionCLI shows due cards one at a time and records the rating the
// user gives each of them.
type ReviewSessionCLI struct {
	*InteractiveReviewCLI
	service  *review.Service
	cards    []learning.Card
	now      func() time.Time
	reviewed int
}

// NewReviewSessionCLI creates a session over cards. Nil stdin or stdout
// fall back to the process streams.
func NewReviewSessionCLI(
	service *review.Service,
	cards []learning.Card,
	now func() time.Time,
	stdin io.Reader,
	stdout io.Writer,
) *ReviewSessionCLI {
	if now == nil {
		now = time.Now
	}
	return &ReviewSessionCLI{
		InteractiveReviewCLI: newInteractiveReviewCLI(stdin, stdout),
		service:              service,
		cards:                cards,
		now:                  now,
	}
}

// GetCardCount returns the number of remaining cards
func (r *ReviewSessionCLI) GetCardCount() int {
	return len(r.cards)
}

// Reviewed returns how many cards were rated so far.
func (r *ReviewSessionCLI) Reviewed() int {
	return r.reviewed
}

func (r *ReviewSessionCLI) Session(ctx context.Context) error {
	if len(r.cards) == 0 {
		_, _ = fmt.Fprintf(r.stdoutWriter, "No more cards to review! Reviewed %d card(s).\n", r.reviewed)
		return errEnd
	}
	card := r.cards[0]
	w := r.stdoutWriter

	_, _ = fmt.Fprintf(w, "[%d left] ", len(r.cards))
	_, _ = r.bold.Fprintf(w, "%s", card.Front)
	_, _ = fmt.Fprint(w, "\nPress Enter to show the answer (q to quit): ")
	input, err := r.readLine()
	if err != nil {
		return err
	}
	if input == "q" {
		return errEnd
	}

	_, _ = fmt.Fprint(w, "Answer: ")
	_, _ = r.italic.Fprintf(w, "%s", card.Back)
	_, _ = fmt.Fprintln(w)

	now := r.now()
	preview, err := r.service.Preview(ctx, card.ID, now)
	if err != nil {
		return fmt.Errorf("service.Preview(%d) > %w", card.ID, err)
	}
	options := make([]string, 0, len(scheduler.Ratings))
	for _, rating := range scheduler.Ratings {
		options = append(options, fmt.Sprintf("%d) %s (%s)", int(rating), rating, FormatInterval(preview[rating].Interval)))
	}
	_, _ = fmt.Fprintf(w, "%s\nRating: ", strings.Join(options, "  "))

	input, err = r.readLine()
	if err != nil {
		return err
	}
	if input == "q" {
		return errEnd
	}
	rating, err := scheduler.ParseRating(input)
	if err != nil {
		_, _ = r.red.Fprintf(w, "Invalid rating %q. Use 1-4 or Again, Hard, Good, Easy.\n\n", input)
		return nil
	}

	updated, err := r.service.Review(ctx, card.ID, rating, now)
	if errors.Is(err, learning.ErrCardNotFound) {
		_, _ = r.red.Fprintf(w, "Card %d no longer exists, skipping.\n\n", card.ID)
		r.cards = r.cards[1:]
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.Review(%d) > %w", card.ID, err)
	}

	r.cards = r.cards[1:]
	r.reviewed++
	_, _ = r.green.Fprintf(w, "%s: next review in %s (%s)\n\n",
		rating, FormatInterval(updated.IntervalDays), updated.DueAt.Format(time.DateOnly))
	return nil
}

// FormatInterval renders a day count compactly, e.g. "3d", "2.1mo", "1.4y".
func FormatInterval(days int) string {
	switch {
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case days < 365:
		return fmt.Sprintf("%.1fmo", float64(days)/30)
	default:
		return fmt.Sprintf("%.1fy", float64(days)/365)
	}
}
