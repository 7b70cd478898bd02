package scheduler

import "time"

// State is the per-card scheduling record. It is passed to and returned
// from Scheduler.Schedule by value; the caller owns the only live copy and
// is responsible for persisting it.
//
// Stability and Difficulty belong to the FSRS strategy, EaseFactor to the
// SM2 strategy. Each strategy leaves the other's fields untouched.
type State struct {
	Phase          Phase      `json:"phase" yaml:"phase"`
	Stability      float64    `json:"stability" yaml:"stability,omitempty"`
	Difficulty     float64    `json:"difficulty" yaml:"difficulty,omitempty"`
	EaseFactor     float64    `json:"ease_factor" yaml:"ease_factor,omitempty"`
	Interval       int        `json:"interval" yaml:"interval,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" yaml:"last_reviewed_at,omitempty"`
	DueAt          time.Time  `json:"due_at" yaml:"due_at"`
}

// NewState returns the state of a card introduced at now. It is due
// immediately.
func NewState(now time.Time) State {
	return State{Phase: New, DueAt: now}
}

// IsDue reports whether the card should surface at now.
func (s State) IsDue(now time.Time) bool {
	return !s.DueAt.After(now)
}

// Retrievability returns the estimated recall probability at now. ok is
// false for cards that have no stability yet.
func (s State) Retrievability(now time.Time) (r float64, ok bool) {
	if s.Phase == New || s.LastReviewedAt == nil || s.Stability <= 0 {
		return 0, false
	}
	return Retrievability(s.Stability, ElapsedDays(s.LastReviewedAt, now)), true
}

// withReview stamps the review time, interval and due date on s.
func (s State) withReview(interval int, now time.Time) State {
	reviewedAt := now
	s.Interval = interval
	s.LastReviewedAt = &reviewedAt
	s.DueAt = now.AddDate(0, 0, interval)
	return s
}
