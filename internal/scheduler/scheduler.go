// Package scheduler decides when a flashcard should be shown again.
//
// A Scheduler is a pure function of (state, rating, now) to a new state.
// It holds only read-only Parameters, never reads the clock and never
// persists anything, so scheduling different cards concurrently is safe.
// Reviews of the same card must be serialized by the caller: two calls
// that start from the same stale state and are stored independently lose
// one of the reviews.
package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Scheduler produces the next State of a card for a rating given at now.
// Implementations never mutate their input and never fail.
type Scheduler interface {
	Schedule(state State, rating Rating, now time.Time) State
	Strategy() Strategy
}

var (
	_ Scheduler = (*FSRS)(nil)
	_ Scheduler = (*SM2)(nil)
)

// Strategy names a Scheduler implementation in configuration.
type Strategy string

const (
	StrategyFSRS Strategy = "fsrs"
	StrategySM2  Strategy = "sm2"
)

// Strategies lists the selectable strategies.
var Strategies = []Strategy{StrategyFSRS, StrategySM2}

// ParseStrategy converts a configured name into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for _, strategy := range Strategies {
		if strings.EqualFold(string(strategy), strings.TrimSpace(s)) {
			return strategy, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// NewScheduler returns the Scheduler for strategy configured with params.
func NewScheduler(strategy Strategy, params Parameters) (Scheduler, error) {
	switch strategy {
	case StrategyFSRS:
		return NewFSRS(params), nil
	case StrategySM2:
		return NewSM2(params), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// ReviewLog is everything a caller needs to record a review for analytics
// or undo.
type ReviewLog struct {
	Strategy       Strategy
	Rating         Rating
	Previous       State
	Next           State
	ElapsedDays    int
	Retrievability float64 // 0 when the previous state had no stability
	ReviewedAt     time.Time
}

// ReviewCard schedules state and returns the new state along with its log.
func ReviewCard(s Scheduler, state State, rating Rating, now time.Time) (State, ReviewLog) {
	next := s.Schedule(state, rating, now)
	r, _ := state.Retrievability(now)
	return next, ReviewLog{
		Strategy:       s.Strategy(),
		Rating:         rating,
		Previous:       state,
		Next:           next,
		ElapsedDays:    ElapsedDays(state.LastReviewedAt, now),
		Retrievability: r,
		ReviewedAt:     now,
	}
}

// Preview returns the state each rating would produce at now.
func Preview(s Scheduler, state State, now time.Time) map[Rating]State {
	result := make(map[Rating]State, len(Ratings))
	for _, rating := range Ratings {
		result[rating] = s.Schedule(state, rating, now)
	}
	return result
}

// ReviewEvent is a rating given at a point in time.
type ReviewEvent struct {
	Rating     Rating
	ReviewedAt time.Time
}

// Replay folds events, in order, through s starting from initial.
func Replay(s Scheduler, initial State, events []ReviewEvent) State {
	state := initial
	for _, e := range events {
		state = s.Schedule(state, e.Rating, e.ReviewedAt)
	}
	return state
}
