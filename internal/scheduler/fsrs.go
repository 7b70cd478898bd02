package scheduler

import "time"

// FSRS schedules cards from a stability/difficulty memory model.
type FSRS struct {
	params Parameters
}

// NewFSRS creates the stability/difficulty strategy. A zero Parameters
// value is replaced with DefaultParameters.
func NewFSRS(params Parameters) *FSRS {
	return &FSRS{params: params.orDefault()}
}

func (f *FSRS) Strategy() Strategy { return StrategyFSRS }

func (f *FSRS) Parameters() Parameters { return f.params }

// Schedule implements Scheduler.
func (f *FSRS) Schedule(state State, rating Rating, now time.Time) State {
	rating = rating.clamp()
	next := state

	if state.Phase == New {
		next.Difficulty = f.params.InitialDifficulty(rating)
		next.Stability = f.params.InitialStability(rating)
	} else {
		r := Retrievability(state.Stability, ElapsedDays(state.LastReviewedAt, now))
		next.Difficulty = f.params.NextDifficulty(state.Difficulty, rating)
		next.Stability = f.params.NextStability(next.Difficulty, state.Stability, r, rating)
	}
	next.Phase = state.Phase.next(rating)

	return next.withReview(f.params.NextInterval(next.Stability), now)
}
