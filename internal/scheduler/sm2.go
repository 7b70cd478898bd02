package scheduler

import (
	"math"
	"time"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
)

// SM2 is the legacy ease-factor strategy. It tracks only Interval and
// EaseFactor and ignores stability and difficulty.
type SM2 struct {
	params Parameters
}

// NewSM2 creates the ease-factor strategy. Only the maximum interval of
// params is used.
func NewSM2(params Parameters) *SM2 {
	return &SM2{params: params.orDefault()}
}

func (s *SM2) Strategy() Strategy { return StrategySM2 }

func (s *SM2) Parameters() Parameters { return s.params }

// Schedule implements Scheduler.
func (s *SM2) Schedule(state State, rating Rating, now time.Time) State {
	rating = rating.clamp()
	next := state

	ef := state.EaseFactor
	if ef == 0 {
		ef = DefaultEaseFactor
	}
	ef = math.Min(math.Max(ef, MinEaseFactor), MaxEaseFactor)
	interval := float64(max(state.Interval, 0))

	switch rating {
	case Again:
		interval = 1
		ef = math.Max(MinEaseFactor, ef-0.2)
	case Hard:
		interval = math.Round(math.Max(interval*1.2, interval+1))
		ef = math.Max(MinEaseFactor, ef-0.15)
	case Good:
		if interval <= 1 {
			interval = 4
		} else {
			interval = math.Round(interval * ef)
		}
	case Easy:
		if interval <= 1 {
			interval = 7
		} else {
			interval = math.Round(math.Max(interval*ef*1.3, interval+2))
		}
		ef = math.Min(MaxEaseFactor, ef+0.15)
	}
	interval = math.Min(math.Max(interval, 1), float64(s.params.MaximumInterval()))

	next.EaseFactor = ef
	next.Phase = state.Phase.next(rating)
	return next.withReview(int(interval), now)
}
