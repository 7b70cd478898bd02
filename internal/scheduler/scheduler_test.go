package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		wantErr  bool
	}{
		{name: "fsrs", strategy: StrategyFSRS},
		{name: "sm2", strategy: StrategySM2},
		{name: "unknown", strategy: "leitner", wantErr: true},
		{name: "empty", strategy: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewScheduler(tt.strategy, DefaultParameters())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, got.Strategy())
		})
	}
}

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy("SM2")
	require.NoError(t, err)
	assert.Equal(t, StrategySM2, got)

	_, err = ParseStrategy("anki")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestReviewCard(t *testing.T) {
	s := NewFSRS(DefaultParameters())
	first := s.Schedule(NewState(t0), Good, t0)
	now := t0.AddDate(0, 0, 4)

	next, log := ReviewCard(s, first, Hard, now)

	assert.Equal(t, s.Schedule(first, Hard, now), next)
	assert.Equal(t, StrategyFSRS, log.Strategy)
	assert.Equal(t, Hard, log.Rating)
	assert.Equal(t, first, log.Previous)
	assert.Equal(t, next, log.Next)
	assert.Equal(t, 4, log.ElapsedDays)
	assert.InDelta(t, Retrievability(2.4, 4), log.Retrievability, 1e-9)
	assert.Equal(t, now, log.ReviewedAt)

	_, newLog := ReviewCard(s, NewState(t0), Good, t0)
	assert.Zero(t, newLog.Retrievability)
	assert.Zero(t, newLog.ElapsedDays)
}

func TestPreview(t *testing.T) {
	for _, s := range []Scheduler{NewFSRS(DefaultParameters()), NewSM2(DefaultParameters())} {
		t.Run(string(s.Strategy()), func(t *testing.T) {
			got := Preview(s, NewState(t0), t0)

			require.Len(t, got, 4)
			for _, rating := range Ratings {
				assert.Equal(t, s.Schedule(NewState(t0), rating, t0), got[rating])
			}
			assert.LessOrEqual(t, got[Again].Interval, got[Hard].Interval)
			assert.LessOrEqual(t, got[Hard].Interval, got[Good].Interval)
			assert.LessOrEqual(t, got[Good].Interval, got[Easy].Interval)
		})
	}
}

func TestReplay(t *testing.T) {
	s := NewSM2(DefaultParameters())
	events := []ReviewEvent{
		{Rating: Good, ReviewedAt: t0},
		{Rating: Good, ReviewedAt: t0.AddDate(0, 0, 4)},
		{Rating: Again, ReviewedAt: t0.AddDate(0, 0, 14)},
	}

	got := Replay(s, NewState(t0), events)

	want := s.Schedule(s.Schedule(s.Schedule(NewState(t0), Good, t0), Good, t0.AddDate(0, 0, 4)), Again, t0.AddDate(0, 0, 14))
	assert.Equal(t, want, got)
	assert.Equal(t, Relearning, got.Phase)
	assert.Equal(t, 1, got.Interval)
	assert.InDelta(t, 2.3, got.EaseFactor, 1e-9)

	assert.Equal(t, NewState(t0), Replay(s, NewState(t0), nil))
}

func TestState_Retrievability(t *testing.T) {
	_, ok := NewState(t0).Retrievability(t0)
	assert.False(t, ok)

	state := NewFSRS(DefaultParameters()).Schedule(NewState(t0), Good, t0)
	r, ok := state.Retrievability(t0.AddDate(0, 0, 2))
	assert.True(t, ok)
	assert.InDelta(t, Retrievability(2.4, 2), r, 1e-9)

	assert.False(t, state.IsDue(t0.AddDate(0, 0, 1)))
	assert.True(t, state.IsDue(t0.AddDate(0, 0, 2)))
}

func TestSchedule_NewCardBoundsForAnyParameters(t *testing.T) {
	var sets []Parameters
	for _, c := range []struct {
		retention float64
		maximum   int
		weights   Weights
	}{
		{retention: 0.9, maximum: 3650, weights: DefaultWeights},
		{retention: 0.5, maximum: 1, weights: DefaultWeights},
		{retention: 0.99, maximum: 30, weights: DefaultWeights},
		{retention: 0.01, maximum: MaximumIntervalLimit, weights: Weights{0: 90, 1: 90, 2: 90, 3: 90, 4: 50, 5: 50}},
		{retention: 0.7, maximum: 365, weights: Weights{}},
	} {
		p, err := NewParameters(c.retention, c.maximum, c.weights)
		require.NoError(t, err)
		sets = append(sets, p)
	}

	for _, params := range sets {
		for _, strategy := range Strategies {
			s, err := NewScheduler(strategy, params)
			require.NoError(t, err)
			for _, rating := range Ratings {
				got := s.Schedule(NewState(t0), rating, t0)

				assert.GreaterOrEqual(t, got.Interval, 1)
				assert.LessOrEqual(t, got.Interval, params.MaximumInterval())
				if strategy == StrategyFSRS {
					assert.GreaterOrEqual(t, got.Difficulty, MinDifficulty)
					assert.LessOrEqual(t, got.Difficulty, MaxDifficulty)
					assert.GreaterOrEqual(t, got.Stability, MinStability)
				}
			}
		}
	}
}

func TestSchedule_EasyStreakAtIntervalLimit(t *testing.T) {
	params, err := NewParameters(1e-9, MaximumIntervalLimit, DefaultWeights)
	require.NoError(t, err)

	for _, strategy := range Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s, err := NewScheduler(strategy, params)
			require.NoError(t, err)

			state := NewState(t0)
			now := t0
			for i := 0; i < 20; i++ {
				state = s.Schedule(state, Easy, now)

				require.LessOrEqual(t, state.Interval, MaximumIntervalLimit)
				require.Equal(t, now.AddDate(0, 0, state.Interval), state.DueAt)
				require.True(t, state.DueAt.After(now))
				now = state.DueAt
			}
			assert.Equal(t, MaximumIntervalLimit, state.Interval)
		})
	}
}

func TestSchedule_RandomRatingSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(20250615))
	params := DefaultParameters()

	for _, strategy := range Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			s, err := NewScheduler(strategy, params)
			require.NoError(t, err)

			for run := 0; run < 50; run++ {
				state := NewState(t0)
				now := t0
				for i := 0; i < 400; i++ {
					rating := Ratings[rng.Intn(len(Ratings))]
					now = now.Add(time.Duration(rng.Intn(24*60)-24) * time.Hour)
					prev := state

					state = s.Schedule(state, rating, now)

					require.GreaterOrEqual(t, state.Interval, 1)
					require.LessOrEqual(t, state.Interval, params.MaximumInterval())
					require.Equal(t, now.AddDate(0, 0, state.Interval), state.DueAt)
					require.NotNil(t, state.LastReviewedAt)
					require.Equal(t, now, *state.LastReviewedAt)

					switch strategy {
					case StrategyFSRS:
						require.GreaterOrEqual(t, state.Difficulty, MinDifficulty)
						require.LessOrEqual(t, state.Difficulty, MaxDifficulty)
						require.GreaterOrEqual(t, state.Stability, MinStability)
						require.LessOrEqual(t, state.Stability, MaxStability)
						if rating == Again {
							require.Equal(t, params.InitialStability(Again), state.Stability)
						}
					case StrategySM2:
						require.GreaterOrEqual(t, state.EaseFactor, MinEaseFactor)
						require.LessOrEqual(t, state.EaseFactor, MaxEaseFactor)
					}

					if rating == Again && (prev.Phase == Review || prev.Phase == Relearning) {
						require.Equal(t, Relearning, state.Phase)
					}
					if rating != Again {
						require.Equal(t, Review, state.Phase)
					}
				}
			}
		})
	}
}
