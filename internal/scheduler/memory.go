package scheduler

import (
	"math"
	"time"
)

const (
	MinStability  = 0.1
	MaxStability  = 36500.0
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// Retrievability estimates the probability of recall after elapsedDays for a
// memory of the given stability.
//
//	R = 1 / (1 + t / (9 * S))
//
// It is 1 at t = 0 and decreases towards 0 as t grows. Negative elapsed days
// are treated as 0 and stability is floored at MinStability.
func Retrievability(stability float64, elapsedDays int) float64 {
	t := float64(max(elapsedDays, 0))
	s := math.Max(stability, MinStability)
	return 1 / (1 + t/(9*s))
}

// ElapsedDays counts whole calendar days (UTC) from lastReviewedAt to now.
// A nil lastReviewedAt, or a now earlier than it, yields 0.
func ElapsedDays(lastReviewedAt *time.Time, now time.Time) int {
	if lastReviewedAt == nil {
		return 0
	}
	from := truncateToDay(*lastReviewedAt)
	to := truncateToDay(now)
	days := int(math.Round(to.Sub(from).Hours() / 24))
	return max(days, 0)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InitialDifficulty is the difficulty after the first rating of a New card.
//
//	D0(G) = w4 - (G - 3) * w5, clamped to [1, 10]
func (p Parameters) InitialDifficulty(rating Rating) float64 {
	w := p.orDefault().weights
	g := float64(rating.clamp())
	return clampDifficulty(w[4] - (g-3)*w[5])
}

// NextDifficulty moves difficulty up for Again/Hard and down for Easy by a
// fixed step per rating level. Good leaves it unchanged.
//
//	D' = D - w6 * (G - 3), clamped to [1, 10]
func (p Parameters) NextDifficulty(difficulty float64, rating Rating) float64 {
	w := p.orDefault().weights
	g := float64(rating.clamp())
	return clampDifficulty(difficulty - w[6]*(g-3))
}

// InitialStability is the per-rating lookup w[G-1], floored at MinStability.
func (p Parameters) InitialStability(rating Rating) float64 {
	w := p.orDefault().weights
	return clampStability(w[rating.clamp()-1])
}

// NextStability updates stability after a review of a card that has
// already been rated at least once.
//
// A lapse (Again) resets stability to w[0]. On success the stability grows
// multiplicatively, penalised by difficulty:
//
//	S' = S * (1 + growth(G) * (11 - D) / 5)
//
// retrievability is the recall probability at review time. This formulation
// does not weight growth by it.
func (p Parameters) NextStability(difficulty, stability, retrievability float64, rating Rating) float64 {
	p = p.orDefault()
	rating = rating.clamp()
	if rating == Again {
		return p.InitialStability(Again)
	}
	s := math.Max(stability, MinStability)
	d := clampDifficulty(difficulty)
	return clampStability(s * (1 + p.growthFactor(rating)*(11-d)/5))
}

// growthFactor is smallest for Hard and largest for Easy.
func (p Parameters) growthFactor(rating Rating) float64 {
	w := p.weights
	switch rating {
	case Hard:
		return w[8] * w[15]
	case Easy:
		return w[8] * w[16]
	default:
		return w[8]
	}
}

// NextInterval converts stability into the number of days after which the
// predicted retrievability falls to the request retention.
//
//	I = round(9 * S * (1/r - 1)), clamped to [1, maximumInterval]
func (p Parameters) NextInterval(stability float64) int {
	p = p.orDefault()
	days := math.Max(stability, MinStability) * 9 * (1/p.requestRetention - 1)
	days = math.Min(math.Max(math.Round(days), 1), float64(p.maximumInterval))
	return int(days)
}

// clampStability keeps stability within [MinStability, MaxStability].
func clampStability(s float64) float64 {
	if math.IsNaN(s) {
		return MinStability
	}
	return math.Min(math.Max(s, MinStability), MaxStability)
}

func clampDifficulty(d float64) float64 {
	if math.IsNaN(d) {
		return MinDifficulty
	}
	return math.Min(math.Max(d, MinDifficulty), MaxDifficulty)
}
