package main

import (
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/spacedrep/internal/scheduler"
)

// RatingFlag accepts a rating by name (Again, Hard, Good, Easy) or number (1-4).
type RatingFlag scheduler.Rating

// Set implements pflag.Value.
func (r *RatingFlag) Set(v string) error {
	rating, err := scheduler.ParseRating(v)
	if err != nil {
		return err
	}
	*r = RatingFlag(rating)
	return nil
}

// String implements pflag.Value.
func (r *RatingFlag) String() string {
	if r == nil || !scheduler.Rating(*r).IsValid() {
		return ""
	}
	return scheduler.Rating(*r).String()
}

// Type implements pflag.Value.
func (r *RatingFlag) Type() string {
	return "RatingFlag"
}

func (r RatingFlag) Rating() scheduler.Rating {
	return scheduler.Rating(r)
}

type StrategyFlag scheduler.Strategy

// Set implements pflag.Value.
func (s *StrategyFlag) Set(v string) error {
	strategy, err := scheduler.ParseStrategy(v)
	if err != nil {
		return err
	}
	*s = StrategyFlag(strategy)
	return nil
}

// String implements pflag.Value.
func (s *StrategyFlag) String() string {
	if s == nil {
		return ""
	}
	return string(*s)
}

// Type implements pflag.Value.
func (s *StrategyFlag) Type() string {
	return "StrategyFlag"
}

func (s StrategyFlag) Strategy() scheduler.Strategy {
	return scheduler.Strategy(s)
}

var (
	_ pflag.Value = (*RatingFlag)(nil)
	_ pflag.Value = (*StrategyFlag)(nil)
)

func parseRatings(args []string) ([]scheduler.Rating, error) {
	ratings := make([]scheduler.Rating, 0, len(args))
	for _, arg := range args {
		var flag RatingFlag
		if err := flag.Set(arg); err != nil {
			return nil, err
		}
		ratings = append(ratings, flag.Rating())
	}
	return ratings, nil
}
