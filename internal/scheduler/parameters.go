package scheduler

import (
	"fmt"
	"math"
)

const (
	DefaultRequestRetention = 0.9
	DefaultMaximumInterval  = 3650
	// MaximumIntervalLimit bounds the configurable maximum interval (100 years).
	MaximumIntervalLimit = 36500
)

// Weights is the parameter vector of the stability/difficulty strategy.
//
//	w[0..3]  initial stability per rating; w[0] is also the lapse reset value
//	w[4]     initial difficulty for Good
//	w[5]     initial difficulty step per rating level
//	w[6]     difficulty update step per rating level
//	w[8]     base stability growth factor (Good)
//	w[15]    Hard multiplier on the growth factor
//	w[16]    Easy multiplier on the growth factor
//
// The remaining entries are carried for compatibility with stored vectors
// and are not read by the formulas.
type Weights [17]float64

// DefaultWeights is the fixed 17-weight vector used when none is configured.
var DefaultWeights = Weights{
	0.4, 0.6, 2.4, 5.8,
	4.93, 0.94, 0.86, 0.01,
	1.49, 0.14, 0.94, 2.18,
	0.05, 0.34, 1.26, 0.29,
	2.61,
}

// Parameters is the immutable configuration shared by every scheduling call.
// Build it with NewParameters or DefaultParameters; the zero value is treated
// as DefaultParameters by the strategies.
type Parameters struct {
	requestRetention float64
	maximumInterval  int
	weights          Weights
}

// DefaultParameters returns retention 0.9, a 3650 day cap and DefaultWeights.
func DefaultParameters() Parameters {
	return Parameters{
		requestRetention: DefaultRequestRetention,
		maximumInterval:  DefaultMaximumInterval,
		weights:          DefaultWeights,
	}
}

// NewParameters validates and builds a Parameters value.
func NewParameters(requestRetention float64, maximumInterval int, weights Weights) (Parameters, error) {
	if math.IsNaN(requestRetention) || requestRetention <= 0 || requestRetention >= 1 {
		return Parameters{}, fmt.Errorf("%w: request retention %v must be in (0, 1)", ErrInvalidParameters, requestRetention)
	}
	if maximumInterval < 1 || maximumInterval > MaximumIntervalLimit {
		return Parameters{}, fmt.Errorf("%w: maximum interval %d must be in [1, %d]", ErrInvalidParameters, maximumInterval, MaximumIntervalLimit)
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return Parameters{}, fmt.Errorf("%w: w[%d] = %v must be a non-negative number", ErrInvalidParameters, i, w)
		}
	}
	return Parameters{
		requestRetention: requestRetention,
		maximumInterval:  maximumInterval,
		weights:          weights,
	}, nil
}

// WeightsFromSlice converts a configured slice into Weights. An empty slice
// yields DefaultWeights.
func WeightsFromSlice(values []float64) (Weights, error) {
	if len(values) == 0 {
		return DefaultWeights, nil
	}
	var w Weights
	if len(values) != len(w) {
		return Weights{}, fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidParameters, len(w), len(values))
	}
	copy(w[:], values)
	return w, nil
}

func (p Parameters) RequestRetention() float64 { return p.requestRetention }
func (p Parameters) MaximumInterval() int       { return p.maximumInterval }
func (p Parameters) Weights() Weights           { return p.weights }

func (p Parameters) orDefault() Parameters {
	if p == (Parameters{}) {
		return DefaultParameters()
	}
	return p
}
