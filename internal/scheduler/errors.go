package scheduler

import "errors"

// Sentinel errors returned by constructors and parsers. The scheduling
// computation itself never fails.
var (
	ErrInvalidRating     = errors.New("invalid rating")
	ErrInvalidPhase      = errors.New("invalid phase")
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrUnknownStrategy   = errors.New("unknown scheduling strategy")
)
