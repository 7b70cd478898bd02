package scheduler

import (
	"fmt"
	"strings"
)

// Phase is the lifecycle phase of a card. The zero value is New.
type Phase int

const (
	New Phase = iota
	Learning
	Review
	Relearning
)

var phaseNames = [...]string{New: "New", Learning: "Learning", Review: "Review", Relearning: "Relearning"}

// ParsePhase converts a phase name (case-insensitive) into a Phase.
func ParsePhase(s string) (Phase, error) {
	for p := New; p <= Relearning; p++ {
		if strings.EqualFold(phaseNames[p], strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPhase, s)
}

func (p Phase) IsValid() bool {
	return p >= New && p <= Relearning
}

func (p Phase) String() string {
	if p.IsValid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// next returns the phase after a review with the given rating.
//
//	New/Learning   + Again -> Learning
//	Review/Relearn + Again -> Relearning
//	any            + other -> Review
func (p Phase) next(rating Rating) Phase {
	if rating != Again {
		return Review
	}
	if p == Review || p == Relearning {
		return Relearning
	}
	return Learning
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhase, int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	v, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
