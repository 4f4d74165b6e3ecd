package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidRate indicates a negative or non-finite rate.
	ErrInvalidRate = errors.New("dynamo: invalid rate (negative or non-finite)")

	// ErrAbsorbingState indicates a reachable state with no events.
	ErrAbsorbingState = errors.New("dynamo: absorbing state (no events to process)")

	// ErrZeroRate indicates events exist but their rates sum to zero.
	ErrZeroRate = errors.New("dynamo: total rate is zero, no transitions are possible")

	// ErrConvergenceConfig indicates a non-positive tolerance, window or sample size.
	ErrConvergenceConfig = errors.New("dynamo: invalid convergence configuration")
)

// RateError reports the offending event of an invalid rate.
type RateError struct {
	Label string
	Rate  float64
}

func (e *RateError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%v: %v", ErrInvalidRate, e.Rate)
	}
	return fmt.Sprintf("%v: event %q has rate %v", ErrInvalidRate, e.Label, e.Rate)
}

func (e *RateError) Unwrap() error {
	return ErrInvalidRate
}

// ParticleError wraps an error with the particle that produced it, so a run
// can be reproduced with the same seed.
type ParticleError struct {
	Index   int
	Time    float64
	State   any
	Wrapped error
}

func (e *ParticleError) Error() string {
	return fmt.Sprintf("particle %d (t=%.4f, state=%+v): %v", e.Index, e.Time, e.State, e.Wrapped)
}

func (e *ParticleError) Unwrap() error {
	return e.Wrapped
}
