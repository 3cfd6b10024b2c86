package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle indicates a handle outside the particle pool.
	ErrInvalidHandle = errors.New("solver: invalid handle")

	// ErrInvalidRadius indicates a particle radius that is not a positive finite number.
	ErrInvalidRadius = errors.New("solver: invalid radius")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("solver: invalid configuration")

	// ErrUnstable indicates a particle position became NaN or Inf.
	ErrUnstable = errors.New("solver: simulation unstable (NaN or Inf detected)")

	// ErrNotDragging indicates a drag update for a particle that is not being dragged.
	ErrNotDragging = errors.New("solver: particle is not being dragged")
)

// StepError wraps an error with the tick that produced it.
type StepError struct {
	Tick     int
	Time     float64
	Particle Handle
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d (t=%.3fs) particle %d: %v", e.Tick, e.Time, e.Particle, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
