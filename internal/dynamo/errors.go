package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrUnstable means a step produced a NaN or Inf concentration.
	ErrUnstable = errors.New("dynamo: concentrations diverged")

	ErrParameterBounds = errors.New("dynamo: parameter out of bounds")

	// ErrNotInitialized is returned by Step before Init.
	ErrNotInitialized = errors.New("dynamo: model not initialized")

	ErrDimensionMismatch = errors.New("dynamo: integrator returned a state of the wrong length")
)

// SimulationError locates a failed step. Index is the offending state slot,
// or -1 when the failure is not tied to one slot.
type SimulationError struct {
	Step    int
	Time    float64
	Index   int
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("step %d, t=%.6g: %v", e.Step, e.Time, e.Wrapped)
	}
	return fmt.Sprintf("step %d, t=%.6g, slot %d: %v", e.Step, e.Time, e.Index, e.Wrapped)
}

func (e *SimulationError) Unwrap() error { return e.Wrapped }

// ParamError reports a rejected parameter value as ErrParameterBounds.
func ParamError(name string, value any, reason string) error {
	return fmt.Errorf("%w: %s=%v %s", ErrParameterBounds, name, value, reason)
}
