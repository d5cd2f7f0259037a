package traj

import (
	"errors"
	"fmt"
)

// Domain errors for trajectory integration.
var (
	// ErrIntegrationFailure indicates the solver produced a NaN or Inf
	// state (divergence, stiffness beyond the method's reach).
	ErrIntegrationFailure = errors.New("traj: integration failure (NaN or Inf in state)")

	// ErrStepTooSmall indicates the adaptive step size underflowed.
	ErrStepTooSmall = errors.New("traj: adaptive step size below minimum")

	// ErrStepBudget indicates the step budget was exhausted before the
	// end of the time span.
	ErrStepBudget = errors.New("traj: step budget exhausted")

	// ErrDimensionMismatch indicates state or parameter vectors whose
	// length does not match the problem definition.
	ErrDimensionMismatch = errors.New("traj: dimension mismatch")
)

// SolveError wraps a solver failure with the time and step it occurred at.
type SolveError struct {
	T    float64
	Step int
	Err  error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve failed at t=%.6g (step %d): %v", e.T, e.Step, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

func solveErr(t float64, step int, err error) error {
	return &SolveError{T: t, Step: step, Err: err}
}
