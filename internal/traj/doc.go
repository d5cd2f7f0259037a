// Package traj integrates parametrized ODE systems and exposes the result
// as a trajectory with dense output.
//
// A [Problem] bundles the derivative function dx/dt = f(x, p, t) with a
// time span and nominal initial state / parameters. A [Solver] produces a
// [Trajectory] for one concrete (initial state, parameters) pair:
//
//	prob := traj.Problem{F: f, T0: 0, T1: 4}
//	solver := traj.NewDormandPrince()
//	tr, err := solver.Solve(prob, x0, p)
//	u := tr.At(2.5)
//
// Trajectories are immutable once produced and interpolate between
// accepted steps with cubic Hermite polynomials.
//
// # Failure
//
// Solvers never substitute sentinel values: NaN/Inf states, step-size
// underflow, and step-budget exhaustion all surface as errors wrapping
// [ErrIntegrationFailure], [ErrStepTooSmall], or [ErrStepBudget].
package traj
