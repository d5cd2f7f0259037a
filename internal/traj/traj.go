package traj

import (
	"math"
	"sort"
)

// Derivative computes dx/dt at (x, p, t), writing the result into dx.
// It must not retain or modify x and p.
type Derivative func(dx, x, p []float64, t float64)

// Problem defines a parametrized dynamical system over a time span.
// The engine only reads it; ownership stays with the caller.
type Problem struct {
	F      Derivative
	T0, T1 float64

	// Nominal initial state and parameters. Estimators override either
	// with concrete draws; dimensions must match.
	X0 []float64
	P  []float64

	// SaveAt optionally lists times an observable samples the trajectory
	// at. Solvers do not need it; Trajectory.SampleAt serves it.
	SaveAt []float64
}

// Span returns T1 - T0.
func (p Problem) Span() float64 { return p.T1 - p.T0 }

// Trajectory is the integrated solution for one concrete instantiation of
// a Problem. It stores every accepted step together with its derivative
// and interpolates in between. Immutable once returned by a Solver.
type Trajectory struct {
	times  []float64
	states [][]float64
	derivs [][]float64
}

func (tr *Trajectory) Len() int            { return len(tr.times) }
func (tr *Trajectory) Times() []float64    { return tr.times }
func (tr *Trajectory) States() [][]float64 { return tr.states }

// Final returns the state at the end of the span.
func (tr *Trajectory) Final() []float64 {
	return tr.states[len(tr.states)-1]
}

// At evaluates the state at time t by cubic Hermite interpolation between
// the two accepted steps bracketing t. Times outside the integrated span
// clamp to the endpoints.
func (tr *Trajectory) At(t float64) []float64 {
	n := len(tr.times)
	if t <= tr.times[0] {
		return clone(tr.states[0])
	}
	if t >= tr.times[n-1] {
		return clone(tr.states[n-1])
	}

	hi := sort.SearchFloat64s(tr.times, t)
	lo := hi - 1
	if tr.times[hi] == t {
		return clone(tr.states[hi])
	}

	h := tr.times[hi] - tr.times[lo]
	s := (t - tr.times[lo]) / h
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	x0, x1 := tr.states[lo], tr.states[hi]
	f0, f1 := tr.derivs[lo], tr.derivs[hi]

	out := make([]float64, len(x0))
	for i := range out {
		out[i] = h00*x0[i] + h10*h*f0[i] + h01*x1[i] + h11*h*f1[i]
	}
	return out
}

// SampleAt evaluates the state at each time in ts.
func (tr *Trajectory) SampleAt(ts []float64) [][]float64 {
	out := make([][]float64, len(ts))
	for i, t := range ts {
		out[i] = tr.At(t)
	}
	return out
}

func (tr *Trajectory) append(t float64, x, dx []float64) {
	tr.times = append(tr.times, t)
	tr.states = append(tr.states, clone(x))
	tr.derivs = append(tr.derivs, clone(dx))
}

// Solver integrates a Problem for one concrete (initial state, parameters)
// pair. Implementations are safe for concurrent use as long as they do not
// share scratch state; both solvers in this package allocate per call.
type Solver interface {
	Name() string
	Solve(prob Problem, x0, p []float64) (*Trajectory, error)
}

func clone(x []float64) []float64 {
	c := make([]float64, len(x))
	copy(c, x)
	return c
}

func validState(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
