package expectation

import (
	"context"
	"errors"
	"fmt"

	"github.com/uqsim/expect/internal/dist"
	"github.com/uqsim/expect/internal/traj"
)

// Observable maps a trajectory to a fixed-length vector. The length must
// equal the nout declared to the estimator on every invocation within a
// call; a mismatch is a configuration error.
type Observable func(tr *traj.Trajectory) []float64

// ScalarObservable is the length-1 special case used by the moment
// calculator.
type ScalarObservable func(tr *traj.Trajectory) float64

// Vec lifts a ScalarObservable to an Observable.
func (f ScalarObservable) Vec() Observable {
	return func(tr *traj.Trajectory) []float64 {
		return []float64{f(tr)}
	}
}

// ErrConfiguration marks caller mistakes: non-positive sample counts or
// moment orders, observable length mismatches, and the like. These abort
// the call immediately.
var ErrConfiguration = errors.New("expectation: invalid configuration")

func configErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Result is an expectation estimate.
type Result struct {
	// Value has length nout.
	Value []float64

	// ErrEstimate is the quadrature error bound per component; nil for
	// Monte Carlo estimates.
	ErrEstimate []float64

	// Evals counts trajectory evaluations spent on this call.
	Evals int

	// Converged is the reliability indicator. Monte Carlo always sets
	// it; Koopman clears it on quadrature non-convergence or a
	// degenerate (unbounded-domain) run, in which case Value is
	// best-effort and must not be trusted blindly.
	Converged bool
}

// Scalar returns the first component, for nout=1 calls.
func (r *Result) Scalar() float64 { return r.Value[0] }

// Estimator is the closed set of expectation strategies: [MonteCarlo]
// and [Koopman].
type Estimator interface {
	Name() string
	Estimate(ctx context.Context, spec *dist.Spec, prob traj.Problem, obs Observable, nout int) (*Result, error)
}

// kahanSum accumulates vectors with compensated summation in a fixed
// order, keeping parallel-evaluated batches deterministic.
type kahanSum struct {
	sum []float64
	c   []float64
}

func newKahanSum(n int) *kahanSum {
	return &kahanSum{sum: make([]float64, n), c: make([]float64, n)}
}

func (k *kahanSum) add(v []float64) {
	for i, x := range v {
		y := x - k.c[i]
		t := k.sum[i] + y
		k.c[i] = (t - k.sum[i]) - y
		k.sum[i] = t
	}
}
