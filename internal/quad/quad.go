package quad

import (
	"context"
	"fmt"
	"math"
)

// Integrand evaluates a batch of nodes. xs[i] is a point in the
// integration box; the value goes into out[i], which is preallocated to
// the declared output length. Node order within a batch must not affect
// the values.
type Integrand func(xs [][]float64, out [][]float64) error

// Options control an adaptive integration run.
type Options struct {
	// AbsTol and RelTol stop refinement once every component's error
	// estimate is below max(AbsTol, RelTol*|value|). Zero values default
	// to 1e-8 and 1e-6.
	AbsTol float64
	RelTol float64

	// MaxEvals bounds the number of integrand nodes; exhausting it
	// returns the best-effort result with Converged false. Zero defaults
	// to 500000.
	MaxEvals int

	// BatchSize is the preferred number of nodes per integrand call.
	// Zero or small values process one region's nodes at a time.
	BatchSize int
}

func (o Options) withDefaults() Options {
	if o.AbsTol == 0 && o.RelTol == 0 {
		o.AbsTol = 1e-8
		o.RelTol = 1e-6
	}
	if o.MaxEvals == 0 {
		o.MaxEvals = 500000
	}
	return o
}

// Result is an integral estimate with a per-component error bound.
// Converged false means the tolerance was not met: either the budget ran
// out (the value is still the best available estimate) or the domain was
// unbounded and the strategy could not handle it (the value is NaN).
type Result struct {
	Value     []float64
	Error     []float64
	Evals     int
	Converged bool
}

// Strategy is an adaptive multidimensional quadrature routine.
type Strategy interface {
	Name() string
	// Unbounded reports whether infinite integration limits are
	// supported.
	Unbounded() bool
	Integrate(ctx context.Context, f Integrand, lo, hi []float64, nout int, opts Options) (*Result, error)
}

func checkBounds(lo, hi []float64, nout int) error {
	if len(lo) == 0 || len(lo) != len(hi) {
		return fmt.Errorf("quad: bad bounds (lo %d, hi %d dims)", len(lo), len(hi))
	}
	if nout <= 0 {
		return fmt.Errorf("quad: nout must be positive, got %d", nout)
	}
	for i := range lo {
		if lo[i] > hi[i] {
			return fmt.Errorf("quad: inverted bounds in dim %d: [%g, %g]", i, lo[i], hi[i])
		}
	}
	return nil
}

func hasInf(lo, hi []float64) bool {
	for i := range lo {
		if math.IsInf(lo[i], 0) || math.IsInf(hi[i], 0) {
			return true
		}
	}
	return false
}

func degenerate(nout int) *Result {
	r := &Result{
		Value: make([]float64, nout),
		Error: make([]float64, nout),
	}
	for i := 0; i < nout; i++ {
		r.Value[i] = math.NaN()
		r.Error[i] = math.NaN()
	}
	return r
}
