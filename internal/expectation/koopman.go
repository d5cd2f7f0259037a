package expectation

import (
	"context"

	"github.com/uqsim/expect/internal/dist"
	"github.com/uqsim/expect/internal/executor"
	"github.com/uqsim/expect/internal/quad"
	"github.com/uqsim/expect/internal/traj"
)

// Koopman estimates an expectation by deterministic quadrature of the
// density-weighted observable over the spec's support box. Unlike Monte
// Carlo it carries an explicit error estimate and refines adaptively
// toward the requested tolerances.
//
// The support box is the Cartesian product of the random entries'
// bounds; constant entries are fixed, not integrated over. Unbounded
// entries (e.g. an untruncated normal) need a strategy whose Unbounded
// method reports true, such as quad.NewTransformed; a finite-domain
// strategy yields a NaN result with Converged false, per the quad
// package contract. Truncating the distribution tightly around its mass
// is the caller's lever for accuracy.
type Koopman struct {
	// Strategy defaults to quad.NewAdaptive (finite domains only).
	Strategy quad.Strategy

	// AbsTol, RelTol, and MaxEvals pass through to the quadrature
	// routine; zero values take the quad package defaults.
	AbsTol   float64
	RelTol   float64
	MaxEvals int

	// BatchSize above the rule size makes the quadrature hand several
	// regions' nodes to the integrand at once, all dispatched through
	// the executor in one batch.
	BatchSize int

	Solver   traj.Solver
	Executor executor.Executor
	Counter  *EvalCounter
}

func (k *Koopman) Name() string { return "koopman" }

func (k *Koopman) Estimate(ctx context.Context, spec *dist.Spec, prob traj.Problem, obs Observable, nout int) (*Result, error) {
	if nout <= 0 {
		return nil, configErrf("nout must be positive, got %d", nout)
	}
	if k.AbsTol < 0 || k.RelTol < 0 {
		return nil, configErrf("tolerances must be non-negative")
	}

	solver := k.Solver
	if solver == nil {
		solver = traj.NewDormandPrince()
	}
	exec := k.Executor
	if exec == nil {
		exec = executor.NewSequential()
	}
	strategy := k.Strategy
	if strategy == nil {
		strategy = quad.NewAdaptive()
	}

	// Fully deterministic spec: the expectation is a single trajectory.
	if spec.RandomDim() == 0 {
		x0, p := spec.Sample()
		k.Counter.Add(1)
		tr, err := solver.Solve(prob, x0, p)
		if err != nil {
			return nil, err
		}
		v := obs(tr)
		if len(v) != nout {
			return nil, configErrf("observable returned %d values, want nout=%d", len(v), nout)
		}
		return &Result{
			Value:       v,
			ErrEstimate: make([]float64, nout),
			Evals:       1,
			Converged:   true,
		}, nil
	}

	trajEvals := 0
	eval := func(pair executor.Pair) (*traj.Trajectory, error) {
		return solver.Solve(prob, pair.State, pair.Params)
	}

	integrand := func(xs [][]float64, out [][]float64) error {
		// Nodes with zero joint density lie outside some entry's
		// support; they contribute nothing and the solver is never
		// invoked there.
		idx := make([]int, 0, len(xs))
		pairs := make([]executor.Pair, 0, len(xs))
		dens := make([]float64, len(xs))
		for i, x := range xs {
			d := spec.Density(x)
			dens[i] = d
			if d > 0 {
				x0, p := spec.Decode(x)
				idx = append(idx, i)
				pairs = append(pairs, executor.Pair{State: x0, Params: p})
			}
		}

		trajs, err := exec.EvaluateMany(ctx, pairs, eval)
		if err != nil {
			return err
		}
		trajEvals += len(pairs)
		k.Counter.Add(len(pairs))

		for j, i := range idx {
			v := obs(trajs[j])
			if len(v) != nout {
				return configErrf("observable returned %d values, want nout=%d", len(v), nout)
			}
			for comp, y := range v {
				out[i][comp] = y * dens[i]
			}
		}
		return nil
	}

	lo, hi := spec.Bounds()
	res, err := strategy.Integrate(ctx, integrand, lo, hi, nout, quad.Options{
		AbsTol:    k.AbsTol,
		RelTol:    k.RelTol,
		MaxEvals:  k.MaxEvals,
		BatchSize: k.BatchSize,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Value:       res.Value,
		ErrEstimate: res.Error,
		Evals:       trajEvals,
		Converged:   res.Converged,
	}, nil
}
