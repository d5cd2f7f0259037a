package expectation

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/uqsim/expect/internal/dist"
	"github.com/uqsim/expect/internal/executor"
	"github.com/uqsim/expect/internal/traj"
)

// MonteCarlo estimates an expectation as the sample mean over a fixed
// number of i.i.d. draws from the spec. The caller fixes the sample
// count up front; accuracy improves as O(1/sqrt(Samples)).
type MonteCarlo struct {
	Samples int

	// Solver defaults to an adaptive Dormand-Prince solver, Executor to
	// sequential evaluation. Counter is an optional side channel.
	Solver   traj.Solver
	Executor executor.Executor
	Counter  *EvalCounter
}

func (m *MonteCarlo) Name() string { return "montecarlo" }

func (m *MonteCarlo) Estimate(ctx context.Context, spec *dist.Spec, prob traj.Problem, obs Observable, nout int) (*Result, error) {
	if m.Samples <= 0 {
		return nil, configErrf("sample count must be positive, got %d", m.Samples)
	}
	if nout <= 0 {
		return nil, configErrf("nout must be positive, got %d", nout)
	}

	solver := m.Solver
	if solver == nil {
		solver = traj.NewDormandPrince()
	}
	exec := m.Executor
	if exec == nil {
		exec = executor.NewSequential()
	}

	pairs := make([]executor.Pair, m.Samples)
	for i := range pairs {
		x0, p := spec.Sample()
		pairs[i] = executor.Pair{State: x0, Params: p}
	}

	eval := func(pair executor.Pair) (*traj.Trajectory, error) {
		m.Counter.Add(1)
		return solver.Solve(prob, pair.State, pair.Params)
	}

	// Fail-fast: a partial sample set is statistically invalid, so any
	// integration failure aborts the estimate.
	trajs, err := exec.EvaluateMany(ctx, pairs, eval)
	if err != nil {
		return nil, err
	}

	sum := newKahanSum(nout)
	for i, tr := range trajs {
		v := obs(tr)
		if len(v) != nout {
			return nil, configErrf("observable returned %d values for sample %d, want nout=%d", len(v), i, nout)
		}
		sum.add(v)
	}

	mean := sum.sum
	floats.Scale(1/float64(m.Samples), mean)

	return &Result{
		Value:     mean,
		Evals:     m.Samples,
		Converged: true,
	}, nil
}
