package expectation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/uqsim/expect/internal/dist"
	"github.com/uqsim/expect/internal/executor"
	"github.com/uqsim/expect/internal/quad"
	"github.com/uqsim/expect/internal/traj"
)

func plainUniformSpec(min, max float64) *dist.Spec {
	return dist.NewSpec(
		[]dist.Entry{dist.Uniform(min, max)},
		[]dist.Entry{dist.Constant(-0.3)},
	)
}

func TestKoopmanSymmetricUniform(t *testing.T) {
	est := &Koopman{AbsTol: 1e-6, RelTol: 1e-6}
	res, err := est.Estimate(context.Background(), plainUniformSpec(-10, 10), decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if !res.Converged {
		t.Error("expected convergence")
	}
	if math.Abs(res.Scalar()) > 1e-4 {
		t.Errorf("expected ~0, got %.8f", res.Scalar())
	}
}

func TestKoopmanPositiveUniform(t *testing.T) {
	est := &Koopman{AbsTol: 1e-8, RelTol: 1e-8}
	res, err := est.Estimate(context.Background(), plainUniformSpec(0, 10), decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	want := math.Exp(-1.2) * 5 // ~1.506
	if math.Abs(res.Scalar()-want) > 1e-4 {
		t.Errorf("got %.8f, want %.8f", res.Scalar(), want)
	}
	if res.ErrEstimate == nil {
		t.Error("quadrature estimates carry an error bound")
	}
}

func TestKoopmanIdempotence(t *testing.T) {
	run := func() *Result {
		est := &Koopman{AbsTol: 1e-8, RelTol: 1e-8}
		res, err := est.Estimate(context.Background(), plainUniformSpec(0, 10), decayProblem(), finalState, 1)
		if err != nil {
			t.Fatalf("estimate failed: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if a.Scalar() != b.Scalar() {
		t.Errorf("reruns differ bit for bit: %.17g vs %.17g", a.Scalar(), b.Scalar())
	}
	if a.Evals != b.Evals {
		t.Errorf("eval counts differ: %d vs %d", a.Evals, b.Evals)
	}
}

func TestKoopmanUnboundedDegenerate(t *testing.T) {
	spec := dist.NewSpec(
		[]dist.Entry{dist.Normal(5, 1)},
		[]dist.Entry{dist.Constant(-0.3)},
	)

	// The default strategy cannot transform infinite limits; the result
	// is a flagged NaN, not a crash and not an error.
	est := &Koopman{}
	res, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("expected degenerate result, not error: %v", err)
	}
	if res.Converged {
		t.Error("degenerate result must be flagged unreliable")
	}
	if !math.IsNaN(res.Scalar()) {
		t.Errorf("expected NaN, got %f", res.Scalar())
	}
}

func TestKoopmanTransformedUnbounded(t *testing.T) {
	spec := dist.NewSpec(
		[]dist.Entry{dist.Normal(5, 1)},
		[]dist.Entry{dist.Constant(-0.3)},
	)

	est := &Koopman{Strategy: quad.NewTransformed(), AbsTol: 1e-9, RelTol: 1e-9}
	res, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if !res.Converged {
		t.Error("expected convergence")
	}

	want := math.Exp(-1.2) * 5
	if math.Abs(res.Scalar()-want) > 1e-4 {
		t.Errorf("got %.8f, want %.8f", res.Scalar(), want)
	}
}

func TestKoopmanTruncationAccuracy(t *testing.T) {
	want := math.Exp(-1.2) * 5 // symmetric truncation keeps the mean at 5

	run := func(lo, hi float64) float64 {
		spec := dist.NewSpec(
			[]dist.Entry{dist.TruncNormal(5, 1, lo, hi)},
			[]dist.Entry{dist.Constant(-0.3)},
		)
		est := &Koopman{AbsTol: 1e-10, RelTol: 1e-10, MaxEvals: 300}
		res, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 1)
		if err != nil {
			t.Fatalf("estimate failed: %v", err)
		}
		return math.Abs(res.Scalar() - want)
	}

	// Tight truncation (+-3 sigma around the mass) vs the same normal
	// truncated absurdly wide: the adaptive rule starves on the wide box
	// and lands far from the true value under the same budget.
	errTight := run(2, 8)
	errLoose := run(-5000, 5010)

	if errTight > 1e-4 {
		t.Errorf("tight truncation error %.2e unexpectedly large", errTight)
	}
	if errLoose < 10*errTight {
		t.Errorf("loose truncation (err %.2e) should be clearly worse than tight (err %.2e)", errLoose, errTight)
	}
}

func TestKoopmanNonConvergenceFlag(t *testing.T) {
	spec := dist.NewSpec(
		[]dist.Entry{dist.TruncNormal(5, 1, -5000, 5010)},
		[]dist.Entry{dist.Constant(-0.3)},
	)

	est := &Koopman{AbsTol: 1e-12, RelTol: 1e-12, MaxEvals: 100}
	res, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("non-convergence is not an error: %v", err)
	}
	if res.Converged {
		t.Error("expected the reliability flag to be cleared")
	}
	if res.Value == nil || res.ErrEstimate == nil {
		t.Error("best-effort value and error bound must still be returned")
	}
}

func TestKoopmanBatchedParallelDeterminism(t *testing.T) {
	base := &Koopman{AbsTol: 1e-8, RelTol: 1e-8}
	plain, err := base.Estimate(context.Background(), plainUniformSpec(0, 10), decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	batched := &Koopman{
		AbsTol:    1e-8,
		RelTol:    1e-8,
		BatchSize: 64,
		Executor:  executor.NewPool(4),
	}
	res, err := batched.Estimate(context.Background(), plainUniformSpec(0, 10), decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("batched estimate failed: %v", err)
	}

	if plain.Scalar() != res.Scalar() {
		t.Errorf("batch dispatch changed the value: %.17g vs %.17g", plain.Scalar(), res.Scalar())
	}
}

func TestKoopmanVectorEvalCount(t *testing.T) {
	sinObs := func(tr *traj.Trajectory) []float64 {
		return []float64{math.Sin(tr.Final()[0])}
	}
	vecObs := func(tr *traj.Trajectory) []float64 {
		u := tr.Final()[0]
		return []float64{u, math.Sin(u)}
	}

	run := func(obs Observable, nout int) int {
		counter := &EvalCounter{}
		est := &Koopman{AbsTol: 1e-9, RelTol: 1e-9, Counter: counter}
		if _, err := est.Estimate(context.Background(), plainUniformSpec(0, 10), decayProblem(), obs, nout); err != nil {
			t.Fatalf("estimate failed: %v", err)
		}
		return int(counter.Count())
	}

	e1 := run(finalState, 1)
	e2 := run(sinObs, 1)
	vec := run(vecObs, 2)

	max := e1
	if e2 > max {
		max = e2
	}
	if vec > max {
		t.Errorf("vector call used %d trajectory evaluations, scalar max is %d", vec, max)
	}
}

func TestKoopmanAllConstantSpec(t *testing.T) {
	spec := dist.NewSpec(
		[]dist.Entry{dist.Constant(2)},
		[]dist.Entry{dist.Constant(-0.3)},
	)

	est := &Koopman{}
	res, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 1)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if res.Evals != 1 {
		t.Errorf("deterministic spec should cost one trajectory, got %d", res.Evals)
	}

	want := 2 * math.Exp(-1.2)
	if math.Abs(res.Scalar()-want) > 1e-6 {
		t.Errorf("got %.8f, want %.8f", res.Scalar(), want)
	}
}

func TestKoopmanFailFast(t *testing.T) {
	blowup := traj.Problem{
		F:  func(dx, x, p []float64, t float64) { dx[0] = math.Sqrt(x[0]) },
		T0: 0,
		T1: 2,
	}
	spec := dist.NewSpec([]dist.Entry{dist.Uniform(-1, 1)}, nil)

	est := &Koopman{}
	_, err := est.Estimate(context.Background(), spec, blowup, finalState, 1)
	if !errors.Is(err, traj.ErrIntegrationFailure) {
		t.Errorf("expected ErrIntegrationFailure, got %v", err)
	}
}

func TestKoopmanConfigErrors(t *testing.T) {
	spec := plainUniformSpec(0, 10)

	est := &Koopman{}
	if _, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("nout=0: expected ErrConfiguration, got %v", err)
	}
	if _, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 3); !errors.Is(err, ErrConfiguration) {
		t.Errorf("nout mismatch: expected ErrConfiguration, got %v", err)
	}

	est = &Koopman{AbsTol: -1}
	if _, err := est.Estimate(context.Background(), spec, decayProblem(), finalState, 1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("negative tolerance: expected ErrConfiguration, got %v", err)
	}
}
