package expectation

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/uqsim/expect/internal/dist"
	"github.com/uqsim/expect/internal/traj"
)

// MomentSet holds moments 1..k of a scalar observable.
//
// Convention: Moments[0] is the mean (the raw first moment); Moments[k-1]
// for k >= 2 is the k-th central moment about that mean, so Moments[1] is
// the variance.
type MomentSet struct {
	Moments []float64

	// Evals and Converged carry over from the single underlying
	// estimate.
	Evals     int
	Converged bool
}

// Mean returns the first moment.
func (m *MomentSet) Mean() float64 { return m.Moments[0] }

// Variance returns the second central moment; the set must have order
// at least 2.
func (m *MomentSet) Variance() float64 { return m.Moments[1] }

// CentralMoments computes moments 1..order of a scalar observable with a
// single estimator call. The observable is augmented to the vector
// [g, g^2, ..., g^order], so the trajectory-evaluation count matches a
// mean-only estimate: it scales with the sample or node count, not with
// the moment order. Raw moments are then recombined into central moments
// by the binomial expansion about the mean.
func CentralMoments(ctx context.Context, order int, spec *dist.Spec, prob traj.Problem, obs ScalarObservable, est Estimator) (*MomentSet, error) {
	if order < 1 {
		return nil, configErrf("moment order must be >= 1, got %d", order)
	}

	aug := func(tr *traj.Trajectory) []float64 {
		v := obs(tr)
		out := make([]float64, order)
		pow := 1.0
		for k := 0; k < order; k++ {
			pow *= v
			out[k] = pow
		}
		return out
	}

	res, err := est.Estimate(ctx, spec, prob, aug, order)
	if err != nil {
		return nil, err
	}

	raw := res.Value // raw[k-1] = E[X^k]
	mean := raw[0]

	ms := &MomentSet{
		Moments:   make([]float64, order),
		Evals:     res.Evals,
		Converged: res.Converged,
	}
	ms.Moments[0] = mean

	for k := 2; k <= order; k++ {
		// E[(X - mean)^k] = sum_j C(k,j) E[X^j] (-mean)^(k-j)
		ck := 0.0
		for j := 0; j <= k; j++ {
			rawJ := 1.0
			if j > 0 {
				rawJ = raw[j-1]
			}
			ck += float64(combin.Binomial(k, j)) * rawJ * math.Pow(-mean, float64(k-j))
		}
		ms.Moments[k-1] = ck
	}

	return ms, nil
}
