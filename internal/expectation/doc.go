// Package expectation computes expected values of trajectory observables
// under a distribution over initial conditions and parameters.
//
// Two estimator strategies share one contract. [MonteCarlo] draws a fixed
// number of i.i.d. samples from the distribution spec, integrates a
// trajectory for each, and averages the observable; its error shrinks as
// O(1/sqrt(n)) with no adaptive refinement. [Koopman] instead evaluates
// the push-forward expectation as a deterministic integral of
// observable(trajectory(x)) * density(x) over the spec's support box,
// using adaptive quadrature with an explicit error estimate.
//
//	est := &expectation.Koopman{}
//	res, err := est.Estimate(ctx, spec, prob, obs, 1)
//
// Trajectory evaluations are dispatched through an injected
// executor.Executor, so samples and quadrature nodes can run on parallel
// workers without the estimators caring. Both estimators are fail-fast:
// any integration failure aborts the whole call, since a partial estimate
// is statistically meaningless.
//
// [CentralMoments] layers on either estimator, augmenting the observable
// with powers of itself so moments 1..k cost the same number of
// trajectory evaluations as the mean alone.
//
// Callers of [Koopman] must check Result.Converged: quadrature that
// exhausts its budget, or an unbounded-support spec handed to a
// finite-domain strategy, returns a best-effort (possibly NaN) value with
// the flag cleared rather than an error.
package expectation
