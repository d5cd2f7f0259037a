// Package dist describes probability distributions over the initial state
// and parameters of a dynamical system.
//
// Each dimension is an [Entry]: either a fixed constant (a Dirac point
// mass) or a continuous distribution with sampling, density, and support
// bounds. Continuous entries wrap gonum's stat/distuv distributions.
//
// A [Spec] is the ordered joint specification, initial-state entries
// first, parameter entries after. It is immutable once constructed and
// exposes exactly what estimators need: i.i.d. sampling of full
// (state, parameter) pairs, the joint density over the random dimensions,
// the support box those dimensions span, and the mapping from a point in
// that box back to a full (state, parameter) pair.
//
//	spec := dist.NewSpec(
//	    []dist.Entry{dist.Uniform(0, 10)},   // u0
//	    []dist.Entry{dist.Constant(-0.3)},   // p
//	)
package dist
