// Package quad provides adaptive numerical quadrature over
// hyperrectangles for vector-valued integrands.
//
// The [Adaptive] strategy pairs a 7-15 Gauss-Kronrod rule (one dimension)
// with the Genz-Malik degree 7/5 embedded cubature rule (two and more
// dimensions), refining the region with the largest error estimate until
// every output component meets tolerance or the evaluation budget runs
// out. Integrands are always called with a batch of nodes, so callers can
// fan the evaluations out however they like.
//
// Rules here are finite-domain only; [Transformed] wraps the adaptive
// strategy with the usual change of variables for infinite and
// semi-infinite limits. Handing infinite limits to a strategy that does
// not support them yields a NaN result flagged as not converged rather
// than an error; that contract is the caller's to respect.
//
// Refinement is deterministic: identical inputs produce identical
// results, including the node placement and the reduction order.
package quad
