// Package executor evaluates batches of trajectories.
//
// Both estimators hand a slice of (initial state, parameters) pairs to an
// [Executor] and get back trajectories in matching order, whatever the
// internal scheduling. Every strategy here is fail-fast: the first
// integration failure cancels the rest of the batch and aborts it, which
// is the policy the estimators require.
//
// Evaluations are embarrassingly parallel: each pair's inputs and outputs
// are independent and never aliased, so no locking is needed beyond the
// result slot indexing.
package executor
