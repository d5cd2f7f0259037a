package executor

import (
	"context"

	"github.com/uqsim/expect/internal/traj"
)

// Pair is one concrete (initial state, parameters) instantiation.
type Pair struct {
	State  []float64
	Params []float64
}

// EvalFunc integrates one pair into a trajectory.
type EvalFunc func(Pair) (*traj.Trajectory, error)

// Executor evaluates many pairs, preserving result-to-input order.
// A failed element aborts the whole batch (fail-fast); on error or
// context cancellation the partial results are discarded.
type Executor interface {
	Name() string
	EvaluateMany(ctx context.Context, pairs []Pair, eval EvalFunc) ([]*traj.Trajectory, error)
}

// Sequential evaluates pairs one at a time on the calling goroutine.
type Sequential struct{}

func NewSequential() *Sequential { return &Sequential{} }

func (s *Sequential) Name() string { return "sequential" }

func (s *Sequential) EvaluateMany(ctx context.Context, pairs []Pair, eval EvalFunc) ([]*traj.Trajectory, error) {
	out := make([]*traj.Trajectory, len(pairs))
	for i, pair := range pairs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tr, err := eval(pair)
		if err != nil {
			return nil, err
		}
		out[i] = tr
	}
	return out, nil
}
