package executor

import (
	"context"
	"runtime"
	"sync"

	"github.com/uqsim/expect/internal/traj"
)

// Pool evaluates pairs on a fixed set of worker goroutines, each taking a
// contiguous chunk of the batch. Results land in their input slots, so
// output order matches input order regardless of completion order.
type Pool struct {
	workers int
}

// NewPool builds a Pool with the given worker count; 0 means NumCPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Name() string { return "pool" }

func (p *Pool) EvaluateMany(ctx context.Context, pairs []Pair, eval EvalFunc) ([]*traj.Trajectory, error) {
	n := len(pairs)
	if n == 0 {
		return nil, nil
	}

	workers := p.workers
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]*traj.Trajectory, n)
	errs := make([]error, workers)
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			start := worker * chunkSize
			end := start + chunkSize
			if end > n {
				end = n
			}

			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					errs[worker] = ctx.Err()
					return
				default:
				}

				tr, err := eval(pairs[i])
				if err != nil {
					errs[worker] = err
					cancel() // fail-fast: stop the other workers
					return
				}
				out[i] = tr
			}
		}(w)
	}
	wg.Wait()

	// Prefer a real evaluation failure over a cancellation triggered by it.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil || firstErr == context.Canceled {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Auto selects a Pool on multicore machines and Sequential otherwise.
func Auto() Executor {
	if runtime.NumCPU() > 1 {
		return NewPool(0)
	}
	return NewSequential()
}
