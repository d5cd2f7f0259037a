package expectation

import "sync/atomic"

// EvalCounter counts trajectory evaluations as an explicit side channel.
// Inject one into an estimator to instrument a single call; it is never
// process-wide state. A nil counter is a no-op, and the methods are safe
// for concurrent use by executor workers.
type EvalCounter struct {
	n int64
}

func (c *EvalCounter) Add(n int) {
	if c == nil {
		return
	}
	atomic.AddInt64(&c.n, int64(n))
}

func (c *EvalCounter) Count() int64 {
	if c == nil {
		return 0
	}
	return atomic.LoadInt64(&c.n)
}

func (c *EvalCounter) Reset() {
	if c == nil {
		return
	}
	atomic.StoreInt64(&c.n, 0)
}
