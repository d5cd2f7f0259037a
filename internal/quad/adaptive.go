package quad

import (
	"container/heap"
	"context"
	"math"
)

// rule is an embedded cubature rule on a box given by center and
// halfwidths.
type rule interface {
	// npts is the number of nodes per region.
	npts() int
	// points writes the region's nodes into dst (npts slices of length
	// dim).
	points(dst [][]float64, c, h []float64)
	// apply combines the node values (npts slices of length nout) into
	// the region's integral estimate and error bound, returning the
	// axis to bisect next.
	apply(vals [][]float64, c, h []float64, val, errv []float64) int
}

type region struct {
	c, h    []float64
	val     []float64
	err     []float64
	maxErr  float64
	divAxis int
}

type regionHeap []*region

func (rh regionHeap) Len() int            { return len(rh) }
func (rh regionHeap) Less(i, j int) bool  { return rh[i].maxErr > rh[j].maxErr }
func (rh regionHeap) Swap(i, j int)       { rh[i], rh[j] = rh[j], rh[i] }
func (rh *regionHeap) Push(x interface{}) { *rh = append(*rh, x.(*region)) }
func (rh *regionHeap) Pop() interface{} {
	old := *rh
	n := len(old)
	r := old[n-1]
	*rh = old[:n-1]
	return r
}

// Adaptive is the finite-domain adaptive strategy: Gauss-Kronrod 7-15 in
// one dimension, Genz-Malik degree 7/5 cubature above.
type Adaptive struct{}

func NewAdaptive() *Adaptive { return &Adaptive{} }

func (a *Adaptive) Name() string    { return "adaptive" }
func (a *Adaptive) Unbounded() bool { return false }

func (a *Adaptive) Integrate(ctx context.Context, f Integrand, lo, hi []float64, nout int, opts Options) (*Result, error) {
	if err := checkBounds(lo, hi, nout); err != nil {
		return nil, err
	}
	if hasInf(lo, hi) {
		// Finite rules cannot place nodes on an infinite box. The
		// degenerate NaN result is the documented contract, not a
		// failure.
		return degenerate(nout), nil
	}
	opts = opts.withDefaults()

	dim := len(lo)
	var r rule
	if dim == 1 {
		r = newKronrod()
	} else {
		r = newGenzMalik(dim)
	}
	return integrate(ctx, f, lo, hi, nout, opts, r)
}

func integrate(ctx context.Context, f Integrand, lo, hi []float64, nout int, opts Options, r rule) (*Result, error) {
	dim := len(lo)
	npts := r.npts()

	c := make([]float64, dim)
	h := make([]float64, dim)
	for i := range lo {
		c[i] = 0.5 * (lo[i] + hi[i])
		h[i] = 0.5 * (hi[i] - lo[i])
	}

	evals := 0
	evalRegions := func(regs []*region) error {
		xs := make([][]float64, 0, len(regs)*npts)
		for _, reg := range regs {
			pts := make([][]float64, npts)
			for k := range pts {
				pts[k] = make([]float64, dim)
			}
			r.points(pts, reg.c, reg.h)
			xs = append(xs, pts...)
		}

		out := make([][]float64, len(xs))
		for k := range out {
			out[k] = make([]float64, nout)
		}
		if err := f(xs, out); err != nil {
			return err
		}
		evals += len(xs)

		for ri, reg := range regs {
			reg.val = make([]float64, nout)
			reg.err = make([]float64, nout)
			reg.divAxis = r.apply(out[ri*npts:(ri+1)*npts], reg.c, reg.h, reg.val, reg.err)
			reg.maxErr = 0
			for _, e := range reg.err {
				reg.maxErr = math.Max(reg.maxErr, e)
			}
		}
		return nil
	}

	root := &region{c: c, h: h}
	if err := evalRegions([]*region{root}); err != nil {
		return nil, err
	}

	total := append([]float64(nil), root.val...)
	totalErr := append([]float64(nil), root.err...)

	regs := &regionHeap{root}
	heap.Init(regs)

	regsPerIter := 1
	if opts.BatchSize > 2*npts {
		regsPerIter = opts.BatchSize / (2 * npts)
	}

	converged := func() bool {
		for k := 0; k < nout; k++ {
			if totalErr[k] > math.Max(opts.AbsTol, opts.RelTol*math.Abs(total[k])) {
				return false
			}
		}
		return true
	}

	for !converged() && evals < opts.MaxEvals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var children []*region
		for i := 0; i < regsPerIter && regs.Len() > 0; i++ {
			parent := heap.Pop(regs).(*region)
			for k := 0; k < nout; k++ {
				total[k] -= parent.val[k]
				totalErr[k] -= parent.err[k]
			}

			axis := parent.divAxis
			hChild := append([]float64(nil), parent.h...)
			hChild[axis] *= 0.5

			for _, sign := range []float64{-1, 1} {
				cChild := append([]float64(nil), parent.c...)
				cChild[axis] += sign * hChild[axis]
				children = append(children, &region{c: cChild, h: append([]float64(nil), hChild...)})
			}
		}
		if len(children) == 0 {
			break
		}

		if err := evalRegions(children); err != nil {
			return nil, err
		}
		for _, child := range children {
			for k := 0; k < nout; k++ {
				total[k] += child.val[k]
				totalErr[k] += child.err[k]
			}
			heap.Push(regs, child)
		}
	}

	// Rebuild the totals in heap order once at the end so the reported
	// value does not carry the incremental update drift.
	for k := 0; k < nout; k++ {
		total[k] = 0
		totalErr[k] = 0
	}
	for _, reg := range *regs {
		for k := 0; k < nout; k++ {
			total[k] += reg.val[k]
			totalErr[k] += reg.err[k]
		}
	}

	return &Result{
		Value:     total,
		Error:     totalErr,
		Evals:     evals,
		Converged: converged(),
	}, nil
}
