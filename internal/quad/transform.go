package quad

import (
	"context"
	"math"
)

// Transformed lifts the finite-domain adaptive strategy to infinite and
// semi-infinite limits by a change of variables per dimension:
//
//	(-inf, inf):  x = t/(1-t^2),   t in (-1, 1)
//	[a, inf):     x = a + t/(1-t), t in [0, 1)
//	(-inf, b]:    x = b - t/(1-t), t in [0, 1)
//
// Rule nodes are strictly interior, so the singular endpoints are never
// evaluated. Finite dimensions pass through untouched.
type Transformed struct {
	inner *Adaptive
}

func NewTransformed() *Transformed { return &Transformed{inner: NewAdaptive()} }

func (s *Transformed) Name() string    { return "transformed" }
func (s *Transformed) Unbounded() bool { return true }

type axisMap struct {
	// x and jac map the transformed coordinate t to the original
	// coordinate and the Jacobian factor.
	x   func(t float64) float64
	jac func(t float64) float64
}

func identityMap() axisMap {
	return axisMap{
		x:   func(t float64) float64 { return t },
		jac: func(t float64) float64 { return 1 },
	}
}

func (s *Transformed) Integrate(ctx context.Context, f Integrand, lo, hi []float64, nout int, opts Options) (*Result, error) {
	if err := checkBounds(lo, hi, nout); err != nil {
		return nil, err
	}

	dim := len(lo)
	maps := make([]axisMap, dim)
	tlo := make([]float64, dim)
	thi := make([]float64, dim)

	for i := range lo {
		loInf := math.IsInf(lo[i], -1)
		hiInf := math.IsInf(hi[i], 1)
		switch {
		case loInf && hiInf:
			maps[i] = axisMap{
				x: func(t float64) float64 { return t / (1 - t*t) },
				jac: func(t float64) float64 {
					d := 1 - t*t
					return (1 + t*t) / (d * d)
				},
			}
			tlo[i], thi[i] = -1, 1
		case hiInf:
			a := lo[i]
			maps[i] = axisMap{
				x: func(t float64) float64 { return a + t/(1-t) },
				jac: func(t float64) float64 {
					d := 1 - t
					return 1 / (d * d)
				},
			}
			tlo[i], thi[i] = 0, 1
		case loInf:
			b := hi[i]
			maps[i] = axisMap{
				x: func(t float64) float64 { return b - t/(1-t) },
				jac: func(t float64) float64 {
					d := 1 - t
					return 1 / (d * d)
				},
			}
			tlo[i], thi[i] = 0, 1
		default:
			maps[i] = identityMap()
			tlo[i], thi[i] = lo[i], hi[i]
		}
	}

	g := func(ts [][]float64, out [][]float64) error {
		xs := make([][]float64, len(ts))
		jacs := make([]float64, len(ts))
		for k, t := range ts {
			x := make([]float64, dim)
			j := 1.0
			for i := 0; i < dim; i++ {
				x[i] = maps[i].x(t[i])
				j *= maps[i].jac(t[i])
			}
			xs[k] = x
			jacs[k] = j
		}

		if err := f(xs, out); err != nil {
			return err
		}
		for k := range out {
			for comp := range out[k] {
				out[k][comp] *= jacs[k]
			}
		}
		return nil
	}

	return s.inner.Integrate(ctx, g, tlo, thi, nout, opts)
}
