package quad

import "math"

// genzMalik is the Genz-Malik degree-7 cubature rule with the embedded
// degree-5 rule as error reference. Node count is 1 + 4d + 2d(d-1) + 2^d,
// so it is intended for moderate dimension counts (the usual case here:
// a handful of uncertain state/parameter dimensions).
type genzMalik struct {
	dim int

	w1, w2, w3, w4, w5 float64 // degree-7 weights, per unit volume
	v1, v2, v3, v4     float64 // degree-5 weights
}

const (
	gmLambda2 = 0.35856858280031809199 // sqrt(9/70)
	gmLambda3 = 0.94868329805051379960 // sqrt(9/10)
	gmLambda4 = 0.94868329805051379960 // sqrt(9/10)
	gmLambda5 = 0.68824720161168529772 // sqrt(9/19)
)

func newGenzMalik(dim int) *genzMalik {
	d := float64(dim)
	return &genzMalik{
		dim: dim,
		w1:  (12824 - 9120*d + 400*d*d) / 19683,
		w2:  980.0 / 6561,
		w3:  (1820 - 400*d) / 19683,
		w4:  200.0 / 19683,
		w5:  6859.0 / 19683 / math.Exp2(d),
		v1:  (729 - 950*d + 50*d*d) / 729,
		v2:  245.0 / 486,
		v3:  (265 - 100*d) / 1458,
		v4:  25.0 / 729,
	}
}

func (g *genzMalik) npts() int {
	d := g.dim
	return 1 + 4*d + 2*d*(d-1) + (1 << uint(d))
}

// Node layout: center; per-axis pairs at lambda2 then lambda3; two-axis
// sign combinations at lambda4; the 2^d corners at lambda5.
func (g *genzMalik) points(dst [][]float64, c, h []float64) {
	d := g.dim
	idx := 0

	put := func(x []float64) {
		copy(dst[idx], x)
		idx++
	}

	put(c)

	x := make([]float64, d)
	for _, lambda := range []float64{gmLambda2, gmLambda3} {
		for i := 0; i < d; i++ {
			copy(x, c)
			x[i] = c[i] - lambda*h[i]
			put(x)
			x[i] = c[i] + lambda*h[i]
			put(x)
		}
	}

	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			for _, si := range []float64{-1, 1} {
				for _, sj := range []float64{-1, 1} {
					copy(x, c)
					x[i] = c[i] + si*gmLambda4*h[i]
					x[j] = c[j] + sj*gmLambda4*h[j]
					put(x)
				}
			}
		}
	}

	for mask := 0; mask < (1 << uint(d)); mask++ {
		for i := 0; i < d; i++ {
			if mask&(1<<uint(i)) != 0 {
				x[i] = c[i] + gmLambda5*h[i]
			} else {
				x[i] = c[i] - gmLambda5*h[i]
			}
		}
		put(x)
	}
}

func (g *genzMalik) apply(vals [][]float64, c, h []float64, val, errv []float64) int {
	d := g.dim
	nout := len(val)

	vol := 1.0
	for i := 0; i < d; i++ {
		vol *= 2 * h[i]
	}

	// Fourth-difference ratio used both in the degree-7/5 pairing and in
	// the divided-difference axis selection.
	const ratio = gmLambda2 * gmLambda2 / (gmLambda3 * gmLambda3)

	diff := make([]float64, d)
	for comp := 0; comp < nout; comp++ {
		center := vals[0][comp]

		var s2, s3, s4, s5 float64
		for i := 0; i < d; i++ {
			lo2 := vals[1+2*i][comp]
			hi2 := vals[2+2*i][comp]
			lo3 := vals[1+2*d+2*i][comp]
			hi3 := vals[2+2*d+2*i][comp]
			s2 += lo2 + hi2
			s3 += lo3 + hi3
			diff[i] += math.Abs(lo2 + hi2 - 2*center - ratio*(lo3+hi3-2*center))
		}

		base4 := 1 + 4*d
		n4 := 2 * d * (d - 1)
		for k := 0; k < n4; k++ {
			s4 += vals[base4+k][comp]
		}
		base5 := base4 + n4
		for k := 0; k < (1 << uint(d)); k++ {
			s5 += vals[base5+k][comp]
		}

		i7 := vol * (g.w1*center + g.w2*s2 + g.w3*s3 + g.w4*s4 + g.w5*s5)
		i5 := vol * (g.v1*center + g.v2*s2 + g.v3*s3 + g.v4*s4)

		val[comp] = i7
		errv[comp] = math.Abs(i7 - i5)
	}

	axis := 0
	for i := 1; i < d; i++ {
		if diff[i] > diff[axis] {
			axis = i
		}
	}
	return axis
}
