package quad

import "math"

// Gauss-Kronrod 7-15 abscissae and weights (QUADPACK dqk15). xgk holds
// the nonnegative Kronrod nodes in decreasing order; the odd indices are
// the embedded 7-point Gauss nodes.
var (
	xgk = [8]float64{
		0.991455371120813,
		0.949107912342759,
		0.864864423359769,
		0.741531185599394,
		0.586087235467691,
		0.405845151377397,
		0.207784955007898,
		0.0,
	}
	wgk = [8]float64{
		0.022935322010529,
		0.063092092629979,
		0.104790010322250,
		0.140653259715525,
		0.169004726639267,
		0.190350578064785,
		0.204432940075298,
		0.209482141084728,
	}
	wg = [4]float64{
		0.129484966168870,
		0.279705391489277,
		0.381830050505119,
		0.417959183673469,
	}
)

// kronrod is the one-dimensional adaptive rule: 15-point Kronrod
// extension with the embedded 7-point Gauss rule as error reference.
type kronrod struct{}

func newKronrod() *kronrod { return &kronrod{} }

func (k *kronrod) npts() int { return 15 }

// Node layout: pairs (c - x_j*h, c + x_j*h) for j = 0..6, then the
// center.
func (k *kronrod) points(dst [][]float64, c, h []float64) {
	for j := 0; j < 7; j++ {
		dst[2*j][0] = c[0] - xgk[j]*h[0]
		dst[2*j+1][0] = c[0] + xgk[j]*h[0]
	}
	dst[14][0] = c[0]
}

func (k *kronrod) apply(vals [][]float64, c, h []float64, val, errv []float64) int {
	nout := len(val)
	for comp := 0; comp < nout; comp++ {
		center := vals[14][comp]

		kSum := wgk[7] * center
		gSum := wg[3] * center
		for j := 0; j < 7; j++ {
			pair := vals[2*j][comp] + vals[2*j+1][comp]
			kSum += wgk[j] * pair
			if j%2 == 1 {
				gSum += wg[(j-1)/2] * pair
			}
		}

		val[comp] = kSum * h[0]
		errv[comp] = math.Abs(kSum-gSum) * h[0]
	}
	return 0
}
