package dist

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Entry is one dimension of a distribution specification: a constant or a
// continuous distribution.
type Entry interface {
	// Rand draws one value.
	Rand() float64
	// Prob is the probability density at x. Constants report 1 so they
	// contribute no factor to a joint density.
	Prob(x float64) float64
	// Bounds is the support interval, possibly infinite. lo == hi marks
	// a fixed (non-integrated) dimension.
	Bounds() (lo, hi float64)
}

// Fixed reports whether e is a point mass, i.e. a dimension estimators do
// not integrate over.
func Fixed(e Entry) bool {
	lo, hi := e.Bounds()
	return lo == hi
}

// Constant is a Dirac point mass at its value.
type Constant float64

func (c Constant) Rand() float64              { return float64(c) }
func (c Constant) Prob(x float64) float64     { return 1 }
func (c Constant) Bounds() (float64, float64) { return float64(c), float64(c) }

type uniform struct {
	distuv.Uniform
}

func (u uniform) Bounds() (float64, float64) { return u.Min, u.Max }

// Uniform is a continuous uniform distribution on [min, max].
func Uniform(min, max float64) Entry {
	return uniform{distuv.Uniform{Min: min, Max: max}}
}

// UniformSrc is Uniform with an explicit random source for reproducible
// sampling.
func UniformSrc(min, max float64, src rand.Source) Entry {
	return uniform{distuv.Uniform{Min: min, Max: max, Src: src}}
}

type normal struct {
	distuv.Normal
}

func (n normal) Bounds() (float64, float64) { return math.Inf(-1), math.Inf(1) }

// Normal is an untruncated normal distribution. Its support is the whole
// real line; only quadrature strategies with infinite-domain transforms
// can integrate over it. Truncate it for bounded-domain strategies.
func Normal(mu, sigma float64) Entry {
	return normal{distuv.Normal{Mu: mu, Sigma: sigma}}
}

// NormalSrc is Normal with an explicit random source.
func NormalSrc(mu, sigma float64, src rand.Source) Entry {
	return normal{distuv.Normal{Mu: mu, Sigma: sigma, Src: src}}
}

// Quantiler is the capability a distribution needs to be truncated:
// density, CDF, and inverse CDF. distuv's continuous distributions
// satisfy it.
type Quantiler interface {
	Prob(x float64) float64
	CDF(x float64) float64
	Quantile(p float64) float64
}

type truncated struct {
	d      Quantiler
	lo, hi float64
	cdfLo  float64
	mass   float64
	u      distuv.Uniform
}

// Truncate restricts d to [lo, hi] and renormalizes. Sampling is by
// inverse CDF, so draws never fall outside the bounds.
//
// Truncating far outside d's effective mass leaves almost no density in
// the interval; adaptive quadrature over such a spec can converge to a
// spurious near-zero result. Keeping the bounds within a few standard
// deviations of the mass is the caller's responsibility.
func Truncate(d Quantiler, lo, hi float64) Entry {
	return TruncateSrc(d, lo, hi, nil)
}

// TruncateSrc is Truncate with an explicit random source.
func TruncateSrc(d Quantiler, lo, hi float64, src rand.Source) Entry {
	cdfLo := d.CDF(lo)
	return truncated{
		d:     d,
		lo:    lo,
		hi:    hi,
		cdfLo: cdfLo,
		mass:  d.CDF(hi) - cdfLo,
		u:     distuv.Uniform{Min: 0, Max: 1, Src: src},
	}
}

// TruncNormal is a normal distribution truncated to [lo, hi].
func TruncNormal(mu, sigma, lo, hi float64) Entry {
	return Truncate(distuv.Normal{Mu: mu, Sigma: sigma}, lo, hi)
}

// TruncNormalSrc is TruncNormal with an explicit random source.
func TruncNormalSrc(mu, sigma, lo, hi float64, src rand.Source) Entry {
	return TruncateSrc(distuv.Normal{Mu: mu, Sigma: sigma}, lo, hi, src)
}

func (t truncated) Rand() float64 {
	return t.d.Quantile(t.cdfLo + t.u.Rand()*t.mass)
}

func (t truncated) Prob(x float64) float64 {
	if x < t.lo || x > t.hi || t.mass <= 0 {
		return 0
	}
	return t.d.Prob(x) / t.mass
}

func (t truncated) Bounds() (float64, float64) { return t.lo, t.hi }
