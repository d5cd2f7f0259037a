package dist

import "math"

// Spec is the ordered joint distribution over a system's initial state
// and parameters. Immutable after construction.
type Spec struct {
	state  []Entry
	params []Entry
	all    []Entry
	random []int // indices into all of the non-fixed entries
}

// NewSpec builds a Spec from per-dimension entries, initial-state
// dimensions first.
func NewSpec(state, params []Entry) *Spec {
	s := &Spec{
		state:  append([]Entry(nil), state...),
		params: append([]Entry(nil), params...),
	}
	s.all = append(append([]Entry(nil), s.state...), s.params...)
	for i, e := range s.all {
		if !Fixed(e) {
			s.random = append(s.random, i)
		}
	}
	return s
}

func (s *Spec) StateDim() int { return len(s.state) }
func (s *Spec) ParamDim() int { return len(s.params) }
func (s *Spec) Dim() int      { return len(s.all) }

// RandomDim is the number of dimensions estimators integrate or sample
// over, i.e. the non-constant entries.
func (s *Spec) RandomDim() int { return len(s.random) }

// Bounds returns the support box of the random dimensions, in spec order.
func (s *Spec) Bounds() (lo, hi []float64) {
	lo = make([]float64, len(s.random))
	hi = make([]float64, len(s.random))
	for j, i := range s.random {
		lo[j], hi[j] = s.all[i].Bounds()
	}
	return lo, hi
}

// Unbounded reports whether any random dimension has infinite support.
func (s *Spec) Unbounded() bool {
	lo, hi := s.Bounds()
	for j := range lo {
		if math.IsInf(lo[j], 0) || math.IsInf(hi[j], 0) {
			return true
		}
	}
	return false
}

// Density is the joint density at a point x in the random-dimension box.
// It is zero as soon as any dimension falls outside its support.
func (s *Spec) Density(x []float64) float64 {
	d := 1.0
	for j, i := range s.random {
		d *= s.all[i].Prob(x[j])
		if d == 0 {
			return 0
		}
	}
	return d
}

// Sample draws one full (initial state, parameters) pair. Dimensions are
// independent by construction.
func (s *Spec) Sample() (x0, p []float64) {
	x0 = make([]float64, len(s.state))
	for i, e := range s.state {
		x0[i] = e.Rand()
	}
	p = make([]float64, len(s.params))
	for i, e := range s.params {
		p[i] = e.Rand()
	}
	return x0, p
}

// Decode expands a random-dimension point x into a full (initial state,
// parameters) pair, filling constant dimensions with their values.
func (s *Spec) Decode(x []float64) (x0, p []float64) {
	full := make([]float64, len(s.all))
	for i, e := range s.all {
		lo, _ := e.Bounds()
		full[i] = lo // constants; overwritten below for random dims
	}
	for j, i := range s.random {
		full[i] = x[j]
	}
	return full[:len(s.state)], full[len(s.state):]
}
