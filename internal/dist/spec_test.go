package dist_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"

	"github.com/uqsim/expect/internal/dist"
)

var _ = Describe("Entry", func() {
	Describe("Constant", func() {
		e := dist.Constant(-0.3)

		It("is a point mass", func() {
			Expect(dist.Fixed(e)).To(BeTrue())
			Expect(e.Rand()).To(Equal(-0.3))
		})

		It("contributes no density factor", func() {
			Expect(e.Prob(-0.3)).To(Equal(1.0))
			Expect(e.Prob(7.0)).To(Equal(1.0))
		})
	})

	Describe("Uniform", func() {
		e := dist.UniformSrc(-10, 10, rand.NewSource(1))

		It("has finite bounds", func() {
			lo, hi := e.Bounds()
			Expect(lo).To(Equal(-10.0))
			Expect(hi).To(Equal(10.0))
			Expect(dist.Fixed(e)).To(BeFalse())
		})

		It("has constant density 1/(b-a) on its support", func() {
			Expect(e.Prob(0)).To(BeNumerically("~", 0.05, 1e-12))
			Expect(e.Prob(11)).To(Equal(0.0))
		})

		It("samples inside its support", func() {
			for i := 0; i < 200; i++ {
				v := e.Rand()
				Expect(v).To(BeNumerically(">=", -10))
				Expect(v).To(BeNumerically("<=", 10))
			}
		})
	})

	Describe("Normal", func() {
		e := dist.Normal(2, 1)

		It("has infinite support", func() {
			lo, hi := e.Bounds()
			Expect(math.IsInf(lo, -1)).To(BeTrue())
			Expect(math.IsInf(hi, 1)).To(BeTrue())
		})

		It("peaks at the mean", func() {
			Expect(e.Prob(2)).To(BeNumerically("~", 1/math.Sqrt(2*math.Pi), 1e-12))
		})
	})

	Describe("TruncNormal", func() {
		e := dist.TruncNormalSrc(0, 1, -2, 2, rand.NewSource(7))

		It("renormalizes the density", func() {
			// Mass inside +-2 sigma is erf(sqrt(2)).
			mass := math.Erf(2 / math.Sqrt2)
			want := 1 / math.Sqrt(2*math.Pi) / mass
			Expect(e.Prob(0)).To(BeNumerically("~", want, 1e-10))
		})

		It("is zero outside the truncation bounds", func() {
			Expect(e.Prob(2.5)).To(Equal(0.0))
			Expect(e.Prob(-3)).To(Equal(0.0))
		})

		It("never samples outside the bounds", func() {
			for i := 0; i < 500; i++ {
				v := e.Rand()
				Expect(v).To(BeNumerically(">=", -2))
				Expect(v).To(BeNumerically("<=", 2))
			}
		})
	})
})

var _ = Describe("Spec", func() {
	var spec *dist.Spec

	BeforeEach(func() {
		spec = dist.NewSpec(
			[]dist.Entry{dist.UniformSrc(0, 10, rand.NewSource(3)), dist.Constant(1.5)},
			[]dist.Entry{dist.Constant(-0.3)},
		)
	})

	It("reports dimensions", func() {
		Expect(spec.StateDim()).To(Equal(2))
		Expect(spec.ParamDim()).To(Equal(1))
		Expect(spec.Dim()).To(Equal(3))
		Expect(spec.RandomDim()).To(Equal(1))
		Expect(spec.Unbounded()).To(BeFalse())
	})

	It("exposes the support box of the random dimensions", func() {
		lo, hi := spec.Bounds()
		Expect(lo).To(Equal([]float64{0.0}))
		Expect(hi).To(Equal([]float64{10.0}))
	})

	It("computes the joint density over random dimensions only", func() {
		Expect(spec.Density([]float64{5})).To(BeNumerically("~", 0.1, 1e-12))
		Expect(spec.Density([]float64{-1})).To(Equal(0.0))
	})

	It("decodes integration points into full pairs", func() {
		x0, p := spec.Decode([]float64{4.2})
		Expect(x0).To(Equal([]float64{4.2, 1.5}))
		Expect(p).To(Equal([]float64{-0.3}))
	})

	It("samples full pairs with constants fixed", func() {
		x0, p := spec.Sample()
		Expect(x0).To(HaveLen(2))
		Expect(x0[0]).To(BeNumerically(">=", 0))
		Expect(x0[0]).To(BeNumerically("<=", 10))
		Expect(x0[1]).To(Equal(1.5))
		Expect(p).To(Equal([]float64{-0.3}))
	})

	It("flags unbounded support", func() {
		s := dist.NewSpec([]dist.Entry{dist.Normal(0, 1)}, nil)
		Expect(s.Unbounded()).To(BeTrue())
	})

	It("approximates the declared mean when sampling", func() {
		sum := 0.0
		const n = 20000
		for i := 0; i < n; i++ {
			x0, _ := spec.Sample()
			sum += x0[0]
		}
		Expect(sum / n).To(BeNumerically("~", 5.0, 0.15))
	})
})
