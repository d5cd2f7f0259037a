package traj

import "math"

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DormandPrince is an adaptive RK45 solver with the Dormand-Prince
// tableau. The first-same-as-last property reuses the final stage of an
// accepted step as the first stage of the next, so each accepted step
// costs six derivative evaluations.
type DormandPrince struct {
	AbsTol   float64
	RelTol   float64
	InitStep float64 // 0 selects span/100
	MaxSteps int

	safety   float64
	minScale float64
	maxScale float64
}

func NewDormandPrince() *DormandPrince {
	return &DormandPrince{
		AbsTol:   1e-9,
		RelTol:   1e-7,
		MaxSteps: 100000,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (s *DormandPrince) Name() string { return "dopri" }

func (s *DormandPrince) Solve(prob Problem, x0, p []float64) (*Trajectory, error) {
	if len(prob.X0) > 0 && len(x0) != len(prob.X0) {
		return nil, solveErr(prob.T0, 0, ErrDimensionMismatch)
	}
	n := len(x0)
	span := prob.Span()

	dt := s.InitStep
	if dt <= 0 {
		dt = span / 100
	}
	minDt := span * 1e-14

	t := prob.T0
	x := clone(x0)
	k1 := make([]float64, n)
	prob.F(k1, x, p, t)
	if !validState(k1) {
		return nil, solveErr(t, 0, ErrIntegrationFailure)
	}

	tr := &Trajectory{}
	tr.append(t, x, k1)

	k2 := make([]float64, n)
	k3 := make([]float64, n)
	k4 := make([]float64, n)
	k5 := make([]float64, n)
	k6 := make([]float64, n)
	k7 := make([]float64, n)
	scratch := make([]float64, n)
	xNew := make([]float64, n)

	for step := 0; t < prob.T1; step++ {
		if step >= s.MaxSteps {
			return nil, solveErr(t, step, ErrStepBudget)
		}
		if dt < minDt {
			return nil, solveErr(t, step, ErrStepTooSmall)
		}
		if t+dt > prob.T1 {
			dt = prob.T1 - t
		}

		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*b21*k1[i]
		}
		prob.F(k2, scratch, p, t+a2*dt)

		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
		}
		prob.F(k3, scratch, p, t+a3*dt)

		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
		}
		prob.F(k4, scratch, p, t+a4*dt)

		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
		}
		prob.F(k5, scratch, p, t+a5*dt)

		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
		}
		prob.F(k6, scratch, p, t+dt)

		for i := 0; i < n; i++ {
			xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
		}
		if !validState(xNew) {
			return nil, solveErr(t, step, ErrIntegrationFailure)
		}
		prob.F(k7, xNew, p, t+dt)

		errMax := 0.0
		for i := 0; i < n; i++ {
			errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
			scale := s.AbsTol + s.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
			errMax = math.Max(errMax, math.Abs(errEst)/scale)
		}

		if errMax <= 1 {
			t += dt
			copy(x, xNew)
			copy(k1, k7)
			tr.append(t, x, k1)

			if errMax > 0 {
				dt *= math.Min(s.maxScale, s.safety*math.Pow(errMax, -0.2))
			} else {
				dt *= s.maxScale
			}
		} else {
			dt *= math.Max(s.minScale, s.safety*math.Pow(errMax, -0.25))
		}
	}

	return tr, nil
}
