package traj

// RK4 is a fixed-step fourth-order Runge-Kutta solver. Steps is the
// number of equal steps across the span.
type RK4 struct {
	Steps int
}

func NewRK4(steps int) *RK4 {
	if steps <= 0 {
		steps = 1000
	}
	return &RK4{Steps: steps}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Solve(prob Problem, x0, p []float64) (*Trajectory, error) {
	if len(prob.X0) > 0 && len(x0) != len(prob.X0) {
		return nil, solveErr(prob.T0, 0, ErrDimensionMismatch)
	}
	n := len(x0)
	dt := prob.Span() / float64(r.Steps)

	t := prob.T0
	x := clone(x0)

	k1 := make([]float64, n)
	k2 := make([]float64, n)
	k3 := make([]float64, n)
	k4 := make([]float64, n)
	scratch := make([]float64, n)

	prob.F(k1, x, p, t)
	tr := &Trajectory{}
	tr.append(t, x, k1)

	dt6 := dt / 6.0
	for step := 0; step < r.Steps; step++ {
		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*0.5*k1[i]
		}
		prob.F(k2, scratch, p, t+dt*0.5)

		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*0.5*k2[i]
		}
		prob.F(k3, scratch, p, t+dt*0.5)

		for i := 0; i < n; i++ {
			scratch[i] = x[i] + dt*k3[i]
		}
		prob.F(k4, scratch, p, t+dt)

		for i := 0; i < n; i++ {
			x[i] += dt6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
		t = prob.T0 + float64(step+1)*dt

		if !validState(x) {
			return nil, solveErr(t, step, ErrIntegrationFailure)
		}

		prob.F(k1, x, p, t)
		tr.append(t, x, k1)
	}

	return tr, nil
}
