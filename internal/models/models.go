// Package models provides built-in dynamical systems for the CLI and for
// quick experiments. Each model declares its state and parameter
// dimensions alongside the derivative function.
package models

import "github.com/uqsim/expect/internal/traj"

type Model struct {
	Name     string
	Desc     string
	StateDim int
	ParamDim int
	F        traj.Derivative
}

// Linear is exponential growth/decay, u' = p0*u.
func Linear() Model {
	return Model{
		Name:     "linear",
		Desc:     "exponential decay/growth u' = p0*u",
		StateDim: 1,
		ParamDim: 1,
		F: func(dx, x, p []float64, t float64) {
			dx[0] = p[0] * x[0]
		},
	}
}

// Logistic is bounded growth, u' = p0*u*(1 - u/p1).
func Logistic() Model {
	return Model{
		Name:     "logistic",
		Desc:     "logistic growth u' = p0*u*(1 - u/p1)",
		StateDim: 1,
		ParamDim: 2,
		F: func(dx, x, p []float64, t float64) {
			dx[0] = p[0] * x[0] * (1 - x[0]/p[1])
		},
	}
}

// Oscillator is an undamped harmonic oscillator with angular frequency
// p0.
func Oscillator() Model {
	return Model{
		Name:     "oscillator",
		Desc:     "harmonic oscillator x'' = -p0^2 * x",
		StateDim: 2,
		ParamDim: 1,
		F: func(dx, x, p []float64, t float64) {
			dx[0] = x[1]
			dx[1] = -p[0] * p[0] * x[0]
		},
	}
}

// LotkaVolterra is the classic predator-prey system.
func LotkaVolterra() Model {
	return Model{
		Name:     "lotka",
		Desc:     "Lotka-Volterra predator-prey",
		StateDim: 2,
		ParamDim: 4,
		F: func(dx, x, p []float64, t float64) {
			dx[0] = p[0]*x[0] - p[1]*x[0]*x[1]
			dx[1] = p[2]*x[0]*x[1] - p[3]*x[1]
		},
	}
}
