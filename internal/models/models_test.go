package models

import (
	"math"
	"testing"

	"github.com/uqsim/expect/internal/traj"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	m, err := r.Get("linear")
	if err != nil {
		t.Fatalf("get linear: %v", err)
	}
	if m.StateDim != 1 || m.ParamDim != 1 {
		t.Errorf("linear dims: got (%d, %d), want (1, 1)", m.StateDim, m.ParamDim)
	}

	if _, err := r.Get("nonexistent"); err == nil {
		t.Error("expected error for unknown model")
	}

	if len(r.List()) != 4 {
		t.Errorf("expected 4 models, got %d", len(r.List()))
	}
}

func TestLinearSolution(t *testing.T) {
	m := Linear()
	prob := traj.Problem{F: m.F, T0: 0, T1: 4}

	tr, err := traj.NewDormandPrince().Solve(prob, []float64{1}, []float64{-0.3})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if math.Abs(tr.Final()[0]-math.Exp(-1.2)) > 1e-6 {
		t.Errorf("got %.8f, want %.8f", tr.Final()[0], math.Exp(-1.2))
	}
}

func TestLogisticEquilibrium(t *testing.T) {
	m := Logistic()
	prob := traj.Problem{F: m.F, T0: 0, T1: 50}

	// Long horizon drives the population to the carrying capacity.
	tr, err := traj.NewDormandPrince().Solve(prob, []float64{0.5}, []float64{1.0, 10.0})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if math.Abs(tr.Final()[0]-10.0) > 1e-3 {
		t.Errorf("got %.6f, want carrying capacity 10", tr.Final()[0])
	}
}

func TestOscillatorPeriod(t *testing.T) {
	m := Oscillator()
	prob := traj.Problem{F: m.F, T0: 0, T1: 2 * math.Pi}

	tr, err := traj.NewDormandPrince().Solve(prob, []float64{1, 0}, []float64{1})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if math.Abs(tr.Final()[0]-1) > 1e-5 {
		t.Errorf("after one period: got %.8f, want 1", tr.Final()[0])
	}
}
