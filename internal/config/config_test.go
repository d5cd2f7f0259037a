package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestPresetsValid(t *testing.T) {
	for name, cfg := range Presets() {
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")

	cfg := DefaultConfig()
	cfg.Estimator = "montecarlo"
	cfg.Samples = 321
	cfg.Seed = 99
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Estimator != "montecarlo" || got.Samples != 321 || got.Seed != 99 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Model != cfg.Model || got.TEnd != cfg.TEnd {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	data := []byte("estimator: montecarlo\nsamples: 50\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Estimator != "montecarlo" || cfg.Samples != 50 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Model != "linear" || cfg.TEnd != DefaultTEnd {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"reversed span", func(c *Config) { c.TEnd = -1 }},
		{"unknown estimator", func(c *Config) { c.Estimator = "magic" }},
		{"zero samples montecarlo", func(c *Config) { c.Estimator = "montecarlo"; c.Samples = 0 }},
		{"unknown model", func(c *Config) { c.Model = "ghost" }},
		{"state dim mismatch", func(c *Config) { c.State = append(c.State, Dim{Dist: "constant"}) }},
		{"param dim mismatch", func(c *Config) { c.Params = nil }},
		{"unknown dist", func(c *Config) { c.State[0].Dist = "cauchy" }},
		{"observe out of range", func(c *Config) { c.Observe.Component = 5 }},
		{"negative moments", func(c *Config) { c.Moments = -2 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestBuildSpecDimensions(t *testing.T) {
	cfg := Presets()["logistic-capacity"]
	spec, err := cfg.BuildSpec()
	if err != nil {
		t.Fatalf("build spec: %v", err)
	}
	if spec.StateDim() != 1 || spec.ParamDim() != 2 {
		t.Errorf("got dims %d/%d", spec.StateDim(), spec.ParamDim())
	}
	if spec.RandomDim() != 2 {
		t.Errorf("got %d random dims, want 2", spec.RandomDim())
	}
}

func TestBuildEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvals = 2000

	spec, err := cfg.BuildSpec()
	if err != nil {
		t.Fatalf("build spec: %v", err)
	}
	prob, err := cfg.BuildProblem()
	if err != nil {
		t.Fatalf("build problem: %v", err)
	}
	est := cfg.BuildEstimator(nil)

	res, err := est.Estimate(context.Background(), spec, prob, cfg.BuildObservable().Vec(), 1)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	// E[x0 exp(-0.3*4)] for x0 ~ U(0,10).
	want := 5 * math.Exp(-1.2)
	if math.Abs(res.Value[0]-want) > 1e-4 {
		t.Errorf("got %g, want %g", res.Value[0], want)
	}
}

func TestBuildSolverSelection(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.BuildSolver().Name(); got != "dopri" {
		t.Errorf("got solver %q, want dopri", got)
	}
	cfg.Solver = "rk4"
	cfg.Steps = 100
	if got := cfg.BuildSolver().Name(); got != "rk4" {
		t.Errorf("got solver %q, want rk4", got)
	}
}
