// Package config loads and validates expectation-run configuration and
// builds the engine pieces from it.
package config

import (
	"fmt"
	"os"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"

	"github.com/uqsim/expect/internal/dist"
	"github.com/uqsim/expect/internal/executor"
	"github.com/uqsim/expect/internal/expectation"
	"github.com/uqsim/expect/internal/models"
	"github.com/uqsim/expect/internal/quad"
	"github.com/uqsim/expect/internal/traj"
)

const (
	DefaultTEnd     = 4.0
	DefaultSamples  = 10000
	DefaultAbsTol   = 1e-8
	DefaultRelTol   = 1e-6
	DefaultMaxEvals = 500000
	DefaultSeed     = 1
)

type Config struct {
	Model  string  `yaml:"model"`
	TStart float64 `yaml:"t_start"`
	TEnd   float64 `yaml:"t_end"`

	// State and Params assign one distribution block per dimension, in
	// order.
	State  []Dim `yaml:"state"`
	Params []Dim `yaml:"params"`

	Estimator  string  `yaml:"estimator"`  // montecarlo | koopman
	Samples    int     `yaml:"samples"`    // montecarlo
	AbsTol     float64 `yaml:"abs_tol"`    // koopman
	RelTol     float64 `yaml:"rel_tol"`    // koopman
	MaxEvals   int     `yaml:"max_evals"`  // koopman
	BatchSize  int     `yaml:"batch_size"` // koopman
	Quadrature string  `yaml:"quadrature"` // adaptive | transformed

	Executor string `yaml:"executor"` // auto | sequential | pool
	Workers  int    `yaml:"workers"`

	Solver string `yaml:"solver"` // dopri | rk4
	Steps  int    `yaml:"steps"`  // rk4 only

	Observe Observe `yaml:"observe"`
	Moments int     `yaml:"moments"`
	Seed    uint64  `yaml:"seed"`
}

// Dim describes the distribution assigned to one dimension.
type Dim struct {
	Dist   string  `yaml:"dist"` // constant | uniform | normal | truncnormal
	Value  float64 `yaml:"value,omitempty"`
	Min    float64 `yaml:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty"`
	Mean   float64 `yaml:"mean,omitempty"`
	Stddev float64 `yaml:"stddev,omitempty"`
	Lo     float64 `yaml:"lo,omitempty"` // truncation bounds
	Hi     float64 `yaml:"hi,omitempty"`
}

// Observe selects the observable: one state component sampled at a
// time. A zero time means the end of the span.
type Observe struct {
	Component int     `yaml:"component"`
	Time      float64 `yaml:"time"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     "linear",
		TStart:    0,
		TEnd:      DefaultTEnd,
		State:     []Dim{{Dist: "uniform", Min: 0, Max: 10}},
		Params:    []Dim{{Dist: "constant", Value: -0.3}},
		Estimator: "koopman",
		Samples:   DefaultSamples,
		AbsTol:    DefaultAbsTol,
		RelTol:    DefaultRelTol,
		MaxEvals:  DefaultMaxEvals,
		Executor:  "auto",
		Solver:    "dopri",
		Seed:      DefaultSeed,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.TEnd <= c.TStart {
		return fmt.Errorf("config: t_end must be after t_start")
	}
	switch c.Estimator {
	case "montecarlo":
		if c.Samples <= 0 {
			return fmt.Errorf("config: samples must be positive for montecarlo")
		}
	case "koopman":
	default:
		return fmt.Errorf("config: unknown estimator %q", c.Estimator)
	}

	m, err := models.NewRegistry().Get(c.Model)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(c.State) != m.StateDim {
		return fmt.Errorf("config: model %s needs %d state dims, got %d", c.Model, m.StateDim, len(c.State))
	}
	if len(c.Params) != m.ParamDim {
		return fmt.Errorf("config: model %s needs %d param dims, got %d", c.Model, m.ParamDim, len(c.Params))
	}

	dims := append(append([]Dim(nil), c.State...), c.Params...)
	for i, d := range dims {
		switch d.Dist {
		case "constant", "uniform", "normal", "truncnormal":
		default:
			return fmt.Errorf("config: dimension %d has unknown dist %q", i, d.Dist)
		}
	}
	if c.Observe.Component < 0 || c.Observe.Component >= m.StateDim {
		return fmt.Errorf("config: observe.component %d out of range for model %s", c.Observe.Component, c.Model)
	}
	if c.Moments < 0 {
		return fmt.Errorf("config: moments must be non-negative")
	}
	return nil
}

// BuildSpec constructs the distribution spec. All random entries share
// one seeded source, so a run is reproducible for a given config.
func (c *Config) BuildSpec() (*dist.Spec, error) {
	src := rand.NewSource(c.Seed)

	build := func(dims []Dim) ([]dist.Entry, error) {
		entries := make([]dist.Entry, len(dims))
		for i, d := range dims {
			switch d.Dist {
			case "constant":
				entries[i] = dist.Constant(d.Value)
			case "uniform":
				entries[i] = dist.UniformSrc(d.Min, d.Max, src)
			case "normal":
				entries[i] = dist.NormalSrc(d.Mean, d.Stddev, src)
			case "truncnormal":
				entries[i] = dist.TruncNormalSrc(d.Mean, d.Stddev, d.Lo, d.Hi, src)
			default:
				return nil, fmt.Errorf("config: unknown dist %q", d.Dist)
			}
		}
		return entries, nil
	}

	state, err := build(c.State)
	if err != nil {
		return nil, err
	}
	params, err := build(c.Params)
	if err != nil {
		return nil, err
	}
	return dist.NewSpec(state, params), nil
}

func (c *Config) BuildProblem() (traj.Problem, error) {
	m, err := models.NewRegistry().Get(c.Model)
	if err != nil {
		return traj.Problem{}, err
	}
	return traj.Problem{F: m.F, T0: c.TStart, T1: c.TEnd}, nil
}

func (c *Config) BuildSolver() traj.Solver {
	if c.Solver == "rk4" {
		return traj.NewRK4(c.Steps)
	}
	return traj.NewDormandPrince()
}

func (c *Config) BuildExecutor() executor.Executor {
	switch c.Executor {
	case "sequential":
		return executor.NewSequential()
	case "pool":
		return executor.NewPool(c.Workers)
	default:
		return executor.Auto()
	}
}

// BuildEstimator assembles the configured estimator. The counter may be
// nil when no evaluation accounting is wanted.
func (c *Config) BuildEstimator(counter *expectation.EvalCounter) expectation.Estimator {
	if c.Estimator == "montecarlo" {
		return &expectation.MonteCarlo{
			Samples:  c.Samples,
			Solver:   c.BuildSolver(),
			Executor: c.BuildExecutor(),
			Counter:  counter,
		}
	}

	var strategy quad.Strategy
	if c.Quadrature == "transformed" {
		strategy = quad.NewTransformed()
	}
	return &expectation.Koopman{
		Strategy:  strategy,
		AbsTol:    c.AbsTol,
		RelTol:    c.RelTol,
		MaxEvals:  c.MaxEvals,
		BatchSize: c.BatchSize,
		Solver:    c.BuildSolver(),
		Executor:  c.BuildExecutor(),
		Counter:   counter,
	}
}

// BuildObservable samples the configured state component at the observe
// time.
func (c *Config) BuildObservable() expectation.ScalarObservable {
	comp := c.Observe.Component
	at := c.Observe.Time
	if at == 0 {
		at = c.TEnd
	}
	return func(tr *traj.Trajectory) float64 {
		return tr.At(at)[comp]
	}
}
