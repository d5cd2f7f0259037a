package config

// Presets returns ready-to-run configurations for the bundled models.
func Presets() map[string]*Config {
	return map[string]*Config{
		"decay-uniform": DefaultConfig(),
		"decay-symmetric": {
			Model:     "linear",
			TEnd:      DefaultTEnd,
			State:     []Dim{{Dist: "uniform", Min: -10, Max: 10}},
			Params:    []Dim{{Dist: "constant", Value: -0.3}},
			Estimator: "koopman",
			AbsTol:    DefaultAbsTol,
			RelTol:    DefaultRelTol,
			MaxEvals:  DefaultMaxEvals,
			Executor:  "auto",
			Solver:    "dopri",
			Seed:      DefaultSeed,
		},
		"decay-normal": {
			Model:      "linear",
			TEnd:       DefaultTEnd,
			State:      []Dim{{Dist: "normal", Mean: 5, Stddev: 1}},
			Params:     []Dim{{Dist: "constant", Value: -0.3}},
			Estimator:  "koopman",
			Quadrature: "transformed",
			AbsTol:     DefaultAbsTol,
			RelTol:     DefaultRelTol,
			MaxEvals:   DefaultMaxEvals,
			Executor:   "auto",
			Solver:     "dopri",
			Seed:       DefaultSeed,
		},
		"logistic-capacity": {
			Model:     "logistic",
			TEnd:      10,
			State:     []Dim{{Dist: "uniform", Min: 0.5, Max: 2}},
			Params:    []Dim{{Dist: "constant", Value: 1}, {Dist: "uniform", Min: 8, Max: 12}},
			Estimator: "koopman",
			AbsTol:    DefaultAbsTol,
			RelTol:    DefaultRelTol,
			MaxEvals:  DefaultMaxEvals,
			Executor:  "auto",
			Solver:    "dopri",
			Seed:      DefaultSeed,
		},
		"lotka-montecarlo": {
			Model:     "lotka",
			TEnd:      15,
			State:     []Dim{{Dist: "uniform", Min: 8, Max: 12}, {Dist: "uniform", Min: 4, Max: 6}},
			Params:    []Dim{{Dist: "constant", Value: 1.1}, {Dist: "constant", Value: 0.4}, {Dist: "constant", Value: 0.1}, {Dist: "constant", Value: 0.4}},
			Estimator: "montecarlo",
			Samples:   DefaultSamples,
			Executor:  "pool",
			Solver:    "dopri",
			Seed:      DefaultSeed,
		},
	}
}
