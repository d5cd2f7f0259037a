package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/uqsim/expect/internal/config"
	"github.com/uqsim/expect/internal/expectation"
	"github.com/uqsim/expect/internal/models"
	"github.com/uqsim/expect/internal/store"
)

var (
	dataDir    string
	configFile string
	preset     string

	estimatorName string
	samples       int
	maxEvals      int
	seed          uint64
	executorName  string
	workers       int
	solverName    string

	observeComp int
	observeTime float64

	jsonOut bool
	csvPath string

	momentOrder int

	sweepStart  int
	sweepFactor int
	sweepSteps  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "expect",
		Short: "expected values over uncertain dynamical systems",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".expect", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "compute an expectation",
		RunE:  runEstimate,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print result as JSON")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write result to CSV file")

	momentsCmd := &cobra.Command{
		Use:   "moments",
		Short: "compute central moments of the observable",
		RunE:  runMoments,
	}
	addRunFlags(momentsCmd)
	momentsCmd.Flags().IntVar(&momentOrder, "order", 2, "highest moment order")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run montecarlo and koopman on the same problem",
		RunE:  runCompare,
	}
	addRunFlags(compareCmd)

	convergenceCmd := &cobra.Command{
		Use:   "convergence",
		Short: "montecarlo error against sample count",
		RunE:  runConvergence,
	}
	addRunFlags(convergenceCmd)
	convergenceCmd.Flags().IntVar(&sweepStart, "start", 100, "starting sample count")
	convergenceCmd.Flags().IntVar(&sweepFactor, "factor", 2, "sample count growth factor")
	convergenceCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of sweep points")
	convergenceCmd.Flags().StringVar(&csvPath, "csv", "", "write sweep to CSV file")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := store.New(dataDir).Load(args[0])
			if err != nil {
				return err
			}
			return store.WriteJSON(os.Stdout, rec)
		},
	}

	rootCmd.AddCommand(runCmd, momentsCmd, compareCmd, convergenceCmd, modelsCmd, presetsCmd, listCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&estimatorName, "estimator", "", "montecarlo or koopman")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "montecarlo sample count")
	cmd.Flags().IntVar(&maxEvals, "max-evals", config.DefaultMaxEvals, "koopman evaluation budget")
	cmd.Flags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&executorName, "executor", "", "auto, sequential or pool")
	cmd.Flags().IntVar(&workers, "workers", 0, "pool worker count (0 = NumCPU)")
	cmd.Flags().StringVar(&solverName, "solver", "", "dopri or rk4")
	cmd.Flags().IntVar(&observeComp, "component", 0, "observed state component")
	cmd.Flags().Float64Var(&observeTime, "at", 0, "observation time (0 = end of span)")
}

// loadConfig resolves preset, config file and flag overrides, in that
// order of increasing precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, ok := config.Presets()[preset]
		if !ok {
			names := presetNames()
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(names, ", "))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("estimator") {
		cfg.Estimator = estimatorName
	}
	if cmd.Flags().Changed("samples") {
		cfg.Samples = samples
	}
	if cmd.Flags().Changed("max-evals") {
		cfg.MaxEvals = maxEvals
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("executor") {
		cfg.Executor = executorName
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("solver") {
		cfg.Solver = solverName
	}
	if cmd.Flags().Changed("component") {
		cfg.Observe.Component = observeComp
	}
	if cmd.Flags().Changed("at") {
		cfg.Observe.Time = observeTime
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func presetNames() []string {
	names := make([]string, 0)
	for name := range config.Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func observeLabel(cfg *config.Config) string {
	at := cfg.Observe.Time
	if at == 0 {
		at = cfg.TEnd
	}
	return fmt.Sprintf("x%d@t=%g", cfg.Observe.Component, at)
}

func estimate(cfg *config.Config) (*expectation.Result, *store.Record, error) {
	spec, err := cfg.BuildSpec()
	if err != nil {
		return nil, nil, err
	}
	prob, err := cfg.BuildProblem()
	if err != nil {
		return nil, nil, err
	}

	var counter expectation.EvalCounter
	est := cfg.BuildEstimator(&counter)

	start := time.Now()
	res, err := est.Estimate(context.Background(), spec, prob, cfg.BuildObservable().Vec(), 1)
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start)

	rec := &store.Record{
		Timestamp:   time.Now(),
		Model:       cfg.Model,
		Estimator:   est.Name(),
		Solver:      cfg.BuildSolver().Name(),
		Observable:  observeLabel(cfg),
		Seed:        cfg.Seed,
		Value:       res.Value,
		ErrEstimate: res.ErrEstimate,
		Evals:       int64(res.Evals),
		Converged:   res.Converged,
		Elapsed:     elapsed.Seconds(),
	}
	return res, rec, nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, rec, err := estimate(cfg)
	if err != nil {
		return err
	}

	runID, err := store.New(dataDir).Save(rec)
	if err != nil {
		return err
	}
	rec.ID = runID

	if csvPath != "" {
		if err := store.ExportCSV(csvPath, rec); err != nil {
			return err
		}
	}
	if jsonOut {
		return store.WriteJSON(os.Stdout, rec)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", cfg.Model)
	fmt.Fprintf(w, "estimator\t%s\n", rec.Estimator)
	fmt.Fprintf(w, "observable\t%s\n", rec.Observable)
	fmt.Fprintf(w, "value\t%.10g\n", res.Scalar())
	if len(res.ErrEstimate) > 0 {
		fmt.Fprintf(w, "error estimate\t%.3g\n", res.ErrEstimate[0])
	}
	fmt.Fprintf(w, "trajectory evals\t%d\n", res.Evals)
	fmt.Fprintf(w, "converged\t%t\n", res.Converged)
	fmt.Fprintf(w, "elapsed\t%.3fs\n", rec.Elapsed)
	fmt.Fprintf(w, "run id\t%s\n", runID)
	return w.Flush()
}

func runMoments(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	spec, err := cfg.BuildSpec()
	if err != nil {
		return err
	}
	prob, err := cfg.BuildProblem()
	if err != nil {
		return err
	}

	est := cfg.BuildEstimator(nil)
	set, err := expectation.CentralMoments(context.Background(), momentOrder, spec, prob, cfg.BuildObservable(), est)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", cfg.Model)
	fmt.Fprintf(w, "estimator\t%s\n", est.Name())
	fmt.Fprintf(w, "observable\t%s\n", observeLabel(cfg))
	fmt.Fprintf(w, "mean\t%.10g\n", set.Mean())
	if momentOrder >= 2 {
		fmt.Fprintf(w, "variance\t%.10g\n", set.Variance())
		fmt.Fprintf(w, "stddev\t%.10g\n", math.Sqrt(math.Max(set.Variance(), 0)))
	}
	for k := 3; k <= momentOrder; k++ {
		fmt.Fprintf(w, "central moment %d\t%.10g\n", k, set.Moments[k-1])
	}
	fmt.Fprintf(w, "trajectory evals\t%d\n", set.Evals)
	fmt.Fprintf(w, "converged\t%t\n", set.Converged)
	return w.Flush()
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "estimator\tvalue\terror estimate\tevals\tconverged\telapsed")

	for _, name := range []string{"montecarlo", "koopman"} {
		c := *cfg
		c.Estimator = name
		res, rec, err := estimate(&c)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		errEst := "-"
		if len(res.ErrEstimate) > 0 {
			errEst = fmt.Sprintf("%.3g", res.ErrEstimate[0])
		}
		fmt.Fprintf(w, "%s\t%.10g\t%s\t%d\t%t\t%.3fs\n",
			name, res.Scalar(), errEst, res.Evals, res.Converged, rec.Elapsed)
	}
	return w.Flush()
}

// runConvergence sweeps the Monte Carlo sample count and plots the
// absolute error against a high-budget Koopman reference.
func runConvergence(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if sweepStart <= 0 || sweepFactor < 2 || sweepSteps <= 0 {
		return fmt.Errorf("sweep needs start > 0, factor >= 2, steps > 0")
	}

	ref := *cfg
	ref.Estimator = "koopman"
	refRes, _, err := estimate(&ref)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if !refRes.Converged {
		fmt.Fprintln(os.Stderr, "warning: reference estimate did not converge")
	}
	truth := refRes.Scalar()

	points := make([]store.SweepPoint, 0, sweepSteps)
	n := sweepStart
	for i := 0; i < sweepSteps; i++ {
		c := *cfg
		c.Estimator = "montecarlo"
		c.Samples = n
		res, _, err := estimate(&c)
		if err != nil {
			return err
		}
		points = append(points, store.SweepPoint{
			Budget: n,
			Value:  res.Scalar(),
			Error:  math.Abs(res.Scalar() - truth),
			Evals:  int64(res.Evals),
		})
		n *= sweepFactor
	}

	if csvPath != "" {
		if err := store.ExportSweepCSV(csvPath, points); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "samples\tvalue\tabs error")
	for _, p := range points {
		fmt.Fprintf(w, "%d\t%.10g\t%.3g\n", p.Budget, p.Value, p.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	plotData := make([]float64, len(points))
	for i, p := range points {
		e := p.Error
		if e <= 0 {
			e = 1e-16
		}
		plotData[i] = math.Log10(e)
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("log10 abs error vs sweep step (reference %.10g)", truth)),
	)
	fmt.Println()
	fmt.Println(graph)
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "name\tstate dim\tparam dim\tdescription")
	for _, m := range models.NewRegistry().List() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", m.Name, m.StateDim, m.ParamDim, m.Desc)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets := config.Presets()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "name\tmodel\testimator\tobservable")
	for _, name := range presetNames() {
		p := presets[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Model, p.Estimator, observeLabel(p))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "id\tmodel\testimator\tvalue\tevals\tconverged")
	for _, r := range runs {
		val := math.NaN()
		if len(r.Value) > 0 {
			val = r.Value[0]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6g\t%d\t%t\n",
			r.ID, r.Model, r.Estimator, val, r.Evals, r.Converged)
	}
	return w.Flush()
}
