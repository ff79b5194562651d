package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/taylor/internal/ads"
	"github.com/san-kum/taylor/internal/coeff"
	"github.com/san-kum/taylor/internal/config"
	"github.com/san-kum/taylor/internal/lyap"
	"github.com/san-kum/taylor/internal/metrics"
	"github.com/san-kum/taylor/internal/mpoly"
	"github.com/san-kum/taylor/internal/problems"
	"github.com/san-kum/taylor/internal/storage"
	"github.com/san-kum/taylor/internal/taylor"
	"github.com/san-kum/taylor/internal/tui"
	"github.com/san-kum/taylor/internal/viz"
)

var (
	dataDir    string
	order      int
	abstol     float64
	t0         float64
	tmax       float64
	initState  string
	maxSteps   int
	parseEqs   bool
	dense      bool
	configFile string
	saveRun    bool
	live       bool
	component  int
	// lyapunov
	jacobian string
	// grid
	points int
	// ads
	stol      float64
	degree    int
	maxSplits int
	boxLo     float64
	boxHi     float64
	// plot
	phase bool
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	taylor.SetLogger(log)
	lyap.SetLogger(log)
	ads.SetLogger(log)

	rootCmd := &cobra.Command{
		Use:   "taylor",
		Short: "adaptive-order Taylor-series ODE integrator",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".taylor", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "integrate on the natural step grid",
		Args:  cobra.ExactArgs(1),
		RunE:  runIntegrate,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "show live view while integrating")
	runCmd.Flags().IntVar(&component, "component", 0, "state component to display")

	gridCmd := &cobra.Command{
		Use:   "grid [problem]",
		Short: "integrate onto an evenly spaced time grid",
		Args:  cobra.ExactArgs(1),
		RunE:  runGrid,
	}
	addRunFlags(gridCmd)
	gridCmd.Flags().IntVar(&points, "points", 101, "number of grid points")

	lyapCmd := &cobra.Command{
		Use:   "lyapunov [problem]",
		Short: "compute the Lyapunov spectrum along a trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runLyapunov,
	}
	addRunFlags(lyapCmd)
	lyapCmd.Flags().StringVar(&jacobian, "jacobian", "ad", "stability matrix source: user or ad")

	adsCmd := &cobra.Command{
		Use:   "ads [problem]",
		Short: "integrate a box of initial conditions with domain splitting",
		Args:  cobra.ExactArgs(1),
		RunE:  runADS,
	}
	addRunFlags(adsCmd)
	adsCmd.Flags().Float64Var(&stol, "stol", 1e-5, "split tolerance")
	adsCmd.Flags().IntVar(&degree, "degree", 6, "total degree of the perturbation polynomials")
	adsCmd.Flags().IntVar(&maxSplits, "max-splits", 10, "split budget")
	adsCmd.Flags().Float64Var(&boxLo, "lo", -0.05, "box lower bound (every direction)")
	adsCmd.Flags().Float64Var(&boxHi, "hi", 0.05, "box upper bound (every direction)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", 0, "state component to plot")
	plotCmd.Flags().BoolVar(&phase, "phase", false, "phase plot of components 0 and 1")

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list built-in problems",
		Run: func(cmd *cobra.Command, args []string) {
			for _, n := range problems.NewRegistry().Names() {
				fmt.Println(n)
			}
		},
	}

	rootCmd.AddCommand(runCmd, gridCmd, lyapCmd, adsCmd, listCmd, plotCmd, problemsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&order, "order", config.DefaultOrder, "expansion order")
	cmd.Flags().Float64Var(&abstol, "abstol", config.DefaultAbsTol, "step-size tolerance")
	cmd.Flags().Float64Var(&t0, "t0", 0, "initial time")
	cmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "final time")
	cmd.Flags().StringVar(&initState, "x0", "", "initial state, comma separated")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 500, "step budget")
	cmd.Flags().BoolVar(&parseEqs, "parse-eqs", true, "use specialized jet routine when available")
	cmd.Flags().BoolVar(&dense, "dense", true, "keep per-step polynomials")
	cmd.Flags().BoolVar(&saveRun, "save", false, "store the run under the data directory")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

// buildConfig merges the config file (when given) with the flags.
func buildConfig(cmd *cobra.Command, problem string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Problem = problem
	set := cmd.Flags().Changed
	if set("order") || configFile == "" {
		cfg.Order = order
	}
	if set("abstol") || configFile == "" {
		cfg.AbsTol = abstol
	}
	if set("t0") || configFile == "" {
		cfg.T0 = t0
	}
	if set("tmax") || configFile == "" {
		cfg.TMax = tmax
	}
	if set("max-steps") || configFile == "" {
		cfg.MaxSteps = maxSteps
	}
	if set("parse-eqs") || configFile == "" {
		cfg.ParseEqs = parseEqs
	}
	if set("dense") || configFile == "" {
		cfg.Dense = dense
	}
	if initState != "" {
		x0, err := parseFloats(initState)
		if err != nil {
			return nil, err
		}
		cfg.InitState = x0
	}
	return cfg, cfg.Validate()
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad initial state %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

func resolve(cfg *config.Config) (problems.Entry, []float64, error) {
	entry, err := problems.NewRegistry().Get(cfg.Problem)
	if err != nil {
		return problems.Entry{}, nil, err
	}
	x0 := cfg.InitState
	if len(x0) == 0 {
		x0 = entry.X0
	}
	return entry, x0, nil
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	entry, x0, err := resolve(cfg)
	if err != nil {
		return err
	}

	solver, err := taylor.NewSolver[coeff.Float](entry.New(), cfg.Order, cfg.AbsTol, cfg.Options())
	if err != nil {
		return err
	}

	if live {
		prog, steps := tui.NewProgram(cfg.Problem, component, cfg.MaxSteps+4)
		solver.Observe(func(step int, t coeff.Float, x []coeff.Float) {
			steps <- tui.StepMsg{T: float64(t), X: toFloats(x), Step: step}
		})
		done := make(chan struct{})
		var res *taylor.Result[coeff.Float]
		go func() {
			defer close(done)
			res, err = solver.Integrate(coeff.Floats(x0), coeff.Float(cfg.T0), coeff.Float(cfg.TMax), nil)
			if res != nil {
				steps <- tui.DoneMsg{StepLimit: res.StepLimit}
			} else {
				steps <- tui.DoneMsg{}
			}
		}()
		if _, perr := prog.Run(); perr != nil {
			return perr
		}
		<-done
		if err != nil {
			return err
		}
		return finishRun(cfg, entry, res)
	}

	res, err := solver.Integrate(coeff.Floats(x0), coeff.Float(cfg.T0), coeff.Float(cfg.TMax), nil)
	if err != nil {
		return err
	}
	return finishRun(cfg, entry, res)
}

func finishRun(cfg *config.Config, entry problems.Entry, res *taylor.Result[coeff.Float]) error {
	times, states := toFloatTrajectory(res)

	pairs := [][2]string{
		{"problem", cfg.Problem},
		{"order", strconv.Itoa(cfg.Order)},
		{"abstol", fmt.Sprintf("%g", cfg.AbsTol)},
		{"steps", strconv.Itoa(res.Steps)},
		{"final t", fmt.Sprintf("%.8g", times[len(times)-1])},
	}
	ms := []metrics.Metric{}
	if entry.Energy != nil {
		ms = append(ms, metrics.NewEnergyDrift(entry.Energy))
	}
	metrics.ObserveAll(ms, times, states)
	for _, m := range ms {
		pairs = append(pairs, [2]string{m.Name(), fmt.Sprintf("%.3g", m.Value())})
	}
	fmt.Println(viz.SummaryTable(pairs))
	fmt.Println(viz.SeriesPlot(states, component, cfg.Problem, 72, 14))

	if saveRun {
		return persist(cfg, "integrate", res.Steps, res.StepLimit, times, states, nil, ms)
	}
	return nil
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	entry, x0, err := resolve(cfg)
	if err != nil {
		return err
	}
	if points < 2 {
		return fmt.Errorf("need at least 2 grid points, got %d", points)
	}

	grid := make([]coeff.Float, points)
	for i := range grid {
		grid[i] = coeff.Float(cfg.T0 + (cfg.TMax-cfg.T0)*float64(i)/float64(points-1))
	}
	rows, err := taylor.IntegrateGrid[coeff.Float](entry.New(), coeff.Floats(x0), grid, cfg.Order, cfg.AbsTol, nil, cfg.Options())
	if err != nil {
		return err
	}

	times := make([]float64, len(grid))
	states := make([][]float64, len(rows))
	for i := range grid {
		times[i] = float64(grid[i])
		states[i] = toFloats(rows[i])
	}
	fmt.Println(viz.SeriesPlot(states, component, cfg.Problem+" (grid)", 72, 14))
	if saveRun {
		return persist(cfg, "grid", len(grid)-1, false, times, states, nil, nil)
	}
	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	entry, x0, err := resolve(cfg)
	if err != nil {
		return err
	}

	engine, err := lyap.New(entry.New(), cfg.Order, cfg.AbsTol, cfg.Options())
	if err != nil {
		return err
	}
	src := cfg.Jacobian
	if cmd.Flags().Changed("jacobian") || configFile == "" {
		src = jacobian
	}
	switch src {
	case "user":
		if entry.Jacobian == nil {
			return fmt.Errorf("problem %s has no hand-written jacobian; use --jacobian ad", cfg.Problem)
		}
		engine.WithJacobian(entry.Jacobian)
	case "ad":
		engine.WithAD(entry.NewAD())
	default:
		return fmt.Errorf("jacobian must be user or ad, got %q", src)
	}

	res, err := engine.Run(x0, cfg.T0, cfg.TMax, nil)
	if err != nil {
		return err
	}

	sum := metrics.NewSpectrumSum()
	sum.Observe(res.Final(), res.Times[len(res.Times)-1])

	pairs := [][2]string{
		{"problem", cfg.Problem},
		{"steps", strconv.Itoa(res.Steps)},
	}
	for i, l := range res.Final() {
		pairs = append(pairs, [2]string{fmt.Sprintf("lambda_%d", i+1), fmt.Sprintf("%.6g", l)})
	}
	pairs = append(pairs, [2]string{sum.Name(), fmt.Sprintf("%.3g", sum.Value())})
	fmt.Println(viz.SummaryTable(pairs))
	fmt.Println(viz.SpectrumPlot(res.Exponents, 72, 14))

	if saveRun {
		return persist(cfg, "lyapunov", res.Steps, res.StepLimit, res.Times, res.States, res.Exponents, nil)
	}
	return nil
}

func runADS(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	entry, x0, err := resolve(cfg)
	if err != nil {
		return err
	}
	dim := len(x0)

	basis := mpoly.NewBasis(dim, degree)
	state := make([]mpoly.TaylorN, dim)
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for j := 0; j < dim; j++ {
		// canonical variable scaled to the half-width of the box,
		// centered on the box midpoint
		center := x0[j] + (boxLo+boxHi)/2
		state[j] = mpoly.Var(basis, j, center).SetCoeff(basis.LinearIndex(j), (boxHi-boxLo)/2)
		lo[j] = x0[j] + boxLo
		hi[j] = x0[j] + boxHi
	}
	root, err := ads.NewRoot(lo, hi, state, cfg.T0)
	if err != nil {
		return err
	}

	opts := cfg.Options()
	opts.MaxSplits = maxSplits
	engine, err := ads.New(entry.NewAD(), cfg.Order, stol, cfg.AbsTol, opts)
	if err != nil {
		return err
	}
	if err := engine.Run(root, cfg.TMax, nil); err != nil {
		return err
	}

	leaves := root.Leaves()
	pairs := [][2]string{
		{"problem", cfg.Problem},
		{"splits", strconv.Itoa(engine.Splits())},
		{"leaves", strconv.Itoa(len(leaves))},
	}
	fmt.Println(viz.SummaryTable(pairs))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "depth\tt\tbox\tcenter value")
	for _, lf := range leaves {
		fmt.Fprintf(w, "%d\t%.6g\t%v-%v\t%v\n", lf.Depth, lf.T, lf.Lo, lf.Hi, lf.EvalCenter())
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tkind\tproblem\tsteps\ttmax")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\n", r.ID, r.Kind, r.Problem, r.Steps, r.TMax)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.LoadMeta(args[0])
	if err != nil {
		return err
	}
	_, states, err := store.LoadStates(args[0])
	if err != nil {
		return err
	}
	if phase {
		if len(states[0]) < 2 {
			return fmt.Errorf("phase plot needs at least two components")
		}
		fmt.Println(viz.PhasePlot(states, 0, 1, 60, 18))
		return nil
	}
	fmt.Println(viz.SeriesPlot(states, component, meta.Problem, 72, 14))
	if meta.Kind == "lyapunov" {
		if _, exps, err := store.LoadExponents(args[0]); err == nil {
			fmt.Println(viz.SpectrumPlot(exps, 72, 14))
		}
	}
	return nil
}

func persist(cfg *config.Config, kind string, steps int, limit bool, times []float64, states [][]float64, exps [][]float64, ms []metrics.Metric) error {
	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Problem:   cfg.Problem,
		Kind:      kind,
		Order:     cfg.Order,
		AbsTol:    cfg.AbsTol,
		T0:        cfg.T0,
		TMax:      cfg.TMax,
		Steps:     steps,
		StepLimit: limit,
	}
	if len(ms) > 0 {
		meta.Metrics = make(map[string]float64, len(ms))
		for _, m := range ms {
			meta.Metrics[m.Name()] = m.Value()
		}
	}
	id, err := store.Save(meta, times, states, exps)
	if err != nil {
		return err
	}
	fmt.Println("saved run", id)
	return nil
}

func toFloats(xs []coeff.Float) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func toFloatTrajectory(res *taylor.Result[coeff.Float]) ([]float64, [][]float64) {
	times := make([]float64, len(res.Times))
	states := make([][]float64, len(res.States))
	for i := range res.Times {
		times[i] = float64(res.Times[i])
		states[i] = toFloats(res.States[i])
	}
	return times, states
}
