package main

import (
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/varode/internal/analysis"
	"github.com/san-kum/varode/internal/config"
	"github.com/san-kum/varode/internal/integrators"
	"github.com/san-kum/varode/internal/models"
	"github.com/san-kum/varode/internal/ode"
	"github.com/san-kum/varode/internal/store"
	"github.com/san-kum/varode/internal/tui"
	"github.com/san-kum/varode/internal/variational"
)

var (
	dt         float64
	duration   float64
	t0         float64
	tolerance  float64
	integrator string
	configFile string
	jsonPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "varode",
		Short: "ODE integration with propagated Jacobians",
	}

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and its sensitivities",
		Args:  cobra.ExactArgs(1),
		RunE:  runSensitivities,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write run data as JSON (\"-\" for stdout)")

	plotCmd := &cobra.Command{
		Use:   "plot [model]",
		Short: "plot sensitivity trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSensitivities,
	}
	addRunFlags(plotCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "integrate with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range models.Names() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, plotCmd, liveCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "fixed step size (euler, rk4)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "integration time span")
	cmd.Flags().Float64Var(&t0, "t0", 0, "initial time")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "error tolerance (dopri5)")
	cmd.Flags().StringVar(&integrator, "integrator", "dopri5", "integrator: euler, rk4, dopri5")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

// problem bundles everything a run needs.
type problem struct {
	cfg   *config.Config
	model models.Model
	vi    *variational.Integrator
	y0    []float64
	dY0dP [][]float64
	n, k  int
}

func buildProblem(cmd *cobra.Command, modelName string) (*problem, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Model = modelName
	// flags override the config file only when given explicitly
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("t0") {
		cfg.T0 = t0
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := models.Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	n := m.Dimension()
	k := m.ParameterCount()

	params := m.DefaultParameters()
	if len(cfg.Params) == k {
		params = cfg.Params
	}
	for i, p := range params {
		m.SetParameter(i, p)
	}

	y0 := m.DefaultState()
	if len(cfg.Y0) == n {
		y0 = cfg.Y0
	}

	dY0dP := cfg.DY0DP
	if len(dY0dP) != n {
		dY0dP = make([][]float64, n)
		for i := range dY0dP {
			dY0dP[i] = make([]float64, k)
		}
	}

	base := buildIntegrator(cfg)
	var vi *variational.Integrator
	if withJac, ok := m.(ode.WithJacobians); ok {
		vi = variational.New(base, withJac)
	} else {
		hY, hP := cfg.FDSteps(n, k)
		vi, err = variational.NewFiniteDifferences(base, m, params, hY, hP)
		if err != nil {
			return nil, err
		}
	}

	return &problem{cfg: cfg, model: m, vi: vi, y0: y0, dY0dP: dY0dP, n: n, k: k}, nil
}

func buildIntegrator(cfg *config.Config) ode.Integrator {
	switch cfg.Integrator {
	case "euler":
		return integrators.NewEuler(cfg.Dt)
	case "rk4":
		return integrators.NewRK4(cfg.Dt)
	default:
		return integrators.NewDormandPrince54(cfg.Tolerance)
	}
}

func (p *problem) integrate() (float64, []float64, [][]float64, [][]float64, error) {
	y := make([]float64, p.n)
	dYdY0 := newMatrix(p.n, p.n)
	dYdP := newMatrix(p.n, p.k)
	stop, err := p.vi.Integrate(p.cfg.T0, p.y0, p.dY0dP, p.cfg.T0+p.cfg.Duration, y, dYdY0, dYdP)
	return stop, y, dYdY0, dYdP, err
}

func runSensitivities(cmd *cobra.Command, args []string) error {
	p, err := buildProblem(cmd, args[0])
	if err != nil {
		return err
	}

	rec := store.NewRecorder()
	p.vi.AddStepHandler(rec)

	stop, y, dYdY0, dYdP, err := p.integrate()
	if err != nil {
		return err
	}

	fmt.Printf("model: %s  integrator: %s\n", p.cfg.Model, p.cfg.Integrator)
	fmt.Printf("t: %g -> %g  (%d steps)\n\n", p.cfg.T0, stop, len(rec.Times))
	fmt.Printf("y(t):\n%v\n\n", formatted(mat.NewVecDense(p.n, y).T()))
	fmt.Printf("dy/dy0:\n%v\n\n", formatted(denseFrom(dYdY0)))
	if p.k > 0 {
		fmt.Printf("dy/dp:\n%v\n\n", formatted(denseFrom(dYdP)))
	}

	if ftle, err := analysis.FTLE(dYdY0, stop-p.cfg.T0); err == nil {
		fmt.Printf("FTLE: %.6f\n", ftle)
	}

	if jsonPath != "" {
		return store.ExportJSON(jsonPath, p.cfg.Model, p.cfg.Integrator, p.cfg.T0, stop, rec)
	}
	return nil
}

func plotSensitivities(cmd *cobra.Command, args []string) error {
	p, err := buildProblem(cmd, args[0])
	if err != nil {
		return err
	}

	rec := store.NewRecorder()
	p.vi.AddStepHandler(rec)

	if _, _, _, _, err := p.integrate(); err != nil {
		return err
	}
	if len(rec.Times) < 2 {
		return fmt.Errorf("not enough steps to plot")
	}

	fmt.Println(asciigraph.Plot(rec.StateSeries(0),
		asciigraph.Height(10), asciigraph.Width(72), asciigraph.Caption("y0(t)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(rec.DyDy0Series(0, 0),
		asciigraph.Height(10), asciigraph.Width(72), asciigraph.Caption("dy0/dy0_0(t)")))
	if p.k > 0 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rec.DyDpSeries(0, 0),
			asciigraph.Height(10), asciigraph.Width(72), asciigraph.Caption("dy0/dp0(t)")))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	p, err := buildProblem(cmd, args[0])
	if err != nil {
		return err
	}

	handler := tui.NewHandler()
	p.vi.AddStepHandler(handler)

	results := make(chan tui.RunResult, 1)
	go func() {
		stop, _, _, _, err := p.integrate()
		results <- tui.RunResult{StopTime: stop, Err: err}
	}()

	return tui.Run(p.cfg.Model, handler.Steps, results)
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func denseFrom(rows [][]float64) *mat.Dense {
	r, c := len(rows), len(rows[0])
	m := mat.NewDense(r, c, nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return m
}

func formatted(m mat.Matrix) fmt.Formatter {
	return mat.Formatted(m, mat.Prefix("  "), mat.Squeeze())
}
