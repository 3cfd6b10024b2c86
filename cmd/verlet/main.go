package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/analysis"
	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/export"
	"github.com/san-kum/verlet/internal/solver"
	"github.com/san-kum/verlet/internal/storage"
	"github.com/san-kum/verlet/internal/viz"
)

var (
	dataDir    string
	configFile string
	dt         float64
	ticks      int
	seed       int64
	substeps   int
	noIndex    bool
	drag       float64
	// analyze
	series string
	// phase
	particle int
	svgOut   string
	// diverge
	epsilon float64
	// sweep
	sweepMetric string
	sweepSteps  []int
	// ensemble
	numRuns int
	// export
	outFile  string
	svgWidth int
	theme    string
	// bench
	benchCounts []int
)

func main() {
	registry := experiment.NewRegistry()

	rootCmd := &cobra.Command{
		Use:   "verlet",
		Short: "verlet particle physics sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(registry)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".verlet", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario in the terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if theme != "" {
				viz.SetTheme(theme)
			}
			return viz.Run(cfg)
		},
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "", "colour theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run samples",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a recorded series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&series, "series", "kinetic_energy", "series to analyze")

	phaseCmd := &cobra.Command{
		Use:   "phase [scenario]",
		Short: "height against vertical velocity of one particle",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	addConfigFlags(phaseCmd)
	phaseCmd.Flags().IntVar(&particle, "particle", 0, "particle handle")
	phaseCmd.Flags().StringVar(&svgOut, "svg", "", "also write the portrait as svg")

	divergeCmd := &cobra.Command{
		Use:   "diverge [scenario]",
		Short: "separation of two runs started a small offset apart",
		Args:  cobra.MaximumNArgs(1),
		RunE:  divergeRuns,
	}
	addConfigFlags(divergeCmd)
	divergeCmd.Flags().Float64Var(&epsilon, "eps", 1e-6, "initial offset of the first particle")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "final metric value for each substep count",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepSubsteps,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_overlap", "metric to record")
	sweepCmd.Flags().IntSliceVar(&sweepSteps, "steps", []int{1, 2, 4, 8, 16}, "substep counts")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run a scenario under consecutive seeds and summarize its metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of runs")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(args[0], outFile)
		},
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final frame of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width in px")
	exportSVGCmd.Flags().StringVar(&theme, "theme", "", "colour theme")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare indexed and exhaustive collision timings",
		Args:  cobra.NoArgs,
		RunE:  benchSolver,
	}
	benchCmd.Flags().IntVar(&ticks, "ticks", 60, "ticks per measurement")
	benchCmd.Flags().IntVar(&substeps, "substeps", solver.DefaultSubSteps, "substeps per tick")
	benchCmd.Flags().IntSliceVar(&benchCounts, "counts", []int{100, 250, 500, 1000}, "particle counts")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "scenarios:")
			for _, name := range registry.ListScenarios() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [scenario] [path]",
		Short: "write a scenario's config as yaml for editing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := registry.GetScenario(args[0])
			if err != nil {
				return err
			}
			if err := config.Save(args[1], cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, divergeCmd, sweepCmd,
		ensembleCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, benchCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "frame time step")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "frames to simulate")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "spawner seed")
	cmd.Flags().IntVar(&substeps, "substeps", solver.DefaultSubSteps, "substeps per frame")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "collide every pair instead of using the quadtree")
	cmd.Flags().Float64Var(&drag, "drag", 0, "velocity damping per substep")
}

// loadConfig resolves the scenario (or --config file) and applies only the
// flags the user set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		name := "rain"
		if len(args) > 0 {
			name = args[0]
		}
		preset, err := experiment.NewRegistry().GetScenario(name)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, experiment.NewRegistry().ListScenarios())
		}
		cfg = preset
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("substeps") {
		cfg.Solver.SubSteps = substeps
	}
	if flags.Changed("no-index") {
		cfg.Solver.UseIndex = !noIndex
	}
	if flags.Changed("drag") {
		cfg.Solver.Drag = drag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	for _, m := range experiment.NewRegistry().DefaultMetrics(cfg.Scenario) {
		exp.AddMetric(m)
	}
	step := max(cfg.Ticks/20, 1)
	exp.Progress = func(tick, total int) {
		if tick%step == 0 || tick == total {
			fmt.Fprintf(out, "\r%s %3d%%", viz.ProgressBar(float64(tick)/float64(total), 30), tick*100/total)
		}
	}

	fmt.Fprintf(out, "running %s (%d ticks, %d substeps)...\n", cfg.Scenario, cfg.Ticks, cfg.Solver.SubSteps)
	start := time.Now()

	result, err := exp.Run(context.Background())
	fmt.Fprintln(out)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "ticks: %d\n", len(result.Samples))
	fmt.Fprintf(out, "particles: %d\n", len(result.Final.Bodies))
	printMetrics(out, result.Metrics)
	return nil
}

func printMetrics(out io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tTICKS\tSUBSTEPS\tINDEX\tPARTICLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.SubSteps,
			run.UseIndex,
			run.Particles,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scenario: %s\n", meta.Scenario)
	fmt.Fprintf(out, "samples: %d\n\n", len(samples))

	result := &experiment.Result{Samples: samples}
	for _, name := range []string{"kinetic_energy", "particles", "settle_delta", "mean_temperature"} {
		data, err := result.Series(name)
		if err != nil {
			return err
		}
		if flat(data) && name == "mean_temperature" {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

func flat(data []float64) bool {
	for _, v := range data {
		if v != data[0] {
			return false
		}
	}
	return true
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	data, err := (&experiment.Result{Samples: samples}).Series(series)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("no data")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis: %s\n", meta.ID)
	fmt.Fprintf(out, "scenario: %s\n\n", meta.Scenario)

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:max(len(ps)/4, 2)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+series+")"),
	)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)

	freq := analysis.DominantFrequency(data, meta.Dt)
	fmt.Fprintf(out, "dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Fprintf(out, "period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	portrait, err := analysis.Track(cfg, solver.Handle(particle))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "phase portrait: %s particle %d (%d points)\n", cfg.Scenario, particle, len(portrait.Points))
	fmt.Fprintln(out, "x: height, y: vertical velocity")
	fmt.Fprintln(out)
	fmt.Fprint(out, analysis.PhasePortraitToASCII(portrait, 80, 24))

	if svgOut != "" {
		svg := export.PortraitToSVG(portrait.Points, 800, 600, "#00ffff")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", svgOut)
	}
	return nil
}

func divergeRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	d, err := analysis.Divergence(cfg, epsilon)
	if err != nil {
		return err
	}

	logSep := make([]float64, len(d.Separation))
	for i, s := range d.Separation {
		logSep[i] = math.Log10(math.Max(s, epsilon*1e-3))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, asciigraph.Plot(logSep,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("log10 separation"),
	))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "initial offset:   %g\n", epsilon)
	fmt.Fprintf(out, "final separation: %g\n", d.Final())
	fmt.Fprintf(out, "growth rate:      %.4f 1/s\n", d.Rate())
	return nil
}

func sweepSubsteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	points, err := analysis.SubstepSweep(context.Background(), cfg, sweepSteps, sweepMetric)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SUBSTEPS\t%s\n", sweepMetric)
	values := make([]float64, len(points))
	for i, p := range points {
		fmt.Fprintf(w, "%d\t%.6f\n", p.SubSteps, p.Value)
		values[i] = p.Value
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(values) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(values, asciigraph.Height(8), asciigraph.Caption(sweepMetric+" by substep count")))
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	var names []string
	for _, m := range experiment.NewRegistry().DefaultMetrics(cfg.Scenario) {
		names = append(names, m.Name())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %d x %s from seed %d...\n", numRuns, cfg.Scenario, cfg.Seed)
	start := time.Now()

	results, err := experiment.NewEnsemble(cfg, numRuns, cfg.Seed, names...).Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, s := range experiment.Summarize(results) {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", s.Name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	defer w.Flush()

	if err := w.Write([]string{"tick", "time", "particles", "kinetic_energy", "mean_temperature", "settle_delta"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Tick),
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			strconv.Itoa(s.Particles),
			strconv.FormatFloat(s.KineticEnergy, 'f', 6, 64),
			strconv.FormatFloat(s.MeanTemperature, 'f', 6, 64),
			strconv.FormatFloat(s.SettleDelta, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frame, err := st.LoadFrame(args[0])
	if err != nil {
		return err
	}

	opts := export.FrameOptions{Width: svgWidth, Theme: viz.GetTheme(theme)}
	if cfg, err := st.LoadConfig(args[0]); err == nil && cfg.Temperature.Enabled {
		opts.Buckets = cfg.Temperature.Buckets
	}
	svg := export.FrameToSVG(frame, opts)

	if outFile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
	return nil
}

// benchSolver times the same grid of particles with and without the index.
func benchSolver(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking collisions (%d ticks, %d substeps)\n\n", ticks, substeps)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tINDEXED\tEXHAUSTIVE\tSPEEDUP")
	for _, n := range benchCounts {
		indexed, err := timeSolver(n, true)
		if err != nil {
			return err
		}
		exhaustive, err := timeSolver(n, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%v\t%v\t%.2fx\n", n, indexed, exhaustive, exhaustive.Seconds()/indexed.Seconds())
	}
	return w.Flush()
}

func timeSolver(n int, useIndex bool) (time.Duration, error) {
	sc := solver.DefaultConfig()
	sc.SubSteps = substeps
	sc.UseIndex = useIndex
	s, err := solver.New(sc)
	if err != nil {
		return 0, err
	}

	const radius, spacing = 4.0, 10.0
	c, reach := sc.Boundary.Center, sc.Boundary.Radius-2*radius
	placed := 0
	for y := c.Y - reach; y <= c.Y+reach && placed < n; y += spacing {
		for x := c.X - reach; x <= c.X+reach && placed < n; x += spacing {
			p := r2.Vec{X: x, Y: y}
			if r2.Norm(r2.Sub(p, c)) > reach {
				continue
			}
			if _, err := s.Spawn(p, radius, false, 0); err != nil {
				return 0, err
			}
			placed++
		}
	}

	start := time.Now()
	for i := 0; i < ticks; i++ {
		if err := s.Update(config.DefaultDt); err != nil {
			return 0, err
		}
	}
	return time.Since(start), nil
}
