package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/flightpid/internal/analysis"
	"github.com/san-kum/flightpid/internal/config"
	"github.com/san-kum/flightpid/internal/control"
	"github.com/san-kum/flightpid/internal/experiment"
	"github.com/san-kum/flightpid/internal/export"
	"github.com/san-kum/flightpid/internal/flight"
	"github.com/san-kum/flightpid/internal/optim"
	"github.com/san-kum/flightpid/internal/replay"
	"github.com/san-kum/flightpid/internal/storage"
	"github.com/san-kum/flightpid/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	kp         float64
	ki         float64
	kd         float64
	// tune
	metricName string
	kpRange    string
	kiRange    string
	kdRange    string
	outFile    string
	// bench
	benchTicks int
	// export-plot
	plotFormat string
	// best
	scenarioFilter string
	bestLimit      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "flightpid",
		Short:         "flight controller pid replay and tuning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flightpid", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	replayCmd := &cobra.Command{
		Use:   "replay [scenario.yaml]...",
		Short: "replay scenarios and save the runs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReplay,
	}
	gainFlags(replayCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [scenario.yaml]",
		Short: "replay a scenario in the terminal viewer",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	gainFlags(watchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	bestCmd := &cobra.Command{
		Use:   "best [metric]",
		Short: "rank saved runs by a metric, lowest first",
		Args:  cobra.ExactArgs(1),
		RunE:  bestRuns,
	}
	bestCmd.Flags().StringVar(&scenarioFilter, "scenario", "", "only runs of this scenario")
	bestCmd.Flags().IntVar(&bestLimit, "limit", 10, "number of runs to show")

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run index from the data directory",
		RunE:  reindex,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "throttle oscillation analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run ticks to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "export run demands and output as a chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPlot,
	}
	exportPlotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportPlotCmd.Flags().StringVar(&plotFormat, "format", "svg", "svg, png, pdf or html")

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets for a controller kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for kind: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario.yaml]",
		Short: "grid search altitude gains",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tuneCmd.Flags().StringVar(&preset, "preset", "", "use preset gains")
	tuneCmd.Flags().StringVar(&metricName, "metric", "altitude_rms", "metric to minimise")
	tuneCmd.Flags().StringVar(&kpRange, "kp-range", "0.05,0.5,5", "kp grid as lo,hi,n")
	tuneCmd.Flags().StringVar(&kiRange, "ki-range", "0,0.2,5", "ki grid as lo,hi,n")
	tuneCmd.Flags().StringVar(&kdRange, "kd-range", "0,0.4,5", "kd grid as lo,hi,n")
	tuneCmd.Flags().StringVar(&outFile, "out", "", "write the best config to this file")

	benchCmd := &cobra.Command{
		Use:   "bench [kind]",
		Short: "benchmark controller updates",
		Args:  cobra.ExactArgs(1),
		RunE:  benchKind,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 1_000_000, "number of ticks")

	rootCmd.AddCommand(replayCmd, watchCmd, listCmd, bestCmd, reindexCmd, plotCmd, analyzeCmd, exportCmd, exportCSVCmd, exportPlotCmd, presetsCmd, tuneCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func gainFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset gains")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "altitude kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "altitude ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "altitude kd")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// changedGains collects the gain flags the user actually set, so they
// override the config file and preset instead of the flag defaults doing so.
func changedGains(cmd *cobra.Command) map[string]float64 {
	params := make(map[string]float64)
	for name, v := range map[string]float64{"kp": kp, "ki": ki, "kd": kd} {
		if cmd.Flags().Changed(name) {
			params[name] = v
		}
	}
	return params
}

func setup(logger *zap.Logger, path string, params map[string]float64) (*experiment.Experiment, error) {
	sc, err := replay.LoadScenario(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	cfg, used, err := experiment.Resolve(sc, experiment.Options{
		ConfigPath: configFile,
		Preset:     preset,
		Params:     params,
	})
	if err != nil {
		if errors.Is(err, experiment.ErrUnknownPreset) {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets(sc.Kind))
		}
		return nil, err
	}

	logger.Debug("config resolved",
		zap.String("scenario", sc.Name),
		zap.String("preset", used),
		zap.Float64("dt", cfg.Dt),
		zap.Any("altitude", cfg.Altitude),
	)
	return experiment.New(cfg, used, sc, logger), nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	exps := make([]*experiment.Experiment, 0, len(args))
	for _, path := range args {
		exp, err := setup(logger, path, changedGains(cmd))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		exps = append(exps, exp)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := experiment.NewBatch(exps...).Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	ix, err := storage.OpenIndex(indexPath())
	if err != nil {
		return err
	}
	defer ix.Close()

	fmt.Printf("completed %d scenario(s) in %v\n", len(results), elapsed)
	for i, result := range results {
		runID, err := st.Save(result, exps[i].Preset(), exps[i].Gains())
		if err != nil {
			return err
		}
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		if err := ix.Add(ctx, *meta); err != nil {
			logger.Warn("index update failed", zap.String("run", runID), zap.Error(err))
		}

		fmt.Printf("\nrun id: %s\n", runID)
		fmt.Printf("ticks: %d\n", len(result.Samples))
		if len(result.Errors) > 0 {
			fmt.Printf("non-finite ticks: %d\n", len(result.Errors))
		}
		fmt.Println("metrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	exp, err := setup(logger, args[0], changedGains(cmd))
	if err != nil {
		return err
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	return viz.Run(result)
}

func indexPath() string {
	return filepath.Join(dataDir, "index.db")
}

func bestRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	ix, err := storage.OpenIndex(indexPath())
	if err != nil {
		return err
	}
	defer ix.Close()

	ranked, err := ix.Best(cmd.Context(), args[0], scenarioFilter, bestLimit)
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		fmt.Printf("no runs with metric %s\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tID\tSCENARIO\tKIND\tPRESET\t%s\n", strings.ToUpper(args[0]))
	for i, r := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.6f\n", i+1, r.ID, r.Scenario, r.Kind, r.Preset, r.Value)
	}
	return w.Flush()
}

func reindex(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	ix, err := storage.OpenIndex(indexPath())
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.Rebuild(cmd.Context(), st)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d runs\n", n)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tKIND\tPRESET\tTIME\tTICKS\tDT\tERRORS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.4fs\t%d\n",
			run.ID,
			run.Scenario,
			run.Kind,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Dt,
			run.Errors,
		)
	}

	return w.Flush()
}

type series struct {
	caption string
	value   func(storage.Tick) float64
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	if len(ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s)\n", meta.Scenario, meta.Kind)
	fmt.Printf("ticks: %d\n\n", len(ticks))

	plots := []series{{"throttle out", func(t storage.Tick) float64 { return t.Out[0] }}}
	if meta.Kind == control.KindAltitude.String() {
		plots = append(plots,
			series{"altitude (m)", func(t storage.Tick) float64 { return t.Altitude }},
			series{"error integral", func(t storage.Tick) float64 { return t.ErrorIntegral }},
		)
	} else {
		plots = append(plots,
			series{"roll out", func(t storage.Tick) float64 { return t.Out[1] }},
			series{"roll rate (rad/s)", func(t storage.Tick) float64 { return t.RollRate }},
		)
	}

	for _, s := range plots {
		data := make([]float64, 0, len(ticks))
		for _, t := range ticks {
			if v := s.value(t); !math.IsNaN(v) && !math.IsInf(v, 0) {
				data = append(data, v)
			}
		}
		if len(data) == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	data := make([]float64, len(ticks))
	for i, t := range ticks {
		data[i] = t.Out[0]
	}

	sp, err := analysis.AmplitudeSpectrum(data, meta.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s)\n\n", meta.Scenario, meta.Kind)

	// the upper half of the band is rarely interesting at flight loop rates
	plotData := sp.Amps[1 : len(sp.Amps)/2+1]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("throttle amplitude spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, amp := sp.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	fmt.Printf("amplitude: %.6f\n", amp)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ticks, err := st.LoadTicks(args[0])
	if err != nil {
		return err
	}

	if len(ticks) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(storage.Header); err != nil {
		return err
	}
	for _, t := range ticks {
		if err := w.Write(t.Record()); err != nil {
			return err
		}
	}

	return nil
}

func exportPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	ticks, err := st.LoadTicks(args[0])
	if err != nil {
		return err
	}

	chart := export.Chart{
		Title:  fmt.Sprintf("%s (%s)", meta.ID, meta.Kind),
		YLabel: "Demand",
		Times:  make([]float64, len(ticks)),
		Series: []export.Series{
			{Name: "throttle in", Color: color.RGBA{R: 0x88, G: 0x88, B: 0x99, A: 0xff}},
			{Name: "throttle out", Color: color.RGBA{G: 0xcc, B: 0x66, A: 0xff}},
		},
	}
	if meta.Kind == control.KindAngleRate.String() {
		chart.Series = append(chart.Series,
			export.Series{Name: "roll in", Color: color.RGBA{R: 0x66, G: 0x66, B: 0x88, A: 0xff}},
			export.Series{Name: "roll out", Color: color.RGBA{R: 0xcc, B: 0xcc, A: 0xff}},
		)
	}
	for i := range chart.Series {
		chart.Series[i].Values = make([]float64, len(ticks))
	}
	for i, t := range ticks {
		chart.Times[i] = t.Time
		chart.Series[0].Values[i] = t.In[0]
		chart.Series[1].Values[i] = t.Out[0]
		if len(chart.Series) > 2 {
			chart.Series[2].Values[i] = t.In[1]
			chart.Series[3].Values[i] = t.Out[1]
		}
	}

	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return chart.Render(w, 10*vg.Inch, 4*vg.Inch, plotFormat)
}

func runTune(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := replay.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	names := []string{"kp", "ki", "kd"}
	ranges := make([][]float64, 0, len(names))
	for i, raw := range []string{kpRange, kiRange, kdRange} {
		r, err := parseRange(raw)
		if err != nil {
			return fmt.Errorf("--%s-range: %w", names[i], err)
		}
		ranges = append(ranges, r)
	}

	grid := optim.NewGridSearch(names, ranges)
	fmt.Printf("searching %d points on %s for minimum %s...\n", grid.Points(), sc.Name, metricName)

	opts := experiment.Options{ConfigPath: configFile, Preset: preset}
	// the runs are silent; only the best point matters
	quiet := zap.NewNop()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		opts.Params = params
		cfg, used, err := experiment.Resolve(sc, opts)
		if err != nil {
			logger.Debug("grid point rejected", zap.Any("params", params), zap.Error(err))
			return nil, err
		}
		return experiment.New(cfg, used, sc, quiet), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	best, score, err := grid.Search(ctx, build, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("best %s: %.6f\n", metricName, score)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, best[name])
	}

	if outFile != "" {
		opts.Params = best
		cfg, _, err := experiment.Resolve(sc, opts)
		if err != nil {
			return err
		}
		if err := config.Save(outFile, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	return nil
}

// parseRange reads "lo,hi,n" into n evenly spaced values.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("want lo,hi,n, got %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, err
	}
	switch {
	case n < 1:
		return nil, fmt.Errorf("n must be at least 1, got %d", n)
	case n == 1:
		return []float64{lo}, nil
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}

func benchKind(cmd *cobra.Command, args []string) error {
	kind, err := control.ParseKind(args[0])
	if err != nil {
		return err
	}

	gains := config.DefaultConfig().Gains()
	if kind == control.KindAngleRate {
		gains = config.GetPreset("angle_rate", "hackflight").Gains()
	}

	d := flight.Demands{Throttle: 0.5, Roll: 0.1, Pitch: -0.1, Yaw: 0.05}
	v := flight.VehicleState{Altitude: 9.8, ClimbRate: 0.1, RollRate: 0.2, PitchRate: -0.2}
	c := control.Engage(kind, gains, d, v)

	fmt.Printf("benchmarking %s for %d ticks...\n", kind, benchTicks)
	start := time.Now()
	for i := 0; i < benchTicks; i++ {
		_, c = control.Update(c, d, v)
	}
	elapsed := time.Since(start)

	perTick := time.Duration(0)
	if benchTicks > 0 {
		perTick = elapsed / time.Duration(benchTicks)
	}
	fmt.Printf("total: %v\n", elapsed)
	fmt.Printf("per tick: %v\n", perTick)
	return nil
}
