package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/indecision/internal/analysis"
	"github.com/san-kum/indecision/internal/config"
	"github.com/san-kum/indecision/internal/experiment"
	"github.com/san-kum/indecision/internal/export"
	"github.com/san-kum/indecision/internal/logging"
	"github.com/san-kum/indecision/internal/particles"
)

// buildConfig layers the run configuration: defaults, then the preset, then
// the config file, then any flag set on the command line.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	particle := ""
	if len(args) > 0 {
		particle = args[0]
	}

	if preset != "" {
		if particle == "" {
			return nil, fmt.Errorf("--preset needs a particle argument")
		}
		p := config.GetPreset(particle, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(particle))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if particle != "" && particle != cfg.Particle {
		cfg.Particle = particle
		cfg.Params = nil
		cfg.Rates = nil
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = numParticles
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	for name, raw := range params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		cfg.SetParam(name, v)
	}
	if rateTable != "" {
		rates, err := parseRates(rateTable)
		if err != nil {
			return nil, err
		}
		cfg.Rates = rates
	}

	if flags.Lookup("tol") != nil {
		cc := &cfg.Convergence
		if converge {
			cc.Enabled = true
		}
		if flags.Changed("metric") || cc.Metric == "" {
			cc.Metric = metricName
		}
		if flags.Changed("tol") || cc.Tolerance == 0 {
			cc.Tolerance = tolerance
		}
		if flags.Changed("window") || cc.WindowSize == 0 {
			cc.WindowSize = window
		}
		if flags.Changed("sample-size") {
			cc.SampleSize = sampleSize
		}
		if cc.SampleSize == 0 || (flags.Changed("particles") && !flags.Changed("sample-size")) {
			cc.SampleSize = cfg.Particles * cc.WindowSize
		}
	}

	return cfg, nil
}

// parseRates reads "on:off,on:off" into a rate table.
func parseRates(s string) ([]particles.RatePair, error) {
	var out []particles.RatePair
	for _, pair := range strings.Split(s, ",") {
		on, off, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("rate pair %q is not on:off", pair)
		}
		onV, err := strconv.ParseFloat(on, 64)
		if err != nil {
			return nil, fmt.Errorf("rate pair %q: %w", pair, err)
		}
		offV, err := strconv.ParseFloat(off, 64)
		if err != nil {
			return nil, fmt.Errorf("rate pair %q: %w", pair, err)
		}
		out = append(out, particles.RatePair{On: onV, Off: offV})
	}
	return out, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	registry := experiment.NewRegistry()
	m, err := registry.GetModel(cfg)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(m, registry.MetricsFor(m, cfg)); err != nil {
		return err
	}

	tl := logging.NewTraceLogger(dataDir, cfg.LogLevel)
	defer tl.Close()
	exp.SetTrace(tl, fmt.Sprintf("%s_%d", cfg.Particle, time.Now().UnixNano()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s with %d particles...\n", cfg.Particle, cfg.Particles)
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runID, err := st.Save(result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("time: %.4g  steps: %d\n", result.Time, result.Steps)
	if cfg.Convergence.Enabled {
		fmt.Printf("converged: %v\n", result.Converged)
	}
	fmt.Printf("theta: %.6f\n", result.LastTheta)
	if result.SteadyState != nil {
		fmt.Printf("steady state: %.6f\n", *result.SteadyState)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	fmt.Println("\noccupancy:")
	counts := make([]analysis.StateCount[string], len(result.Occupancy))
	for i, c := range result.Occupancy {
		counts[i] = analysis.StateCount[string]{State: c.State, Count: c.Count, Fraction: c.Fraction}
	}
	fmt.Print(analysis.OccupancyToASCII(counts, 40))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	var values []float64
	if sweepLog {
		values = analysis.Logspace(sweepFrom, sweepTo, sweepSteps)
	} else {
		values = analysis.Linspace(sweepFrom, sweepTo, sweepSteps)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %d values...\n", sweepParam, len(values))
	points, err := experiment.Sweep(ctx, experiment.NewRegistry(), cfg, sweepParam, values, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTHETA\tSTDDEV\tANALYTIC\n", strings.ToUpper(sweepParam))
	for _, p := range points {
		analytic := "-"
		if !math.IsNaN(p.Analytic) {
			analytic = fmt.Sprintf("%.4f", p.Analytic)
		}
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%s\n", p.Param, p.Theta, p.StdDev, analytic)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(analysis.SweepToASCII(points, 60, 15))

	if sweepSVG != "" {
		if err := os.WriteFile(sweepSVG, []byte(export.SweepToSVG(points, 800, 400, "#00ff88")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", sweepSVG)
	}
	return nil
}

func describeStates(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	m, err := experiment.NewRegistry().GetModel(cfg)
	if err != nil {
		return err
	}
	states, err := m.Describe()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATE\tBOUND\tSTATIONARY\tEVENT\tTARGET\tPROB")
	for _, s := range states {
		bound := "no"
		if s.Attached {
			bound = "yes"
		}
		pi := "-"
		if s.Stationary != nil {
			pi = fmt.Sprintf("%.4f", *s.Stationary)
		}
		if s.Absorbing {
			fmt.Fprintf(w, "%s\t%s\t%s\t(absorbing)\t\t\n", s.State, bound, pi)
			continue
		}
		for i, e := range s.Events {
			state := s.State
			if i > 0 {
				state, bound, pi = "", "", ""
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.4f\n", state, bound, pi, e.Label, e.Target, e.Probability)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if ss, err := m.SteadyState(); err == nil {
		fmt.Printf("\nsteady state theta: %.6f\n", ss)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := experiment.NewRegistry().ListModels()
	if len(args) > 0 {
		names = args
	}
	for _, name := range names {
		presets := config.ListPresets(name)
		if len(presets) == 0 {
			fmt.Printf("no presets for particle: %s\n", name)
			continue
		}
		fmt.Printf("presets for %s:\n", name)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[1:])
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
