package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/indecision/internal/experiment"
	"github.com/san-kum/indecision/internal/logging"
	"github.com/san-kum/indecision/internal/storage"
	"github.com/san-kum/indecision/internal/tui"
)

var (
	dataDir  string
	backend  string
	logLevel string

	// Run settings
	configFile   string
	preset       string
	numParticles int
	seed         uint64
	dt           float64
	duration     float64
	samples      int
	workers      int
	params       map[string]string
	rateTable    string
	noSave       bool

	// Convergence
	converge   bool
	metricName string
	tolerance  float64
	window     int
	sampleSize int

	// Sweep
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	sweepLog   bool
	sweepSVG   string

	// Fit
	fitTarget float64
	fitGrid   map[string]string
	fitMetric string

	// Replicas
	replicas int

	// Export
	format  string
	outFile string
)

// main registers the indecision commands and runs the root command. With no
// subcommand it opens the interactive viewer.
func main() {
	rootCmd := &cobra.Command{
		Use:          "indecision",
		Short:        "stochastic ligand-receptor ensemble simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive(experiment.NewRegistry())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".indecision", "data directory")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "file", "storage backend (file, sqlite)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [particle]",
		Short: "simulate an ensemble and store the theta series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	addConvergenceFlags(runCmd)
	runCmd.Flags().BoolVar(&converge, "converge", false, "stop once the attachment distribution settles")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	convergeCmd := &cobra.Command{
		Use:   "converge [particle]",
		Short: "simulate until the attachment distribution settles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			converge = true
			return runSimulation(cmd, args)
		},
	}
	addRunFlags(convergeCmd)
	addConvergenceFlags(convergeCmd)
	convergeCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [particle]",
		Short: "plateau theta as one parameter varies",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "vary", "receptor_density", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.1, "first value (exponent with --log)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 2, "last value (exponent with --log)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")
	sweepCmd.Flags().BoolVar(&sweepLog, "log", false, "space values logarithmically")
	sweepCmd.Flags().StringVar(&sweepSVG, "svg", "", "also draw the sweep to this svg file")

	fitCmd := &cobra.Command{
		Use:   "fit [particle]",
		Short: "grid search parameters for a target theta",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFit,
	}
	addRunFlags(fitCmd)
	fitCmd.Flags().Float64Var(&fitTarget, "target", 0.5, "theta to match")
	fitCmd.Flags().StringToStringVar(&fitGrid, "grid", nil, "parameter ranges as from:to:steps, e.g. receptor_density=0.1:2:20")
	fitCmd.Flags().StringVar(&fitMetric, "minimize", "", "minimize this metric instead of matching --target")

	replicateCmd := &cobra.Command{
		Use:   "replicate [particle]",
		Short: "repeat a run with successive seeds and report the spread",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReplicas,
	}
	addRunFlags(replicateCmd)
	replicateCmd.Flags().IntVarP(&replicas, "replicas", "r", 10, "number of runs")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	statesCmd := &cobra.Command{
		Use:   "states [particle]",
		Short: "list the states of a particle and their jump probabilities",
		Args:  cobra.MaximumNArgs(1),
		RunE:  describeStates,
	}
	addRunFlags(statesCmd)

	liveCmd := &cobra.Command{
		Use:   "live [particle]",
		Short: "watch theta evolve in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, args)
			if err != nil {
				return err
			}
			return tui.RunLive(experiment.NewRegistry(), cfg)
		},
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the theta series of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON, CSV or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json, csv, svg)")
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [particle]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path] [particle]",
		Short: "write a config file to start from",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  writeConfig,
	}
	addRunFlags(initCmd)

	rootCmd.AddCommand(runCmd, convergeCmd, sweepCmd, fitCmd, replicateCmd, scenarioCmd, statesCmd, liveCmd, listCmd, plotCmd,
		exportCmd, deleteCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	f.StringVarP(&preset, "preset", "p", "", "named preset for the particle")
	f.IntVarP(&numParticles, "particles", "n", 10000, "ensemble size")
	f.Uint64Var(&seed, "seed", 1, "random seed")
	f.Float64Var(&dt, "dt", 0.1, "recording interval")
	f.Float64Var(&duration, "time", 100, "simulated time")
	f.IntVar(&samples, "samples", 200, "theta samples to keep")
	f.IntVar(&workers, "workers", 1, "parallel workers (0 for all cpus)")
	f.StringToStringVar(&params, "param", nil, "model parameters, e.g. receptor_density=0.5,on_rate=2")
	f.StringVar(&rateTable, "rates", "", "multivalent rate table as on:off pairs, e.g. 1:1,0.5:0.5")
}

func addConvergenceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&metricName, "metric", "wasserstein", "distance between windows (wasserstein, ks)")
	f.Float64Var(&tolerance, "tol", 0.01, "convergence tolerance")
	f.IntVar(&window, "window", 10, "snapshots per window")
	f.IntVar(&sampleSize, "sample-size", 0, "values kept per window (default particles*window)")
}

func openStore() (storage.Store, error) {
	st, err := storage.Open(backend, dataDir)
	if err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newLogger(level string) *slog.Logger {
	return logging.NewLogger(level, os.Stderr)
}
