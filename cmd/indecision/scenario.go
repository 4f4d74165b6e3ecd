package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/indecision/internal/automation"
	"github.com/san-kum/indecision/internal/experiment"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), st, newLogger(logLevel))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPARTICLE\tTIME\tTHETA\tSTEADY\tRUN")
	for _, r := range results {
		steady := "-"
		if r.Result.SteadyState != nil {
			steady = fmt.Sprintf("%.4f", *r.Result.SteadyState)
		}
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%.4g\t%.4f\t%s\t%s\n",
			r.Name, r.Result.Particle, r.Result.Time, r.Result.LastTheta, steady, runID)
	}
	return w.Flush()
}

func runReplicas(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d replicas of %s...\n", replicas, cfg.Particle)
	stats, err := automation.RunReplicas(ctx, cfg, experiment.NewRegistry(), replicas, newLogger(cfg.LogLevel))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTHETA")
	for i, seed := range stats.Seeds {
		fmt.Fprintf(w, "%d\t%.6f\n", seed, stats.Thetas[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nmean: %.6f  stddev: %.6f  min: %.6f  max: %.6f\n", stats.Mean, stats.StdDev, stats.Min, stats.Max)
	return nil
}
