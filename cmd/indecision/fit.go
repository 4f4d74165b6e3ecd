package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/indecision/internal/analysis"
	"github.com/san-kum/indecision/internal/experiment"
	"github.com/san-kum/indecision/internal/optim"
)

// parseGrid reads name=from:to:steps ranges, ordered by name.
func parseGrid(grid map[string]string) ([]string, [][]float64, error) {
	if len(grid) == 0 {
		return nil, nil, fmt.Errorf("--grid needs at least one parameter")
	}
	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	slices.Sort(names)

	ranges := make([][]float64, len(names))
	for i, name := range names {
		parts := strings.Split(grid[name], ":")
		if len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid %s=%s is not from:to:steps", name, grid[name])
		}
		from, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %s: %w", name, err)
		}
		to, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %s: %w", name, err)
		}
		steps, err := strconv.Atoi(parts[2])
		if err != nil || steps < 1 {
			return nil, nil, fmt.Errorf("grid %s: steps must be a positive integer", name)
		}
		ranges[i] = analysis.Linspace(from, to, steps)
	}
	return names, ranges, nil
}

func runFit(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(fitGrid)
	if err != nil {
		return err
	}
	logger := newLogger(base.LogLevel)
	registry := experiment.NewRegistry()

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for k, v := range params {
			cfg.SetParam(k, v)
		}
		m, err := registry.GetModel(cfg)
		if err != nil {
			logger.Debug("grid point skipped", "params", params, "error", err)
			return nil, err
		}
		exp := experiment.New(cfg, logger.With("params", params))
		if err := exp.Setup(m, registry.MetricsFor(m, cfg)); err != nil {
			return nil, err
		}
		return exp, nil
	}

	objective := optim.TargetTheta(fitTarget)
	what := fmt.Sprintf("|theta - %.4g|", fitTarget)
	if fitMetric != "" {
		objective = optim.MetricValue(fitMetric)
		what = fitMetric
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("searching %d parameter(s) of %s...\n", len(names), base.Particle)
	best, score, err := optim.NewGridSearch(names, ranges).Search(ctx, build, objective)
	if err != nil {
		return err
	}

	fmt.Println("best:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, best[name])
	}
	fmt.Printf("%s: %.6f\n", what, score)

	fitted := base.Clone()
	for k, v := range best {
		fitted.SetParam(k, v)
	}
	if m, err := registry.GetModel(fitted); err == nil {
		if ss, err := m.SteadyState(); err == nil {
			fmt.Printf("steady state at best: %.6f\n", ss)
		}
	}
	return nil
}
