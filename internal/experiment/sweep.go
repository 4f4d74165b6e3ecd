package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/indecision/internal/analysis"
	"github.com/san-kum/indecision/internal/config"
	"github.com/san-kum/indecision/internal/logging"
	"github.com/san-kum/indecision/internal/sim"
)

// Sweep runs cfg once per value of param and reports the plateau theta of
// each run: the mean and spread of theta over the second half of the run.
func Sweep(ctx context.Context, reg *Registry, cfg *config.Config, param string, values []float64, logger *slog.Logger) ([]analysis.SweepPoint, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	points := make([]analysis.SweepPoint, 0, len(values))
	for i, v := range values {
		select {
		case <-ctx.Done():
			return points, ctx.Err()
		default:
		}

		c := cfg.Clone()
		c.SetParam(param, v)
		m, err := reg.GetModel(c)
		if err != nil {
			return points, fmt.Errorf("%s=%v: %w", param, v, err)
		}

		r, err := m.Simulate(c.Particles, sim.Options{Seed: c.Seed, Dt: c.Dt, Workers: c.Workers})
		if err != nil {
			return points, fmt.Errorf("%s=%v: %w", param, v, err)
		}
		if err := r.AdvanceUntil(ctx, c.Duration); err != nil {
			return points, fmt.Errorf("%s=%v: %w", param, v, err)
		}

		p := plateau(r)
		p.Param = v
		p.Analytic = math.NaN()
		if ss, err := m.SteadyState(); err == nil {
			p.Analytic = ss
		}
		points = append(points, p)

		logger.Debug("sweep point", "index", i, "param", param, "value", v, "theta", p.Theta)
	}

	logger.Info("sweep finished", "param", param, "points", len(points))
	return points, nil
}

func plateau(r Run) analysis.SweepPoint {
	times, thetas := r.History()
	half := r.Time() / 2

	sum, sq, n := 0.0, 0.0, 0
	for i, t := range times {
		if t < half {
			continue
		}
		sum += thetas[i]
		sq += thetas[i] * thetas[i]
		n++
	}

	mean := sum / float64(n)
	variance := max(sq/float64(n)-mean*mean, 0)
	return analysis.SweepPoint{Theta: mean, StdDev: math.Sqrt(variance)}
}
