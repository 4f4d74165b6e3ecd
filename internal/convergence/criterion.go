package convergence

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/indecision/internal/dynamo"
)

// Config parameterizes a Criterion.
type Config struct {
	// Metric defaults to Wasserstein.
	Metric     Metric
	Tolerance  float64
	WindowSize int
	// SampleSize caps how many values of each flattened window are compared.
	SampleSize int
}

// Criterion compares the distribution of the last WindowSize snapshots with
// the WindowSize snapshots before them.
type Criterion struct {
	cfg      Config
	history  [][]float64
	distance float64
}

func New(cfg Config) (*Criterion, error) {
	if cfg.Metric == nil {
		cfg.Metric = Wasserstein
	}
	if !(cfg.Tolerance > 0) || math.IsInf(cfg.Tolerance, 0) {
		return nil, fmt.Errorf("%w: tolerance must be positive, got %v", dynamo.ErrConvergenceConfig, cfg.Tolerance)
	}
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", dynamo.ErrConvergenceConfig, cfg.WindowSize)
	}
	if cfg.SampleSize <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", dynamo.ErrConvergenceConfig, cfg.SampleSize)
	}
	return &Criterion{cfg: cfg, distance: math.NaN()}, nil
}

// HasConverged records a copy of snapshot and reports whether the two most
// recent windows are closer than the tolerance.
func (c *Criterion) HasConverged(snapshot []float64) bool {
	w := c.cfg.WindowSize
	c.history = append(c.history, slices.Clone(snapshot))
	if len(c.history) > 2*w {
		c.history = slices.Delete(c.history, 0, len(c.history)-2*w)
	}

	if len(c.history) < 2*w {
		return false
	}

	older := c.flatten(c.history[:w])
	recent := c.flatten(c.history[w:])
	c.distance = c.cfg.Metric(recent, older)
	return c.distance < c.cfg.Tolerance
}

// Distance is the last computed distance, NaN before two full windows.
func (c *Criterion) Distance() float64 { return c.distance }

// Len is the number of snapshots currently held.
func (c *Criterion) Len() int { return len(c.history) }

func (c *Criterion) Reset() {
	c.history = c.history[:0]
	c.distance = math.NaN()
}

// flatten concatenates snapshots in order and keeps the first SampleSize
// values.
func (c *Criterion) flatten(window [][]float64) []float64 {
	out := make([]float64, 0, c.cfg.SampleSize)
	for _, snap := range window {
		for _, v := range snap {
			if len(out) == c.cfg.SampleSize {
				return out
			}
			out = append(out, v)
		}
	}
	return out
}
