package optim

import (
	"context"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/indecision/internal/experiment"
)

// Objective scores a finished run; lower is better.
type Objective func(res *experiment.Result) float64

// TargetTheta scores a run by how far its final theta is from target.
func TargetTheta(target float64) Objective {
	return func(res *experiment.Result) float64 {
		return math.Abs(res.LastTheta - target)
	}
}

// MetricValue scores a run by one of its metrics.
func MetricValue(name string) Objective {
	return func(res *experiment.Result) float64 {
		v, ok := res.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs every combination of the grid and returns the parameters with
// the lowest objective. Runs that fail to build or run are skipped; the
// search fails only if none succeeds or ctx is cancelled.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	s := &search{
		grid:   g,
		build:  buildExperiment,
		score:  objective,
		best:   math.Inf(1),
		params: make(map[string]float64),
	}
	if err := s.recurse(ctx, 0); err != nil {
		return nil, 0, err
	}
	if s.bestParams == nil {
		if s.lastErr == nil {
			return nil, 0, fmt.Errorf("empty grid")
		}
		return nil, 0, fmt.Errorf("no grid point ran: %w", s.lastErr)
	}
	return s.bestParams, s.best, nil
}

type search struct {
	grid  *GridSearch
	build func(map[string]float64) (*experiment.Experiment, error)
	score Objective

	params     map[string]float64
	best       float64
	bestParams map[string]float64
	lastErr    error
}

func (s *search) recurse(ctx context.Context, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(s.grid.paramNames) {
		exp, err := s.build(s.params)
		if err != nil {
			s.lastErr = err
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.lastErr = err
			return nil
		}

		if val := s.score(result); val < s.best || s.bestParams == nil {
			s.best = val
			s.bestParams = maps.Clone(s.params)
		}
		return nil
	}

	name := s.grid.paramNames[depth]
	for _, val := range s.grid.ranges[depth] {
		s.params[name] = val
		if err := s.recurse(ctx, depth+1); err != nil {
			return err
		}
	}
	return nil
}
