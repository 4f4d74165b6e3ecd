package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/indecision/internal/config"
	"github.com/san-kum/indecision/internal/dynamo"
	"github.com/san-kum/indecision/internal/experiment"
)

func monoBuilder(t *testing.T) func(map[string]float64) (*experiment.Experiment, error) {
	t.Helper()
	reg := experiment.NewRegistry()
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.Particles = 4000
		cfg.Duration = 10
		cfg.Samples = 10
		for k, v := range params {
			cfg.SetParam(k, v)
		}
		m, err := reg.GetModel(cfg)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(cfg, nil)
		if err := exp.Setup(m, reg.MetricsFor(m, cfg)); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

func TestGridSearchFindsTarget(t *testing.T) {
	g := NewGridSearch([]string{"receptor_density"}, [][]float64{{0.25, 0.5, 1, 2}})

	best, score, err := g.Search(context.Background(), monoBuilder(t), TargetTheta(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if best["receptor_density"] != 1 {
		t.Errorf("best = %v, want receptor_density 1", best)
	}
	if score > 0.05 {
		t.Errorf("score = %v", score)
	}
}

func TestGridSearchTwoParams(t *testing.T) {
	g := NewGridSearch(
		[]string{"on_rate", "off_rate"},
		[][]float64{{1, 3}, {1, 3}},
	)

	// theta = on/(on+off) is 0.75 only at on=3, off=1.
	best, _, err := g.Search(context.Background(), monoBuilder(t), TargetTheta(0.75))
	if err != nil {
		t.Fatal(err)
	}
	if best["on_rate"] != 3 || best["off_rate"] != 1 {
		t.Errorf("best = %v", best)
	}
}

func TestGridSearchMetricObjective(t *testing.T) {
	g := NewGridSearch([]string{"receptor_density"}, [][]float64{{0.5, 2}})

	best, score, err := g.Search(context.Background(), monoBuilder(t), MetricValue("mean_theta"))
	if err != nil {
		t.Fatal(err)
	}
	if best["receptor_density"] != 0.5 || math.IsInf(score, 0) {
		t.Errorf("best = %v score %v", best, score)
	}
}

func TestGridSearchErrors(t *testing.T) {
	ctx := context.Background()

	g := NewGridSearch([]string{"on_rate"}, [][]float64{{-1, -2}})
	if _, _, err := g.Search(ctx, monoBuilder(t), TargetTheta(0.5)); !errors.Is(err, dynamo.ErrInvalidRate) {
		t.Errorf("err = %v, want ErrInvalidRate", err)
	}

	g = NewGridSearch([]string{"on_rate"}, [][]float64{{-1, 1}})
	best, _, err := g.Search(ctx, monoBuilder(t), TargetTheta(0.5))
	if err != nil || best["on_rate"] != 1 {
		t.Errorf("failing point not skipped: %v %v", best, err)
	}

	g = NewGridSearch([]string{"on_rate", "off_rate"}, [][]float64{{1}})
	if _, _, err := g.Search(ctx, monoBuilder(t), TargetTheta(0.5)); err == nil {
		t.Error("expected error for mismatched ranges")
	}

	g = NewGridSearch([]string{"on_rate"}, [][]float64{{}})
	if _, _, err := g.Search(ctx, monoBuilder(t), TargetTheta(0.5)); err == nil {
		t.Error("expected error for empty grid")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	g = NewGridSearch([]string{"on_rate"}, [][]float64{{1}})
	if _, _, err := g.Search(cancelled, monoBuilder(t), TargetTheta(0.5)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
