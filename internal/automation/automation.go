package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/indecision/internal/config"
	"github.com/san-kum/indecision/internal/experiment"
	"github.com/san-kum/indecision/internal/logging"
	"github.com/san-kum/indecision/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. In YAML it is a run configuration, starting
// from the named preset when one is given, plus:
//
//	name: label shown in the output
//	preset: preset of particle to start from
//	save: store the result
type Step struct {
	Name   string
	Preset string
	Save   bool
	Config *config.Config
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Name     string `yaml:"name"`
		Preset   string `yaml:"preset"`
		Particle string `yaml:"particle"`
		Save     bool   `yaml:"save"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if head.Preset != "" {
		p := config.GetPreset(head.Particle, head.Preset)
		if p == nil {
			return fmt.Errorf("line %d: unknown preset %q for %q", node.Line, head.Preset, head.Particle)
		}
		cfg = p
	} else if head.Particle != "" && head.Particle != cfg.Particle {
		cfg.Params = nil
	}
	if err := node.Decode(cfg); err != nil {
		return err
	}

	s.Name = head.Name
	if s.Name == "" {
		s.Name = cfg.Particle
	}
	s.Preset = head.Preset
	s.Save = head.Save
	s.Config = cfg
	return nil
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

type StepResult struct {
	Name   string
	RunID  string
	Result *experiment.Result
}

// RunScenario executes all steps in order. Steps marked save are written to
// st, which may be nil when none is.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		result, err := runOnce(ctx, registry, step.Config, logger)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		sr := StepResult{Name: step.Name, Result: result}
		if step.Save {
			if st == nil {
				return results, fmt.Errorf("step %d (%s): save requested without a store", i+1, step.Name)
			}
			if sr.RunID, err = st.Save(result); err != nil {
				return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

func runOnce(ctx context.Context, registry *experiment.Registry, cfg *config.Config, logger *slog.Logger) (*experiment.Result, error) {
	m, err := registry.GetModel(cfg)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, logger)
	if err := exp.Setup(m, registry.MetricsFor(m, cfg)); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// ReplicaStats summarizes the final theta of independent runs that differ
// only in their seed.
type ReplicaStats struct {
	Seeds  []uint64
	Thetas []float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// RunReplicas runs cfg n times with seeds cfg.Seed, cfg.Seed+1, ... and
// reports the spread of the final theta between runs.
func RunReplicas(ctx context.Context, cfg *config.Config, registry *experiment.Registry, n int, logger *slog.Logger) (*ReplicaStats, error) {
	if n < 1 {
		return nil, fmt.Errorf("replicas must be positive, got %d", n)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	stats := &ReplicaStats{
		Seeds:  make([]uint64, 0, n),
		Thetas: make([]float64, 0, n),
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
	for i := 0; i < n; i++ {
		c := cfg.Clone()
		c.Seed = cfg.Seed + uint64(i)

		result, err := runOnce(ctx, registry, c, logging.Discard())
		if err != nil {
			return nil, fmt.Errorf("replica %d (seed %d): %w", i, c.Seed, err)
		}
		stats.Seeds = append(stats.Seeds, c.Seed)
		stats.Thetas = append(stats.Thetas, result.LastTheta)
		stats.Min = math.Min(stats.Min, result.LastTheta)
		stats.Max = math.Max(stats.Max, result.LastTheta)

		logger.Debug("replica finished", "index", i, "seed", c.Seed, "theta", result.LastTheta)
	}

	for _, v := range stats.Thetas {
		stats.Mean += v
	}
	stats.Mean /= float64(n)
	if n > 1 {
		ss := 0.0
		for _, v := range stats.Thetas {
			ss += (v - stats.Mean) * (v - stats.Mean)
		}
		stats.StdDev = math.Sqrt(ss / float64(n-1))
	}

	logger.Info("replicas finished", "particle", cfg.Particle, "replicas", n, "mean", stats.Mean, "stddev", stats.StdDev)
	return stats, nil
}
