package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/indecision/internal/particles"
)

const (
	DefaultParticle  = "mono_ligand"
	DefaultParticles = 10000
	DefaultDt        = 0.1
	DefaultDuration  = 100.0
	DefaultSamples   = 200
	DefaultTolerance = 0.01
	DefaultWindow    = 10
	DefaultLogLevel  = "info"
)

type Config struct {
	Particle string `yaml:"particle"`
	// Params holds the scalar parameters of the particle model, keyed by
	// their snake_case names.
	Params map[string]float64 `yaml:"params,omitempty"`
	// Rates is the per-ligand rate table of multivalent models.
	Rates       []particles.RatePair `yaml:"rates,omitempty"`
	Particles   int                  `yaml:"particles"`
	Seed        uint64               `yaml:"seed"`
	Dt          float64              `yaml:"dt"`
	Duration    float64              `yaml:"duration"`
	Samples     int                  `yaml:"samples"`
	Workers     int                  `yaml:"workers"`
	LogLevel    string               `yaml:"log_level"`
	Convergence ConvergenceConfig    `yaml:"convergence"`
}

type ConvergenceConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Metric     string  `yaml:"metric,omitempty"`
	Tolerance  float64 `yaml:"tolerance"`
	WindowSize int     `yaml:"window_size"`
	SampleSize int     `yaml:"sample_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Particle: DefaultParticle,
		Params: map[string]float64{
			"receptor_density": 1,
			"binding_strength": 1,
			"on_rate":          1,
			"off_rate":         1,
		},
		Particles: DefaultParticles,
		Seed:      1,
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Samples:   DefaultSamples,
		Workers:   1,
		LogLevel:  DefaultLogLevel,
		Convergence: ConvergenceConfig{
			Metric:     "wasserstein",
			Tolerance:  DefaultTolerance,
			WindowSize: DefaultWindow,
			SampleSize: DefaultParticles * DefaultWindow,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// A file that names its own params replaces the defaults wholesale.
	cfg.Params = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Params == nil && cfg.Particle == DefaultParticle {
		cfg.Params = DefaultConfig().Params
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Param returns the named parameter or def when it is unset.
func (c *Config) Param(name string, def float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return def
}

func (c *Config) SetParam(name string, v float64) {
	if c.Params == nil {
		c.Params = make(map[string]float64)
	}
	c.Params[name] = v
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Params = maps.Clone(c.Params)
	out.Rates = slices.Clone(c.Rates)
	return &out
}

// Validate checks the run settings. Model parameters are checked by the
// particle itself when it is built.
func (c *Config) Validate() error {
	if c.Particle == "" {
		return fmt.Errorf("particle is required")
	}
	if c.Particles < 0 {
		return fmt.Errorf("particles must be non-negative, got %d", c.Particles)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %v", c.Duration)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples must be non-negative, got %d", c.Samples)
	}
	if c.Convergence.Enabled {
		cc := c.Convergence
		if !(cc.Tolerance > 0) || cc.WindowSize <= 0 || cc.SampleSize <= 0 {
			return fmt.Errorf("convergence needs positive tolerance, window_size and sample_size")
		}
	}
	return nil
}
