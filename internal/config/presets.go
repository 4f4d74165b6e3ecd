package config

import (
	"slices"

	"github.com/san-kum/indecision/internal/particles"
)

func rates(on, off []float64) []particles.RatePair {
	out := make([]particles.RatePair, len(on))
	for i := range on {
		out[i] = particles.RatePair{On: on[i], Off: off[i]}
	}
	return out
}

var Presets = map[string]map[string]*Config{
	"mono_ligand": {
		"symmetric": {
			Particle: "mono_ligand", Particles: 100000, Dt: 1, Duration: 100, Samples: 100,
			Params: map[string]float64{"receptor_density": 1, "binding_strength": 1, "on_rate": 1, "off_rate": 1},
		},
		"frenkel": {
			Particle: "mono_ligand", Particles: 10000, Dt: 0.1, Duration: 200, Samples: 200,
			Params: map[string]float64{"receptor_density": 0.3, "binding_strength": 1, "on_rate": 1, "off_rate": 0.1},
		},
		"weak": {
			Particle: "mono_ligand", Particles: 1000, Dt: 1, Duration: 1000, Samples: 1000,
			Params: map[string]float64{"receptor_density": 1, "binding_strength": 0.1, "on_rate": 1, "off_rate": 1},
		},
	},
	"multi_ligand": {
		"trivalent": {
			Particle: "multi_ligand", Particles: 10000, Dt: 0.1, Duration: 200, Samples: 200,
			Params: map[string]float64{"receptor_density": 0.3, "binding_strength": 1},
			Rates:  rates([]float64{1, 0.5, 0.25}, []float64{1, 0.5, 0.25}),
		},
		"ten_sites": {
			Particle: "multi_ligand", Particles: 10000, Dt: 0.5, Duration: 500, Samples: 250,
			Params: map[string]float64{"receptor_density": 1, "binding_strength": 1},
			Rates: rates(
				[]float64{1, 1, 1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 1},
				[]float64{1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 1},
			),
		},
	},
	"interfering": {
		"default": {
			Particle: "interfering", Particles: 10000, Dt: 0.1, Duration: 100, Samples: 200,
			Params: map[string]float64{
				"total_ligands": 3, "attachment_rate": 1, "detachment_rate": 0.5,
				"enter_rate": 1, "obstruction_factor": 0.8, "receptor_density": 1,
			},
		},
	},
	"fatiguing": {
		"default": {
			Particle: "fatiguing", Particles: 10000, Dt: 0.1, Duration: 100, Samples: 200,
			Params: map[string]float64{
				"total_ligands": 3, "attachment_rate": 1, "fatigued_attachment_rate": 0.2,
				"detachment_rate": 0.5, "enter_rate": 1, "initial_collision_factor": 1,
				"obstruction_factor": 0.8, "fatigued_obstruction_factor": 0.5, "receptor_density": 1,
			},
		},
	},
}

// GetPreset returns a copy of the named preset filled with the run defaults
// it leaves unset, or nil.
func GetPreset(particle, preset string) *Config {
	modelPresets, ok := Presets[particle]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}

	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Convergence == (ConvergenceConfig{}) {
		cfg.Convergence = def.Convergence
		cfg.Convergence.SampleSize = cfg.Particles * cfg.Convergence.WindowSize
	}
	return cfg
}

func ListPresets(particle string) []string {
	modelPresets, ok := Presets[particle]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
