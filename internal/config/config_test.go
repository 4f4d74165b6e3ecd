package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Particle != "mono_ligand" {
		t.Errorf("expected particle mono_ligand, got %s", cfg.Particle)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("mono_ligand", "frenkel")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Param("off_rate", 0) != 0.1 {
		t.Errorf("expected off_rate 0.1, got %f", cfg.Param("off_rate", 0))
	}
	if cfg.Seed == 0 || cfg.Workers == 0 || cfg.Convergence.WindowSize == 0 {
		t.Errorf("preset defaults not filled: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	cfg := GetPreset("multi_ligand", "trivalent")
	cfg.SetParam("receptor_density", 42)
	cfg.Rates[0].On = 42

	again := GetPreset("multi_ligand", "trivalent")
	if again.Param("receptor_density", 0) == 42 || again.Rates[0].On == 42 {
		t.Error("preset was modified through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("mono_ligand", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "symmetric")
	if cfg != nil {
		t.Error("expected nil for nonexistent particle")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("mono_ligand")
	if len(presets) != 3 || presets[0] != "frenkel" {
		t.Errorf("unexpected presets: %v", presets)
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent particle")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for particle := range Presets {
		for _, name := range ListPresets(particle) {
			if err := GetPreset(particle, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", particle, name, err)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no particle", func(c *Config) { c.Particle = "" }},
		{"negative particles", func(c *Config) { c.Particles = -1 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"negative samples", func(c *Config) { c.Samples = -3 }},
		{"bad convergence", func(c *Config) {
			c.Convergence.Enabled = true
			c.Convergence.WindowSize = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("multi_ligand", "trivalent")
	cfg.Seed = 77
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Particle != "multi_ligand" || loaded.Seed != 77 {
		t.Errorf("loaded %+v", loaded)
	}
	if len(loaded.Rates) != 3 || loaded.Rates[1].On != 0.5 {
		t.Errorf("rates = %+v", loaded.Rates)
	}
	if _, ok := loaded.Params["on_rate"]; ok {
		t.Error("default mono params leaked into a multi-ligand config")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("particles: 500\nseed: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Particles != 500 || cfg.Seed != 9 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Param("on_rate", 0) != 1 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
