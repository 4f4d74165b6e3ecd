package experiment

import (
	"fmt"
	"slices"

	"github.com/san-kum/indecision/internal/config"
	"github.com/san-kum/indecision/internal/dynamo"
	"github.com/san-kum/indecision/internal/metrics"
	"github.com/san-kum/indecision/internal/particles"
	"github.com/san-kum/indecision/internal/sim"
)

// Builder turns a run configuration into a model.
type Builder func(cfg *config.Config) (Model, error)

type entry struct {
	build  Builder
	params []string
}

type Registry struct {
	models map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]entry)}

	r.Register("mono_ligand", buildMono,
		"receptor_density", "binding_strength", "on_rate", "off_rate")
	r.Register("multi_ligand", buildMulti,
		"receptor_density", "binding_strength")
	r.Register("interfering", buildInterfering,
		"total_ligands", "attachment_rate", "detachment_rate", "enter_rate",
		"obstruction_factor", "receptor_density")
	r.Register("fatiguing", buildFatiguing,
		"total_ligands", "attachment_rate", "fatigued_attachment_rate", "detachment_rate",
		"enter_rate", "initial_collision_factor", "obstruction_factor",
		"fatigued_obstruction_factor", "receptor_density")

	return r
}

// Register adds a model under name. params lists the configuration keys the
// builder reads; any other key is rejected.
func (r *Registry) Register(name string, build Builder, params ...string) {
	r.models[name] = entry{build: build, params: params}
}

// GetModel builds and validates the model named by cfg.Particle.
func (r *Registry) GetModel(cfg *config.Config) (Model, error) {
	e, ok := r.models[cfg.Particle]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", cfg.Particle)
	}
	for name := range cfg.Params {
		if !slices.Contains(e.params, name) {
			return nil, fmt.Errorf("unknown parameter %q for %s (accepted: %v)", name, cfg.Particle, e.params)
		}
	}

	m, err := e.build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", cfg.Particle, err)
	}
	if v, ok := m.Particle().(dynamo.Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("build %s: %w", cfg.Particle, err)
		}
	}
	return m, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Params lists the parameters a model accepts.
func (r *Registry) Params(model string) []string {
	return slices.Clone(r.models[model].params)
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	ms := metrics.Defaults()
	out := make([]sim.Metric, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// StabilityTolerance is the band around the analytic steady state that
// counts as settled for the stability metric.
const StabilityTolerance = 0.02

// MetricsFor returns the default metrics plus, for models with an analytic
// steady state, the fraction of the second half of the run spent within
// StabilityTolerance of it.
func (r *Registry) MetricsFor(m Model, cfg *config.Config) []sim.Metric {
	out := r.DefaultMetrics()
	if ss, err := m.SteadyState(); err == nil {
		out = append(out, metrics.NewStability(ss, StabilityTolerance, cfg.Duration/2))
	}
	return out
}

func buildMono(cfg *config.Config) (Model, error) {
	p := particles.NewMonoLigand(
		cfg.Param("receptor_density", 1),
		cfg.Param("binding_strength", 1),
		cfg.Param("on_rate", 1),
		cfg.Param("off_rate", 1),
	)
	return newModel[particles.MonoLigandState]("mono_ligand", p), nil
}

// buildMulti scales every on rate by binding strength. Receptor density
// only enters the first bond; later ligands bind receptors already in reach.
// Off rates are used as given.
func buildMulti(cfg *config.Config) (Model, error) {
	if len(cfg.Rates) == 0 {
		return nil, fmt.Errorf("multi_ligand needs at least one entry in rates")
	}
	rho := cfg.Param("receptor_density", 1)
	bs := cfg.Param("binding_strength", 1)

	rates := make([]particles.RatePair, len(cfg.Rates))
	for i, r := range cfg.Rates {
		on := r.On * bs
		if i == 0 {
			on *= rho
		}
		rates[i] = particles.RatePair{On: on, Off: r.Off}
	}
	return newModel[particles.MultiLigandState]("multi_ligand", particles.NewMultiLigand(rates...)), nil
}

func totalLigands(cfg *config.Config) (int, error) {
	k := cfg.Param("total_ligands", 1)
	if k != float64(int(k)) {
		return 0, fmt.Errorf("total_ligands must be an integer, got %v", k)
	}
	return int(k), nil
}

func buildInterfering(cfg *config.Config) (Model, error) {
	k, err := totalLigands(cfg)
	if err != nil {
		return nil, err
	}
	p := &particles.Interfering{
		TotalLigands:      k,
		AttachmentRate:    cfg.Param("attachment_rate", 1),
		DetachmentRate:    cfg.Param("detachment_rate", 1),
		EnterRate:         cfg.Param("enter_rate", 1),
		ObstructionFactor: cfg.Param("obstruction_factor", 1),
		ReceptorDensity:   cfg.Param("receptor_density", 1),
	}
	return newModel[particles.InterferingState]("interfering", p), nil
}

func buildFatiguing(cfg *config.Config) (Model, error) {
	k, err := totalLigands(cfg)
	if err != nil {
		return nil, err
	}
	p := &particles.Fatiguing{
		TotalLigands:              k,
		AttachmentRate:            cfg.Param("attachment_rate", 1),
		FatiguedAttachmentRate:    cfg.Param("fatigued_attachment_rate", 1),
		DetachmentRate:            cfg.Param("detachment_rate", 1),
		EnterRate:                 cfg.Param("enter_rate", 1),
		InitialCollisionFactor:    cfg.Param("initial_collision_factor", 1),
		ObstructionFactor:         cfg.Param("obstruction_factor", 1),
		FatiguedObstructionFactor: cfg.Param("fatigued_obstruction_factor", 1),
		ReceptorDensity:           cfg.Param("receptor_density", 1),
	}
	return newModel[particles.FatiguingState]("fatiguing", p), nil
}
