package particles

import (
	"github.com/san-kum/indecision/internal/dynamo"
)

type MonoLigandState struct {
	Attached bool `json:"attached" yaml:"attached"`
}

func (s MonoLigandState) IsAttached() bool { return s.Attached }

func (s MonoLigandState) Toggle() MonoLigandState {
	return MonoLigandState{Attached: !s.Attached}
}

func (s MonoLigandState) String() string {
	if s.Attached {
		return "attached"
	}
	return "unattached"
}

// MonoLigand is a particle with one ligand that binds and unbinds a receptor.
type MonoLigand struct {
	// ReceptorDensity is the density of receptors relative to particles.
	ReceptorDensity float64
	BindingStrength float64
	OnRate          float64
	OffRate         float64
}

func NewMonoLigand(receptorDensity, bindingStrength, onRate, offRate float64) *MonoLigand {
	return &MonoLigand{
		ReceptorDensity: receptorDensity,
		BindingStrength: bindingStrength,
		OnRate:          onRate,
		OffRate:         offRate,
	}
}

func (p *MonoLigand) NewState() MonoLigandState {
	return MonoLigandState{}
}

func (p *MonoLigand) Events(s MonoLigandState) []dynamo.Event[MonoLigandState] {
	if s.Attached {
		return []dynamo.Event[MonoLigandState]{{
			Rate:       p.OffRate * p.BindingStrength,
			Transition: MonoLigandState.Toggle,
			Label:      "detach",
		}}
	}
	return []dynamo.Event[MonoLigandState]{{
		Rate:       p.OnRate * p.ReceptorDensity * p.BindingStrength,
		Transition: MonoLigandState.Toggle,
		Label:      "attach",
	}}
}

func (p *MonoLigand) States() []MonoLigandState {
	return []MonoLigandState{{Attached: true}, {Attached: false}}
}

func (p *MonoLigand) Validate() error {
	return dynamo.CheckRates(map[string]float64{
		"receptor_density": p.ReceptorDensity,
		"binding_strength": p.BindingStrength,
		"on_rate":          p.OnRate,
		"off_rate":         p.OffRate,
	})
}
