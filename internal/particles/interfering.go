package particles

import (
	"fmt"
	"math"

	"github.com/san-kum/indecision/internal/dynamo"
)

// InterferingState never has Entered and Exited both set.
type InterferingState struct {
	Entered  bool `json:"entered" yaml:"entered"`
	Exited   bool `json:"exited" yaml:"exited"`
	Attached int  `json:"attached" yaml:"attached"`
}

// IsAttached reports whether the particle made it into the host.
func (s InterferingState) IsAttached() bool { return s.Entered }

func (s InterferingState) Enter() InterferingState {
	s.Entered = true
	return s
}

func (s InterferingState) Bind() InterferingState {
	s.Attached++
	return s
}

// Unbind releases a ligand; releasing the last one lets the particle go.
func (s InterferingState) Unbind() InterferingState {
	s.Attached--
	if s.Attached == 0 {
		s.Exited = true
	}
	return s
}

func (s InterferingState) String() string {
	return fmt.Sprintf("{attached:%d entered:%t exited:%t}", s.Attached, s.Entered, s.Exited)
}

// Interfering is a multivalent particle that binds and then enters its host.
// Every bound ligand after the first lowers the entering rate by
// ObstructionFactor.
type Interfering struct {
	TotalLigands      int
	AttachmentRate    float64
	DetachmentRate    float64
	EnterRate         float64
	ObstructionFactor float64
	ReceptorDensity   float64
}

func (p *Interfering) NewState() InterferingState {
	return InterferingState{}
}

func (p *Interfering) FreeLigands(s InterferingState) int {
	return p.TotalLigands - s.Attached
}

func (p *Interfering) IsAbsorbing(s InterferingState) bool {
	return s.Entered || s.Exited
}

func (p *Interfering) Events(s InterferingState) []dynamo.Event[InterferingState] {
	if p.IsAbsorbing(s) {
		return []dynamo.Event[InterferingState]{{Rate: 0, Label: "done"}}
	}

	events := make([]dynamo.Event[InterferingState], 0, 3)
	n := float64(s.Attached)

	if s.Attached > 0 {
		events = append(events,
			dynamo.Event[InterferingState]{
				Rate:       n * p.EnterRate * math.Pow(p.ObstructionFactor, n-1),
				Transition: InterferingState.Enter,
				Label:      "enter",
			},
			dynamo.Event[InterferingState]{
				Rate:       n * p.DetachmentRate,
				Transition: InterferingState.Unbind,
				Label:      "detach",
			},
		)
	}

	events = append(events, dynamo.Event[InterferingState]{
		Rate:       float64(p.FreeLigands(s)) * p.AttachmentRate * p.ReceptorDensity,
		Transition: InterferingState.Bind,
		Label:      "attach",
	})

	return events
}

func (p *Interfering) States() []InterferingState {
	out := make([]InterferingState, 0, 3*(p.TotalLigands+1))
	for attached := 0; attached <= p.TotalLigands; attached++ {
		out = append(out,
			InterferingState{Attached: attached},
			InterferingState{Attached: attached, Entered: true},
			InterferingState{Attached: attached, Exited: true},
		)
	}
	return out
}

func (p *Interfering) Validate() error {
	if p.TotalLigands < 1 {
		return fmt.Errorf("interfering particle needs at least one ligand, got %d", p.TotalLigands)
	}
	return dynamo.CheckRates(map[string]float64{
		"attachment_rate":    p.AttachmentRate,
		"detachment_rate":    p.DetachmentRate,
		"enter_rate":         p.EnterRate,
		"obstruction_factor": p.ObstructionFactor,
		"receptor_density":   p.ReceptorDensity,
	})
}
