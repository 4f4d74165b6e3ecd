package particles

import (
	"fmt"
	"math"

	"github.com/san-kum/indecision/internal/dynamo"
)

// FatiguingState never has Entered and Exited both set, and
// Attached+Fatigued never exceeds the particle's ligand count.
type FatiguingState struct {
	Entered  bool `json:"entered" yaml:"entered"`
	Exited   bool `json:"exited" yaml:"exited"`
	Attached int  `json:"attached" yaml:"attached"`
	Fatigued int  `json:"fatigued" yaml:"fatigued"`
}

func (s FatiguingState) IsAttached() bool { return s.Entered }

func (s FatiguingState) Enter() FatiguingState {
	s.Entered = true
	return s
}

func (s FatiguingState) BindRegular() FatiguingState {
	s.Attached++
	return s
}

func (s FatiguingState) BindFatigued() FatiguingState {
	s.Attached++
	s.Fatigued--
	return s
}

// Unbind fatigues the released ligand, unless it was the last one holding
// the particle.
func (s FatiguingState) Unbind() FatiguingState {
	if s.Attached == 1 {
		s.Attached = 0
		s.Exited = true
		return s
	}
	s.Attached--
	s.Fatigued++
	return s
}

func (s FatiguingState) String() string {
	return fmt.Sprintf("{attached:%d fatigued:%d entered:%t exited:%t}", s.Attached, s.Fatigued, s.Entered, s.Exited)
}

// Fatiguing models ligands that, once released, rebind at a much lower
// rate. Particles can then slowly detach and explore other hosts.
type Fatiguing struct {
	TotalLigands           int
	AttachmentRate         float64
	FatiguedAttachmentRate float64
	DetachmentRate         float64
	EnterRate              float64
	// InitialCollisionFactor scales the first bond relative to the rest.
	InitialCollisionFactor    float64
	ObstructionFactor         float64
	FatiguedObstructionFactor float64
	ReceptorDensity           float64
}

func (p *Fatiguing) NewState() FatiguingState {
	return FatiguingState{}
}

func (p *Fatiguing) FreeLigands(s FatiguingState) int {
	return p.TotalLigands - s.Fatigued - s.Attached
}

func (p *Fatiguing) IsAbsorbing(s FatiguingState) bool {
	return s.Entered || s.Exited
}

func (p *Fatiguing) Events(s FatiguingState) []dynamo.Event[FatiguingState] {
	if p.IsAbsorbing(s) {
		return []dynamo.Event[FatiguingState]{{Rate: 0, Label: "done"}}
	}

	events := make([]dynamo.Event[FatiguingState], 0, 4)
	n := float64(s.Attached)

	if s.Attached > 0 {
		events = append(events,
			dynamo.Event[FatiguingState]{
				Rate: n * p.EnterRate *
					math.Pow(p.ObstructionFactor, n-1) *
					math.Pow(p.FatiguedObstructionFactor, float64(s.Fatigued)),
				Transition: FatiguingState.Enter,
				Label:      "enter",
			},
			dynamo.Event[FatiguingState]{
				Rate:       n * p.DetachmentRate,
				Transition: FatiguingState.Unbind,
				Label:      "detach",
			},
		)
	}

	collision := 1.0
	if s.Attached == 0 {
		collision = p.InitialCollisionFactor
	}

	events = append(events, dynamo.Event[FatiguingState]{
		Rate:       float64(p.FreeLigands(s)) * p.AttachmentRate * p.ReceptorDensity * collision,
		Transition: FatiguingState.BindRegular,
		Label:      "attach",
	})

	if s.Fatigued > 0 {
		events = append(events, dynamo.Event[FatiguingState]{
			Rate:       float64(s.Fatigued) * p.FatiguedAttachmentRate * p.ReceptorDensity * collision,
			Transition: FatiguingState.BindFatigued,
			Label:      "attach fatigued",
		})
	}

	return events
}

// States enumerates the triangle Attached+Fatigued <= TotalLigands for each
// of the free, entered and exited flags.
func (p *Fatiguing) States() []FatiguingState {
	k := p.TotalLigands
	out := make([]FatiguingState, 0, 3*(k+1)*(k+2)/2)
	for attached := 0; attached <= k; attached++ {
		for fatigued := 0; fatigued <= k-attached; fatigued++ {
			base := FatiguingState{Attached: attached, Fatigued: fatigued}
			out = append(out, base, base.Enter())
			base.Exited = true
			out = append(out, base)
		}
	}
	return out
}

func (p *Fatiguing) Validate() error {
	if p.TotalLigands < 1 {
		return fmt.Errorf("fatiguing particle needs at least one ligand, got %d", p.TotalLigands)
	}
	return dynamo.CheckRates(map[string]float64{
		"attachment_rate":             p.AttachmentRate,
		"fatigued_attachment_rate":    p.FatiguedAttachmentRate,
		"detachment_rate":             p.DetachmentRate,
		"enter_rate":                  p.EnterRate,
		"initial_collision_factor":    p.InitialCollisionFactor,
		"obstruction_factor":          p.ObstructionFactor,
		"fatigued_obstruction_factor": p.FatiguedObstructionFactor,
		"receptor_density":            p.ReceptorDensity,
	})
}
