package particles

import (
	"fmt"
	"strconv"

	"github.com/san-kum/indecision/internal/dynamo"
)

// RatePair holds the rates between c and c+1 bound ligands.
type RatePair struct {
	On  float64 `json:"on" yaml:"on"`
	Off float64 `json:"off" yaml:"off"`
}

// MultiLigandState counts bound ligands, always within [0, K].
type MultiLigandState struct {
	Attached int `json:"attached" yaml:"attached"`
}

func (s MultiLigandState) IsAttached() bool { return s.Attached > 0 }

func (s MultiLigandState) Bind() MultiLigandState {
	return MultiLigandState{Attached: s.Attached + 1}
}

func (s MultiLigandState) Unbind() MultiLigandState {
	return MultiLigandState{Attached: s.Attached - 1}
}

func (s MultiLigandState) String() string {
	return strconv.Itoa(s.Attached)
}

// MultiLigand is a particle with K ligands, each binding in turn.
//
// Rates[c] holds the on rate c -> c+1 and the off rate c+1 -> c.
type MultiLigand struct {
	Rates []RatePair
}

func NewMultiLigand(rates ...RatePair) *MultiLigand {
	return &MultiLigand{Rates: append([]RatePair(nil), rates...)}
}

// NewMultiLigandFromSlices pairs up separate on and off rate tables.
func NewMultiLigandFromSlices(on, off []float64) (*MultiLigand, error) {
	if len(on) != len(off) {
		return nil, fmt.Errorf("on rates (%d) and off rates (%d) must have the same length", len(on), len(off))
	}
	rates := make([]RatePair, len(on))
	for i := range on {
		rates[i] = RatePair{On: on[i], Off: off[i]}
	}
	return &MultiLigand{Rates: rates}, nil
}

// TotalLigands is K.
func (p *MultiLigand) TotalLigands() int {
	return len(p.Rates)
}

func (p *MultiLigand) NewState() MultiLigandState {
	return MultiLigandState{}
}

func (p *MultiLigand) Events(s MultiLigandState) []dynamo.Event[MultiLigandState] {
	events := make([]dynamo.Event[MultiLigandState], 0, 2)

	if s.Attached < len(p.Rates) {
		events = append(events, dynamo.Event[MultiLigandState]{
			Rate:       p.Rates[s.Attached].On,
			Transition: MultiLigandState.Bind,
			Label:      "attach",
		})
	}

	if s.Attached > 0 {
		events = append(events, dynamo.Event[MultiLigandState]{
			Rate:       p.Rates[s.Attached-1].Off,
			Transition: MultiLigandState.Unbind,
			Label:      "detach",
		})
	}

	return events
}

func (p *MultiLigand) States() []MultiLigandState {
	out := make([]MultiLigandState, 0, len(p.Rates)+1)
	for c := 0; c <= len(p.Rates); c++ {
		out = append(out, MultiLigandState{Attached: c})
	}
	return out
}

func (p *MultiLigand) Validate() error {
	if len(p.Rates) == 0 {
		return fmt.Errorf("multi-ligand particle needs at least one rate pair")
	}
	for i, r := range p.Rates {
		if err := dynamo.CheckRates(map[string]float64{
			fmt.Sprintf("rates[%d].on", i):  r.On,
			fmt.Sprintf("rates[%d].off", i): r.Off,
		}); err != nil {
			return err
		}
	}
	return nil
}
