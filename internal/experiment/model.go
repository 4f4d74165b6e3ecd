package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/indecision/internal/analysis"
	"github.com/san-kum/indecision/internal/dynamo"
	"github.com/san-kum/indecision/internal/sim"
)

// Model is a particle specification with its state type erased, so the
// registry and the CLI can handle every particle kind alike.
type Model interface {
	Name() string
	Particle() any
	Simulate(n int, opts sim.Options) (Run, error)
	Describe() ([]StateInfo, error)
	// SteadyState is the analytic long-run theta, if the model has one.
	SteadyState() (float64, error)
}

// Run is a simulation in progress.
type Run interface {
	AdvanceUntil(ctx context.Context, t float64) error
	AdvanceUntilConverged(ctx context.Context, d sim.Detector, maxTime float64) (bool, error)
	AddMetric(m sim.Metric)
	Metrics() map[string]float64
	Thetas(samples int) []float64
	History() ([]float64, []float64)
	LastTheta() float64
	Occupancy() []StateCount
	Time() float64
	Steps() int
	Len() int
}

// StateCount is analysis.StateCount with the state rendered as text.
type StateCount struct {
	State    string  `json:"state"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

// StateInfo describes one state of a model and where it can go next.
type StateInfo struct {
	State      string      `json:"state"`
	Attached   bool        `json:"attached"`
	Absorbing  bool        `json:"absorbing"`
	// Stationary is the long-run probability of the state, nil when the
	// chain has no unique steady state.
	Stationary *float64    `json:"stationary,omitempty"`
	Events     []EventInfo `json:"events,omitempty"`
}

type EventInfo struct {
	Label       string  `json:"label"`
	Target      string  `json:"target"`
	Probability float64 `json:"probability"`
}

type particleState interface {
	comparable
	dynamo.Attacher
}

type enumerable[S any] interface {
	dynamo.Particle[S]
	States() []S
}

type model[S particleState] struct {
	name string
	p    enumerable[S]
}

func newModel[S particleState](name string, p enumerable[S]) *model[S] {
	return &model[S]{name: name, p: p}
}

func (m *model[S]) Name() string  { return m.name }
func (m *model[S]) Particle() any { return m.p }

func (m *model[S]) Simulate(n int, opts sim.Options) (Run, error) {
	s, err := sim.New[S](m.p, n, opts)
	if err != nil {
		return nil, err
	}
	return &run[S]{Simulation: s}, nil
}

func (m *model[S]) Describe() ([]StateInfo, error) {
	states := m.p.States()
	pi, err := analysis.Stationary[S](m.p, states)
	if err != nil && !errors.Is(err, analysis.ErrNoSteadyState) {
		return nil, err
	}

	out := make([]StateInfo, 0, len(states))
	for _, s := range states {
		info := StateInfo{State: fmt.Sprint(s), Attached: s.IsAttached()}
		if p, ok := pi[s]; ok {
			info.Stationary = &p
		}

		probs, err := dynamo.EventProbabilities[S](m.p, s)
		switch {
		case errors.Is(err, dynamo.ErrAbsorbingState), errors.Is(err, dynamo.ErrZeroRate):
			info.Absorbing = true
		case err != nil:
			return nil, fmt.Errorf("state %v: %w", s, err)
		}

		for _, pr := range probs {
			info.Events = append(info.Events, EventInfo{
				Label:       pr.Label,
				Target:      fmt.Sprint(pr.Target),
				Probability: pr.Probability,
			})
		}
		out = append(out, info)
	}
	return out, nil
}

func (m *model[S]) SteadyState() (float64, error) {
	return analysis.SteadyStateTheta(m.p)
}

type run[S particleState] struct {
	*sim.Simulation[S]
}

func (r *run[S]) AdvanceUntil(ctx context.Context, t float64) error {
	return r.AdvanceUntilContext(ctx, t)
}

func (r *run[S]) Occupancy() []StateCount {
	counts := analysis.Occupancy(r.States())
	out := make([]StateCount, len(counts))
	for i, c := range counts {
		out[i] = StateCount{State: fmt.Sprint(c.State), Count: c.Count, Fraction: c.Fraction}
	}
	return out
}
