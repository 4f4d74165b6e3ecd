package sim

import (
	"context"
	"slices"
	"sort"

	"github.com/san-kum/indecision/internal/dynamo"
)

// Simulation is an ensemble handle that records theta after every tick.
type Simulation[S dynamo.Attacher] struct {
	ens     *Ensemble[S]
	times   []float64
	thetas  []float64
	metrics []Metric
}

// New creates n particles of p and records theta at time zero.
func New[S dynamo.Attacher](p dynamo.Particle[S], n int, opts Options) (*Simulation[S], error) {
	ens, err := NewEnsemble(p, n, opts)
	if err != nil {
		return nil, err
	}
	s := &Simulation[S]{ens: ens}
	s.record()
	return s, nil
}

// AddMetric registers m and replays the theta series recorded so far.
func (s *Simulation[S]) AddMetric(m Metric) {
	m.Reset()
	for i := range s.times {
		m.Observe(s.times[i], s.thetas[i])
	}
	s.metrics = append(s.metrics, m)
}

func (s *Simulation[S]) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Simulation[S]) Ensemble() *Ensemble[S] { return s.ens }
func (s *Simulation[S]) Len() int               { return s.ens.Len() }
func (s *Simulation[S]) Time() float64          { return s.ens.Time() }
func (s *Simulation[S]) Steps() int             { return s.ens.Steps() }

// States returns a copy of the current states.
func (s *Simulation[S]) States() []S {
	return Clone(s.ens.States())
}

// AdvanceUntil mutates the ensemble in place up to simulated time t.
func (s *Simulation[S]) AdvanceUntil(t float64) error {
	return s.AdvanceUntilContext(context.Background(), t)
}

// AdvanceUntilContext is AdvanceUntil with cancellation between ticks.
func (s *Simulation[S]) AdvanceUntilContext(ctx context.Context, t float64) error {
	for s.ens.Time() < t {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.tick(t); err != nil {
			return err
		}
	}
	return nil
}

// AdvanceUntilConverged ticks until d reports that the per-particle
// attachment distribution settled, or until maxTime. The snapshot at the
// current time is the first one fed to d.
func (s *Simulation[S]) AdvanceUntilConverged(ctx context.Context, d Detector, maxTime float64) (bool, error) {
	if d.HasConverged(Indicators(s.ens.States())) {
		return true, nil
	}
	for s.ens.Time() < maxTime {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		if err := s.tick(maxTime); err != nil {
			return false, err
		}
		if d.HasConverged(Indicators(s.ens.States())) {
			return true, nil
		}
	}
	return false, nil
}

// Thetas returns samples theta values evenly spaced over [0, Time()).
func (s *Simulation[S]) Thetas(samples int) []float64 {
	if samples <= 0 {
		return nil
	}
	step := s.Time() / float64(samples)
	out := make([]float64, samples)
	for i := range out {
		out[i] = s.ThetaAt(float64(i) * step)
	}
	return out
}

// ThetaAt is the recorded theta at the last tick at or before t. Times
// before zero give the initial value.
func (s *Simulation[S]) ThetaAt(t float64) float64 {
	eps := 1e-9 * max(1, t)
	i := sort.SearchFloat64s(s.times, t+eps)
	if i == 0 {
		return s.thetas[0]
	}
	return s.thetas[i-1]
}

// LastTheta is the fraction bound at the current time.
func (s *Simulation[S]) LastTheta() float64 {
	return s.thetas[len(s.thetas)-1]
}

// History returns copies of the recorded tick times and thetas.
func (s *Simulation[S]) History() ([]float64, []float64) {
	return slices.Clone(s.times), slices.Clone(s.thetas)
}

func (s *Simulation[S]) tick(limit float64) error {
	next := s.ens.Time() + s.ens.Dt()
	if next > limit {
		next = limit
	}
	if err := s.ens.advanceTo(next); err != nil {
		return err
	}
	s.record()
	return nil
}

func (s *Simulation[S]) record() {
	t, theta := s.ens.Time(), Theta(s.ens.States())
	s.times = append(s.times, t)
	s.thetas = append(s.thetas, theta)
	for _, m := range s.metrics {
		m.Observe(t, theta)
	}
}
