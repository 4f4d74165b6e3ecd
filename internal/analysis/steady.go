package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/indecision/internal/dynamo"
	"github.com/san-kum/indecision/internal/particles"
)

var ErrNoSteadyState = errors.New("analysis: chain has no unique steady state")

// SteadyStateTheta returns the long-run fraction of attached particles for
// models with a closed form.
func SteadyStateTheta(p any) (float64, error) {
	switch m := p.(type) {
	case *particles.MonoLigand:
		pair := particles.RatePair{
			On:  m.OnRate * m.ReceptorDensity * m.BindingStrength,
			Off: m.OffRate * m.BindingStrength,
		}
		return birthDeathTheta([]particles.RatePair{pair})
	case *particles.MultiLigand:
		return birthDeathTheta(m.Rates)
	default:
		return 0, fmt.Errorf("no closed-form steady state for %T", p)
	}
}

// BirthDeath returns the stationary probability of each bound count of a
// birth-death chain with the given rates. Counts unreachable from zero get
// probability zero.
func BirthDeath(rates []particles.RatePair) ([]float64, error) {
	pi := make([]float64, len(rates)+1)

	top := len(rates)
	for c, r := range rates {
		if r.On == 0 {
			top = c
			break
		}
	}
	// Levels below an irreversible binding step are transient.
	base := 0
	for c := 0; c < top; c++ {
		if rates[c].Off == 0 {
			base = c + 1
		}
	}

	pi[base] = 1
	sum := 1.0
	for c := base; c < top; c++ {
		pi[c+1] = pi[c] * rates[c].On / rates[c].Off
		sum += pi[c+1]
	}
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return nil, fmt.Errorf("%w: weights overflow", ErrNoSteadyState)
	}
	for c := range pi {
		pi[c] /= sum
	}
	return pi, nil
}

func birthDeathTheta(rates []particles.RatePair) (float64, error) {
	for _, r := range rates {
		if err := dynamo.CheckRates(map[string]float64{"on": r.On, "off": r.Off}); err != nil {
			return 0, err
		}
	}
	pi, err := BirthDeath(rates)
	if err != nil {
		return 0, err
	}
	return 1 - pi[0], nil
}

// Stationary solves pi Q = 0 with sum(pi) = 1 for the generator of p
// restricted to states. Every transition out of a listed state must land on
// a listed state. Chains that are not irreducible return ErrNoSteadyState.
func Stationary[S comparable](p dynamo.Particle[S], states []S) (map[S]float64, error) {
	n := len(states)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty state space", ErrNoSteadyState)
	}

	index := make(map[S]int, n)
	for i, s := range states {
		index[s] = i
	}

	// a is Q transposed with the last row replaced by ones.
	a := mat.NewDense(n, n, nil)
	for i, s := range states {
		for _, e := range p.Events(s) {
			if e.Rate == 0 {
				continue
			}
			j, ok := index[e.Apply(s)]
			if !ok {
				return nil, fmt.Errorf("transition %q from %v leaves the state space", e.Label, s)
			}
			if i == j {
				continue
			}
			a.Set(j, i, a.At(j, i)+e.Rate)
			a.Set(i, i, a.At(i, i)-e.Rate)
		}
	}
	for j := 0; j < n; j++ {
		a.Set(n-1, j, 1)
	}
	b := mat.NewVecDense(n, nil)
	b.SetVec(n-1, 1)

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSteadyState, err)
	}

	out := make(map[S]float64, n)
	for i, s := range states {
		v := x.AtVec(i)
		if v < -1e-9 || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: negative probability for %v", ErrNoSteadyState, s)
		}
		out[s] = max(v, 0)
	}
	return out, nil
}
