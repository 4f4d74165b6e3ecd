package sim

import (
	"slices"

	"github.com/san-kum/indecision/internal/dynamo"
)

// Clone is the default extractor: a copy of the raw states.
func Clone[S any](states []S) []S {
	return slices.Clone(states)
}

// Theta is the fraction of attached particles, 0 for an empty ensemble.
func Theta[S dynamo.Attacher](states []S) float64 {
	if len(states) == 0 {
		return 0
	}
	attached := 0
	for _, s := range states {
		if s.IsAttached() {
			attached++
		}
	}
	return float64(attached) / float64(len(states))
}

// Indicators maps every particle to 1 if attached and 0 otherwise.
func Indicators[S dynamo.Attacher](states []S) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		if s.IsAttached() {
			out[i] = 1
		}
	}
	return out
}

// Project builds an extractor applying f to every particle.
func Project[S any](f func(S) float64) Extractor[S, []float64] {
	return func(states []S) []float64 {
		out := make([]float64, len(states))
		for i, s := range states {
			out[i] = f(s)
		}
		return out
	}
}
