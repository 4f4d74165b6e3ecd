package metrics

import "math"

// Stability is the fraction of samples whose theta lies within Tolerance of
// Target, typically the analytic steady state. Samples before Warmup are
// ignored.
type Stability struct {
	name      string
	target    float64
	tolerance float64
	warmup    float64
	inside    int
	samples   int
}

func NewStability(target, tolerance, warmup float64) *Stability {
	return &Stability{
		name:      "stability",
		target:    target,
		tolerance: tolerance,
		warmup:    warmup,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(t, theta float64) {
	if t < s.warmup {
		return
	}
	s.samples++
	if math.Abs(theta-s.target) <= s.tolerance {
		s.inside++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.inside) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.inside = 0
	s.samples = 0
}
