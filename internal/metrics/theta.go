package metrics

import (
	"fmt"
	"math"
	"slices"
)

// MeanTheta is the average bound fraction over the observed samples.
type MeanTheta struct {
	name    string
	sum     float64
	samples int
}

func NewMeanTheta() *MeanTheta {
	return &MeanTheta{
		name: "mean_theta",
	}
}

func (m *MeanTheta) Name() string { return m.name }

func (m *MeanTheta) Observe(t, theta float64) {
	m.sum += theta
	m.samples++
}

func (m *MeanTheta) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTheta) Reset() {
	m.sum = 0
	m.samples = 0
}

// PeakTheta tracks the largest bound fraction and when it was first seen.
type PeakTheta struct {
	name    string
	peak    float64
	at      float64
	samples int
}

func NewPeakTheta() *PeakTheta {
	return &PeakTheta{
		name: "peak_theta",
	}
}

func (p *PeakTheta) Name() string { return p.name }

func (p *PeakTheta) Observe(t, theta float64) {
	if p.samples == 0 || theta > p.peak {
		p.peak = theta
		p.at = t
	}
	p.samples++
}

func (p *PeakTheta) Value() float64 { return p.peak }

// At returns the time of the peak.
func (p *PeakTheta) At() float64 { return p.at }

func (p *PeakTheta) Reset() {
	p.peak = 0
	p.at = 0
	p.samples = 0
}

// ThetaStdDev is the sample standard deviation of theta, accumulated with
// Welford's update.
type ThetaStdDev struct {
	name    string
	mean    float64
	m2      float64
	samples int
}

func NewThetaStdDev() *ThetaStdDev {
	return &ThetaStdDev{
		name: "theta_stddev",
	}
}

func (s *ThetaStdDev) Name() string { return s.name }

func (s *ThetaStdDev) Observe(t, theta float64) {
	s.samples++
	delta := theta - s.mean
	s.mean += delta / float64(s.samples)
	s.m2 += delta * (theta - s.mean)
}

func (s *ThetaStdDev) Value() float64 {
	if s.samples < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.samples-1))
}

func (s *ThetaStdDev) Reset() {
	s.mean = 0
	s.m2 = 0
	s.samples = 0
}

var constructors = map[string]func() Metric{
	"mean_theta":   func() Metric { return NewMeanTheta() },
	"peak_theta":   func() Metric { return NewPeakTheta() },
	"theta_stddev": func() Metric { return NewThetaStdDev() },
}

// Metric observes the theta series of a run. It matches sim.Metric.
type Metric interface {
	Name() string
	Observe(t, theta float64)
	Value() float64
	Reset()
}

func New(name string) (Metric, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Defaults returns a fresh instance of every named metric.
func Defaults() []Metric {
	out := make([]Metric, 0, len(constructors))
	for _, name := range Names() {
		out = append(out, constructors[name]())
	}
	return out
}
