package sim

import (
	"fmt"
	"math"
)

const DefaultDt = 0.1

// Options configures an ensemble.
type Options struct {
	Seed uint64
	// Dt is the observation tick; zero means DefaultDt.
	Dt float64
	// Workers partitions each tick across goroutines; values below 2 step
	// sequentially.
	Workers int
}

func DefaultOptions() Options {
	return Options{Dt: DefaultDt, Workers: 1}
}

func (o Options) normalize() (Options, error) {
	if o.Dt == 0 {
		o.Dt = DefaultDt
	}
	if o.Dt < 0 || math.IsNaN(o.Dt) || math.IsInf(o.Dt, 0) {
		return o, fmt.Errorf("dt must be positive and finite, got %f", o.Dt)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o, nil
}

// Extractor maps a snapshot of the ensemble to an observable. The states
// slice is only valid for the duration of the call.
type Extractor[S, O any] func(states []S) O

// Metric observes the theta series of a simulation.
type Metric interface {
	Name() string
	Observe(t, theta float64)
	Value() float64
	Reset()
}

// Detector decides when a stream of per-particle observations has settled.
type Detector interface {
	HasConverged(snapshot []float64) bool
}
