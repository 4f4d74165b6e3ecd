package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/san-kum/indecision/internal/dynamo"
)

// Ensemble holds N independent particles of one specification.
//
// For every index i, next[i] becomes the effective state at nextTime[i].
// A particle in an absorbing state has nextTime[i] = +Inf.
type Ensemble[S any] struct {
	particle dynamo.Particle[S]
	absorber dynamo.Absorber[S]

	current  []S
	next     []S
	nextTime []float64
	rngs     []*rand.Rand

	time    float64
	dt      float64
	steps   int
	workers int
	err     error
}

// NewEnsemble creates n particles in their ground state and schedules the
// first transition of each one.
func NewEnsemble[S any](p dynamo.Particle[S], n int, opts Options) (*Ensemble[S], error) {
	if n < 0 {
		return nil, fmt.Errorf("number of particles must be non-negative, got %d", n)
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if v, ok := p.(dynamo.Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid particle: %w", err)
		}
	}

	e := &Ensemble[S]{
		particle: p,
		current:  make([]S, n),
		next:     make([]S, n),
		nextTime: make([]float64, n),
		rngs:     make([]*rand.Rand, n),
		dt:       opts.Dt,
		workers:  opts.Workers,
	}
	e.absorber, _ = p.(dynamo.Absorber[S])

	seeds := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	ground := p.NewState()
	for i := range e.current {
		e.current[i] = ground
		e.next[i] = ground
		e.rngs[i] = rand.New(rand.NewPCG(seeds.Uint64(), seeds.Uint64()))
	}

	if err := e.forEach(func(i int) error { return e.schedule(i, 0) }); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Ensemble[S]) Len() int                     { return len(e.current) }
func (e *Ensemble[S]) Time() float64                { return e.time }
func (e *Ensemble[S]) Dt() float64                  { return e.dt }
func (e *Ensemble[S]) Steps() int                   { return e.steps }
func (e *Ensemble[S]) Particle() dynamo.Particle[S] { return e.particle }

// States returns the current states. The slice is owned by the ensemble and
// changes on the next step; copy it to keep it.
func (e *Ensemble[S]) States() []S {
	return e.current
}

// Pending returns the scheduled next state of particle i and when it
// takes effect.
func (e *Ensemble[S]) Pending(i int) (S, float64) {
	return e.next[i], e.nextTime[i]
}

// Step moves the time cursor forward by one tick.
func (e *Ensemble[S]) Step() error {
	return e.advanceTo(e.time + e.dt)
}

// AdvanceUntil steps in ticks of Dt until the cursor reaches t. The last
// tick is shortened so the cursor lands exactly on t.
func (e *Ensemble[S]) AdvanceUntil(t float64) error {
	for e.time < t {
		next := e.time + e.dt
		if next > t {
			next = t
		}
		if err := e.advanceTo(next); err != nil {
			return err
		}
	}
	return nil
}

// advanceTo applies every transition due at or before t. A particle may
// transition several times inside one tick.
func (e *Ensemble[S]) advanceTo(t float64) error {
	if e.err != nil {
		return e.err
	}

	err := e.forEach(func(i int) error {
		for e.nextTime[i] <= t {
			e.current[i] = e.next[i]
			if err := e.schedule(i, e.nextTime[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		e.err = err
		return err
	}

	e.time = t
	e.steps++
	return nil
}

// schedule draws the transition that follows current[i], starting at from.
// next[i] must equal current[i] on entry.
func (e *Ensemble[S]) schedule(i int, from float64) error {
	if e.absorber != nil && e.absorber.IsAbsorbing(e.next[i]) {
		e.nextTime[i] = math.Inf(1)
		return nil
	}

	dt, err := dynamo.Advance(e.particle, &e.next[i], e.rngs[i])
	if err != nil {
		return &dynamo.ParticleError{Index: i, Time: from, State: e.current[i], Wrapped: err}
	}
	e.nextTime[i] = from + dt
	return nil
}

// forEach runs fn for every particle and returns the error of the lowest
// failing index.
func (e *Ensemble[S]) forEach(fn func(i int) error) error {
	n := len(e.current)
	if e.workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		mu       sync.Mutex
		first    error
		firstIdx = n
	)
	ParallelFor(n, minChunk, e.workers, func(start, end int) {
		for i := start; i < end; i++ {
			if err := fn(i); err != nil {
				mu.Lock()
				if i < firstIdx {
					first, firstIdx = err, i
				}
				mu.Unlock()
				return
			}
		}
	})
	return first
}
