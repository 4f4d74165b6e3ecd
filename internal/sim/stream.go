package sim

import (
	"iter"

	"github.com/san-kum/indecision/internal/dynamo"
)

// Stream is the lazy snapshot sequence of an ensemble. The first pull yields
// the initial snapshot; every later pull advances one tick. It never ends
// and cannot be restarted.
type Stream[S, O any] struct {
	ens     *Ensemble[S]
	extract Extractor[S, O]
	started bool
}

func NewStream[S, O any](ens *Ensemble[S], extract Extractor[S, O]) *Stream[S, O] {
	return &Stream[S, O]{ens: ens, extract: extract}
}

// Simulate creates n particles of p and returns their snapshot stream.
func Simulate[S, O any](p dynamo.Particle[S], n int, extract Extractor[S, O], opts Options) (*Stream[S, O], error) {
	ens, err := NewEnsemble(p, n, opts)
	if err != nil {
		return nil, err
	}
	return NewStream(ens, extract), nil
}

// Snapshots is Simulate with copies of the raw states as output.
func Snapshots[S any](p dynamo.Particle[S], n int, opts Options) (*Stream[S, []S], error) {
	return Simulate[S, []S](p, n, Clone[S], opts)
}

func (s *Stream[S, O]) Ensemble() *Ensemble[S] { return s.ens }
func (s *Stream[S, O]) Time() float64          { return s.ens.Time() }

// Next produces the next element of the sequence.
func (s *Stream[S, O]) Next() (O, error) {
	if !s.started {
		s.started = true
		return s.extract(s.ens.States()), nil
	}
	if err := s.ens.Step(); err != nil {
		var zero O
		return zero, err
	}
	return s.extract(s.ens.States()), nil
}

// All ranges over the stream. Iteration stops after yielding an error.
func (s *Stream[S, O]) All() iter.Seq2[O, error] {
	return func(yield func(O, error) bool) {
		for {
			out, err := s.Next()
			if !yield(out, err) || err != nil {
				return
			}
		}
	}
}

// AdvanceUntil drains the stream until its time reaches t and returns a
// copy of the final states.
func AdvanceUntil[S, O any](s *Stream[S, O], t float64) ([]S, error) {
	if _, err := Last(s, t); err != nil {
		return nil, err
	}
	return Clone(s.ens.States()), nil
}

// Last drains the stream until its time reaches t and returns only the
// final extracted value. At least one element is pulled.
func Last[S, O any](s *Stream[S, O], t float64) (O, error) {
	out, err := s.Next()
	for err == nil && s.Time() < t {
		out, err = s.Next()
	}
	return out, err
}

// Take pulls the next n elements.
func Take[S, O any](s *Stream[S, O], n int) ([]O, error) {
	return Sample(s, n, 1)
}

// Sample pulls n elements keeping one every stride pulls, the first one
// included.
func Sample[S, O any](s *Stream[S, O], n, stride int) ([]O, error) {
	if stride < 1 {
		stride = 1
	}
	out := make([]O, 0, max(n, 0))
	for pulled := 0; len(out) < n; pulled++ {
		v, err := s.Next()
		if err != nil {
			return out, err
		}
		if pulled%stride == 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// Convergence is the outcome of UntilConverged.
type Convergence struct {
	Converged bool
	Steps     int
	Time      float64
	Last      []float64
}

// UntilConverged feeds snapshots to d until it reports convergence or
// maxSteps elements were pulled. maxSteps <= 0 means no bound.
func UntilConverged[S any](s *Stream[S, []float64], d Detector, maxSteps int) (Convergence, error) {
	var res Convergence
	for maxSteps <= 0 || res.Steps < maxSteps {
		snapshot, err := s.Next()
		if err != nil {
			return res, err
		}
		res.Steps++
		res.Time = s.Time()
		res.Last = snapshot
		if d.HasConverged(snapshot) {
			res.Converged = true
			return res, nil
		}
	}
	return res, nil
}
