package dynamo

import (
	"math"
)

// Advance performs one exact Gillespie step: it samples the waiting time
// from an exponential with the total outgoing rate, picks an event with
// probability proportional to its rate and applies it to state in place.
//
// The returned elapsed time is always strictly positive.
func Advance[S any](p Particle[S], state *S, rng Rand) (float64, error) {
	events := p.Events(*state)
	total, err := TotalRate(events)
	if err != nil {
		return 0, err
	}

	elapsed := waitingTime(total, rng)
	event := selectEvent(events, rng.Float64()*total)
	*state = event.Apply(*state)

	return elapsed, nil
}

// TotalRate sums the rates of events and checks them.
func TotalRate[S any](events []Event[S]) (float64, error) {
	if len(events) == 0 {
		return 0, ErrAbsorbingState
	}

	total := 0.0
	for _, e := range events {
		if !validRate(e.Rate) {
			return 0, &RateError{Label: e.Label, Rate: e.Rate}
		}
		total += e.Rate
	}

	if math.IsInf(total, 0) {
		return 0, &RateError{Label: "total", Rate: total}
	}
	if total <= 0 {
		return 0, ErrZeroRate
	}
	return total, nil
}

// EventProbabilities returns rate/total for every event of state, in the
// order the particle lists them.
func EventProbabilities[S any](p Particle[S], state S) ([]EventProbability[S], error) {
	events := p.Events(state)
	total, err := TotalRate(events)
	if err != nil {
		return nil, err
	}

	out := make([]EventProbability[S], len(events))
	for i, e := range events {
		out[i] = EventProbability[S]{
			Label:       e.Label,
			Target:      e.Apply(state),
			Probability: e.Rate / total,
		}
	}
	return out, nil
}

// CheckRates returns a RateError for the first negative or non-finite value.
func CheckRates(rates map[string]float64) error {
	for name, r := range rates {
		if !validRate(r) {
			return &RateError{Label: name, Rate: r}
		}
	}
	return nil
}

func validRate(r float64) bool {
	return r >= 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// waitingTime inverts the exponential CDF with u in (0, 1).
func waitingTime(total float64, rng Rand) float64 {
	u := 1 - rng.Float64()
	for u >= 1 {
		u = 1 - rng.Float64()
	}

	dt := -math.Log(u) / total
	if dt <= 0 {
		return math.SmallestNonzeroFloat64
	}
	return dt
}

// selectEvent walks the cumulative rates. If rounding leaves r unmatched the
// last event that can fire is taken.
func selectEvent[S any](events []Event[S], r float64) Event[S] {
	cumulative := 0.0
	for _, e := range events {
		cumulative += e.Rate
		if cumulative > r {
			return e
		}
	}

	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Rate > 0 {
			return events[i]
		}
	}
	return events[len(events)-1]
}
