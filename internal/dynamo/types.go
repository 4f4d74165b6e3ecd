package dynamo

// Event is a transition that happens at some rate.
//
// A nil Transition leaves the state unchanged, which is how a model exposes a
// nominal self-loop.
type Event[S any] struct {
	// Rate is the number of times per unit time this event occurs.
	Rate       float64
	Transition func(S) S
	Label      string
}

// Apply returns the state after the event.
func (e Event[S]) Apply(s S) S {
	if e.Transition == nil {
		return s
	}
	return e.Transition(s)
}

// Particle is the contract every particle model implements.
//
// Events must be a pure function of the state and every returned rate must be
// non-negative. It is called fresh for every advance.
type Particle[S any] interface {
	Events(state S) []Event[S]
	NewState() S
}

// MarkovChain is a particle whose state space can be enumerated.
type MarkovChain[S any] interface {
	Particle[S]
	States() []S
}

// Attacher is implemented by states that count as bound for theta.
type Attacher interface {
	IsAttached() bool
}

// Absorber is implemented by particles with intentional terminal states.
// The ensemble stops scheduling a particle once it reports absorbing instead
// of failing with ErrZeroRate.
type Absorber[S any] interface {
	IsAbsorbing(state S) bool
}

// Validator is implemented by particle specifications that can check their
// parameters at construction.
type Validator interface {
	Validate() error
}

// Rand is the random source used by Advance. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
}

// EventProbability is the normalized probability of one outgoing event.
type EventProbability[S any] struct {
	Label       string
	Target      S
	Probability float64
}
