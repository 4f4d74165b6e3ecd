// Package dynamo provides core primitives for stochastic particle simulation.
//
// A particle is a small continuous-time Markov chain. The package defines the
// contract every particle model implements and the exact single-particle step
// used by the ensemble driver:
//
//   - [Event]: a rate plus a state transition
//   - [Particle]: maps a state to its competing events
//   - [MarkovChain]: a particle with an enumerable state space
//   - [Advance]: one Gillespie step (waiting time + event selection)
//   - [EventProbabilities]: normalized outgoing probabilities of a state
//
// # Example
//
//	p := particles.NewMonoLigand(1.0, 1.0, 1.0, 1.0)
//	rng := rand.New(rand.NewPCG(1, 2))
//	s := p.NewState()
//	dt, err := dynamo.Advance(p, &s, rng)
//
// # Thread Safety
//
// Particle specifications are immutable after construction and may be shared
// by any number of goroutines. States are plain values owned by their caller.
package dynamo
