// Package sim advances ensembles of independent particles in time.
//
// The driver keeps three parallel slices per ensemble: the current state of
// every particle, its pending next state and the absolute time at which the
// pending state takes over. Only particles whose time has come are touched on
// a tick, so an ensemble of a million particles costs one comparison per
// particle per tick plus one Gillespie step per transition.
//
//   - [Ensemble]: the particle arrays and the time cursor
//   - [Stream]: a lazy, unbounded, pull-based sequence of snapshots
//   - [Simulation]: an ensemble that records theta over time
//
// # Example
//
//	p := particles.NewMonoLigand(1, 1, 1, 1)
//	s, _ := sim.New[particles.MonoLigandState](p, 100000, sim.Options{Seed: 1})
//	_ = s.AdvanceUntil(100)
//	fmt.Println(s.LastTheta())
//
// # Determinism
//
// Every particle draws from its own random stream derived from the seed, so
// a run is reproducible and independent of Options.Workers.
//
// # Thread Safety
//
// Ensembles, streams and simulations are NOT thread-safe. With Workers > 1 a
// tick is split across goroutines internally and joined before it returns.
package sim
