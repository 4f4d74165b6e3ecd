// Package analysis provides exact results and sweep helpers for particle
// models.
//
//   - [SteadyStateTheta]: analytic long-run bound fraction for mono and
//     multi-ligand particles
//   - [Stationary]: numerical stationary distribution of any finite chain
//   - [Linspace], [Logspace]: parameter grids for sweeps
//   - [Occupancy]: how many particles sit in each state of a snapshot
//
// # Checking a simulation
//
//	want, _ := analysis.SteadyStateTheta(p)
//	s, _ := sim.New[particles.MonoLigandState](p, 100000, sim.Options{Seed: 1})
//	_ = s.AdvanceUntil(100)
//	fmt.Println(s.LastTheta(), want)
package analysis
