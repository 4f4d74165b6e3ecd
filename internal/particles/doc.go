// Package particles provides concrete particle models for the simulator.
//
// Every model implements [dynamo.MarkovChain] over its own state type:
//
//   - [MonoLigand]: a single ligand toggling between bound and unbound
//   - [MultiLigand]: a birth-death chain over the number of bound ligands
//   - [Interfering]: multivalent binding where bound ligands obstruct entry
//   - [Fatiguing]: like Interfering, but released ligands become fatigued
//
// Specifications are immutable values; share one across a whole ensemble.
package particles
