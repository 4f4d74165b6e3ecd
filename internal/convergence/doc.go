// Package convergence decides when a simulated ensemble has reached its
// stationary regime by comparing the empirical distribution of consecutive
// windows of per-particle observations.
package convergence
