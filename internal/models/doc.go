// Package models provides named parameterized ODEs with default states and
// parameters for CLI runs:
//
//   - [Exponential]: scalar growth y' = p·y, analytic Jacobians
//   - [VanDerPol]: Van der Pol oscillator with μ parameter, analytic Jacobians
//   - [Pendulum]: damped pendulum, no analytic Jacobians
//
// Models without analytic Jacobians run through the finite-difference
// wrapper; [Get] returns a fresh instance by name.
package models
