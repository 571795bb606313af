// Package ode defines the contracts shared by the integration stack:
//
//   - [ParameterizedODE]: a first-order system y' = f(t, y) with free
//     parameters, with or without analytic Jacobians ([WithJacobians])
//   - [Integrator]: a single-state initial value problem solver
//   - [StepHandler] and [StepInterpolator]: per-step dense output
//   - [EventHandler]: early termination on a zero crossing
//
// Concrete integrators live in the integrators package; the variational
// package builds Jacobian propagation on top of any [Integrator].
//
// # Thread Safety
//
// ParameterizedODE instances carry mutable parameter slots and integrators
// reuse scratch buffers, so neither is safe for concurrent use.
package ode
