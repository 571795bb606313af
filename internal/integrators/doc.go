// Package integrators provides single-state initial value problem solvers
// implementing [ode.Integrator]:
//
//   - [Euler]: explicit first order, fixed step
//   - [RK4]: classical fourth-order Runge-Kutta, fixed step
//   - [DormandPrince54]: embedded 5(4) pair with adaptive step control
//
// All integrators hand a [HermiteInterpolator] to their step handlers for
// dense output inside each accepted step, and locate stop events by
// bisection on that dense output. Scratch buffers are reused across steps,
// so one integrator instance must not run concurrent integrations.
package integrators
