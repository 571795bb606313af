// Package variational integrates an ODE together with its variational
// equations, propagating the Jacobians of the solution with respect to the
// initial state (dy/dy0) and to free parameters (dy/dp).
//
// The ODE problem of dimension n with k parameters is reformulated as a
// single flat system of dimension n(1+n+k) holding the state and both
// Jacobian blocks, which any base [ode.Integrator] can solve without
// knowing anything about Jacobians. ODEs that cannot provide analytic
// Jacobians are adapted with [FiniteDifferenceJacobians].
//
//	base := integrators.NewDormandPrince54(1e-10)
//	vi := variational.New(base, model)
//	y := make([]float64, n)
//	dYdY0 := ...  // n×n
//	dYdP := ...   // n×k
//	stop, err := vi.Integrate(t0, y0, dY0dP, t1, y, dYdY0, dYdP)
//
// Step handlers added through [Integrator.AddStepHandler] observe each
// accepted step through an [Interpolator] exposing interpolated state,
// state derivative and both Jacobian blocks; snapshots can be persisted
// with [Interpolator.MarshalBinaryTo] and restored with [ReadSnapshot].
//
// Nothing in this package is safe for concurrent use: parameter slots on
// the ODE are mutated during finite-difference evaluation and scratch
// buffers are reused across callbacks within one Integrate call.
package variational
