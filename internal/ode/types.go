package ode

import "io"

// Func is the right hand side of a first-order system y' = f(t, y).
// It fills yDot in place; y must not be retained after the call returns.
type Func func(t float64, y, yDot []float64) error

// ParameterizedODE is a first-order differential equation with free
// parameters. Parameters are mutable slots on the ODE instance: SetParameter
// changes the equation for every subsequent derivative evaluation. One
// instance must not be shared between concurrent integrations.
type ParameterizedODE interface {
	// Dimension returns the state dimension n.
	Dimension() int

	// ParameterCount returns the number of free parameters k (may be 0).
	ParameterCount() int

	// ComputeDerivatives evaluates f(t, y) into yDot (length n).
	ComputeDerivatives(t float64, y, yDot []float64) error

	// SetParameter sets parameter i to the given value.
	SetParameter(i int, value float64)
}

// WithJacobians is a ParameterizedODE that can also compute the partial
// derivatives of f with respect to state and parameters.
type WithJacobians interface {
	ParameterizedODE

	// ComputeJacobians fills dFdY (n rows of n) and dFdP (n rows of k) with
	// df_i/dy_j and df_i/dp_j at (t, y). yDot holds f(t, y), already
	// evaluated by the caller.
	ComputeJacobians(t float64, y, yDot []float64, dFdY, dFdP [][]float64) error
}

// Integrator solves an initial value problem over a single flat state
// vector. It knows nothing about Jacobians or augmented systems.
type Integrator interface {
	// Integrate advances z0 from t0 to t, writing the final state into z
	// (z may alias z0). It returns the stop time, which differs from t only
	// when an event handler terminated the run early.
	Integrate(f Func, t0 float64, z0 []float64, t float64, z []float64) (float64, error)

	AddStepHandler(h StepHandler)
	StepHandlers() []StepHandler
	ClearStepHandlers()

	AddEventHandler(h EventHandler)
}

// StepHandler is called once per accepted integration step.
type StepHandler interface {
	HandleStep(interp StepInterpolator, isLast bool) error

	// RequiresDenseOutput reports whether the handler queries the
	// interpolator at times other than the step endpoints.
	RequiresDenseOutput() bool

	// Reset is called at the start of each integration.
	Reset()
}

// StepInterpolator gives continuous access to the solution inside one
// accepted step. It is only valid until the next step unless copied.
type StepInterpolator interface {
	SetInterpolatedTime(t float64)
	InterpolatedTime() float64

	// InterpolatedState returns the state vector at the interpolated time.
	// The returned slice is reused between calls.
	InterpolatedState() ([]float64, error)

	// InterpolatedDerivatives returns the state derivative at the
	// interpolated time. The returned slice is reused between calls.
	InterpolatedDerivatives() ([]float64, error)

	PreviousTime() float64
	CurrentTime() float64
	IsForward() bool

	// Copy returns a deep copy with an independent lifetime.
	Copy() (StepInterpolator, error)

	// MarshalBinaryTo and UnmarshalBinaryFrom stream the interpolator in a
	// fixed binary layout so snapshots can be persisted and restored.
	MarshalBinaryTo(w io.Writer) error
	UnmarshalBinaryFrom(r io.Reader) error
}

// EventAction tells the integrator what to do when an event fires.
type EventAction int

const (
	// ContinueIntegration records the event and keeps going.
	ContinueIntegration EventAction = iota
	// StopIntegration terminates the run at the event time.
	StopIntegration
)

// EventHandler watches for a sign change of G along the solution. When G
// crosses zero within an accepted step, the integrator locates the crossing
// on the dense output and applies the handler's action.
type EventHandler interface {
	G(t float64, y []float64) float64
	Action() EventAction
}
