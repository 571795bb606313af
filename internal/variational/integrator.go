package variational

import "github.com/san-kum/varode/internal/ode"

// Integrator drives a base single-state integrator over the augmented
// system formed by an ODE and its variational equations, propagating the
// state together with its Jacobians with respect to initial state and
// parameters.
//
// An Integrator is not safe for concurrent use: the augmented derivative
// function and the wrapped ODE share scratch buffers and parameter slots.
type Integrator struct {
	base ode.Integrator
	eqs  ode.WithJacobians
	lay  layout
}

// New builds an Integrator for an ODE that computes its own Jacobians.
func New(base ode.Integrator, eqs ode.WithJacobians) *Integrator {
	return &Integrator{
		base: base,
		eqs:  eqs,
		lay:  layout{n: eqs.Dimension(), k: eqs.ParameterCount()},
	}
}

// NewFiniteDifferences builds an Integrator for a plain ODE, estimating the
// Jacobians by forward differences with the given parameter values and
// perturbation sizes (see FiniteDifferenceJacobians).
func NewFiniteDifferences(base ode.Integrator, eqs ode.ParameterizedODE, p, hY, hP []float64) (*Integrator, error) {
	wrapped, err := NewFiniteDifferenceJacobians(eqs, p, hY, hP)
	if err != nil {
		return nil, err
	}
	return New(base, wrapped), nil
}

// Integrate solves the initial value problem from t0 to t and propagates
// the sensitivities alongside it.
//
// y0 is the initial state (length n) and dY0dP the initial sensitivity of
// the state to the parameters (n rows of k; ignored and may be nil when
// k == 0). The results are written into y (length n), dYdY0 (n×n) and dYdP
// (n×k, untouched when k == 0); y may be the same slice as y0. The returned
// stop time equals t unless an event handler on the base integrator
// terminated the run early.
func (v *Integrator) Integrate(t0 float64, y0 []float64, dY0dP [][]float64, t float64, y []float64, dYdY0, dYdP [][]float64) (float64, error) {
	n, k := v.lay.n, v.lay.k
	if err := ode.CheckDimension("initial state y0", n, len(y0)); err != nil {
		return t0, err
	}
	if err := ode.CheckDimension("output state y", n, len(y)); err != nil {
		return t0, err
	}
	if err := checkMatrix("output dYdY0", n, n, dYdY0); err != nil {
		return t0, err
	}
	if k != 0 {
		if err := checkMatrix("initial sensitivity dY0dP", n, k, dY0dP); err != nil {
			return t0, err
		}
		if err := checkMatrix("output dYdP", n, k, dYdP); err != nil {
			return t0, err
		}
	}

	z := v.lay.initialState(y0, dY0dP)
	stopTime, err := v.base.Integrate(v.lay.derivative(v.eqs), t0, z, t, z)
	if err != nil {
		return stopTime, err
	}

	v.lay.dispatch(z, y, dYdY0, dYdP)
	return stopTime, nil
}

// AddStepHandler registers a Jacobian-aware step handler. The handler is
// wrapped so that it sees sliced (y, dy/dy0, dy/dp) views instead of the
// raw augmented vector.
func (v *Integrator) AddStepHandler(h StepHandler) {
	v.base.AddStepHandler(&handlerAdapter{handler: h, lay: v.lay})
}

// StepHandlers returns the handlers added through AddStepHandler, in
// insertion order. Handlers registered directly on the base integrator by
// other code are not reported.
func (v *Integrator) StepHandlers() []StepHandler {
	var out []StepHandler
	for _, h := range v.base.StepHandlers() {
		if a, ok := h.(*handlerAdapter); ok {
			out = append(out, a.handler)
		}
	}
	return out
}

// ClearStepHandlers removes the handlers added through AddStepHandler,
// leaving any handler registered directly on the base integrator in place.
func (v *Integrator) ClearStepHandlers() {
	var others []ode.StepHandler
	for _, h := range v.base.StepHandlers() {
		if _, ok := h.(*handlerAdapter); !ok {
			others = append(others, h)
		}
	}
	v.base.ClearStepHandlers()
	for _, h := range others {
		v.base.AddStepHandler(h)
	}
}

// AddEventHandler registers an event handler directly on the base
// integrator. Event semantics are owned by the base integrator and passed
// through unchanged.
func (v *Integrator) AddEventHandler(h ode.EventHandler) {
	v.base.AddEventHandler(h)
}

func checkMatrix(quantity string, rows, cols int, m [][]float64) error {
	if err := ode.CheckDimension(quantity+" rows", rows, len(m)); err != nil {
		return err
	}
	for i := range m {
		if err := ode.CheckDimension(quantity+" columns", cols, len(m[i])); err != nil {
			return err
		}
	}
	return nil
}
