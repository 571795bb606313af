package variational

import "github.com/san-kum/varode/internal/ode"

// StepHandler is the Jacobian-aware counterpart of ode.StepHandler: it
// receives an Interpolator exposing the state and both Jacobian blocks
// instead of the raw augmented vector.
type StepHandler interface {
	HandleStep(interp *Interpolator, isLast bool) error
	RequiresDenseOutput() bool
	Reset()
}

// handlerAdapter makes a Jacobian-aware handler look like a plain step
// handler to the base integrator. The concrete type doubles as the marker
// distinguishing facade-added handlers from handlers registered directly on
// the base integrator.
type handlerAdapter struct {
	handler StepHandler
	lay     layout
}

func (a *handlerAdapter) HandleStep(interp ode.StepInterpolator, isLast bool) error {
	return a.handler.HandleStep(newInterpolator(interp, a.lay), isLast)
}

func (a *handlerAdapter) RequiresDenseOutput() bool { return a.handler.RequiresDenseOutput() }

func (a *handlerAdapter) Reset() { a.handler.Reset() }
