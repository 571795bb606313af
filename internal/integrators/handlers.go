package integrators

import (
	"math"

	"github.com/san-kum/varode/internal/ode"
)

// stepControl carries the step handler and event handler registries shared
// by all integrators in this package.
type stepControl struct {
	handlers []ode.StepHandler
	events   []ode.EventHandler
}

func (c *stepControl) AddStepHandler(h ode.StepHandler) {
	c.handlers = append(c.handlers, h)
}

func (c *stepControl) StepHandlers() []ode.StepHandler {
	out := make([]ode.StepHandler, len(c.handlers))
	copy(out, c.handlers)
	return out
}

func (c *stepControl) ClearStepHandlers() {
	c.handlers = nil
}

func (c *stepControl) AddEventHandler(h ode.EventHandler) {
	c.events = append(c.events, h)
}

func (c *stepControl) resetHandlers() {
	for _, h := range c.handlers {
		h.Reset()
	}
}

func (c *stepControl) notifyHandlers(interp ode.StepInterpolator, isLast bool) error {
	for _, h := range c.handlers {
		if err := h.HandleStep(interp, isLast); err != nil {
			return err
		}
	}
	return nil
}

func (c *stepControl) initEvents(t float64, y []float64) []float64 {
	if len(c.events) == 0 {
		return nil
	}
	g := make([]float64, len(c.events))
	for i, ev := range c.events {
		g[i] = ev.G(t, y)
	}
	return g
}

// detectEvent scans the accepted step for sign changes of the event
// functions. It returns the earliest stopping event time within the step,
// if any, and updates gPrev with the end-of-step values for the events that
// did not stop the run.
func (c *stepControl) detectEvent(interp *HermiteInterpolator, gPrev []float64) (float64, bool, error) {
	if len(c.events) == 0 {
		return 0, false, nil
	}

	t1 := interp.CurrentTime()
	interp.SetInterpolatedTime(t1)
	yEnd, err := interp.InterpolatedState()
	if err != nil {
		return 0, false, err
	}

	stopT := math.NaN()
	stopped := false
	for i, ev := range c.events {
		g1 := ev.G(t1, yEnd)
		// a zero exactly at the step end is a crossing too, as long as the
		// step started off the root
		if gPrev[i]*g1 < 0 || (g1 == 0 && gPrev[i] != 0) {
			te := t1
			if g1 != 0 {
				var err error
				te, err = bisectRoot(interp, ev, interp.PreviousTime(), t1)
				if err != nil {
					return 0, false, err
				}
			}
			if ev.Action() == ode.StopIntegration {
				if !stopped || beforeInDirection(te, stopT, interp.IsForward()) {
					stopT = te
					stopped = true
				}
				continue
			}
		}
		gPrev[i] = g1
	}
	return stopT, stopped, nil
}

func beforeInDirection(a, b float64, forward bool) bool {
	if forward {
		return a < b
	}
	return a > b
}

// bisectRoot locates a zero of the event function on the dense output of the
// current step, assuming a sign change between ta and tb.
func bisectRoot(interp *HermiteInterpolator, ev ode.EventHandler, ta, tb float64) (float64, error) {
	interp.SetInterpolatedTime(ta)
	ya, err := interp.InterpolatedState()
	if err != nil {
		return 0, err
	}
	ga := ev.G(ta, ya)

	for i := 0; i < 64 && math.Abs(tb-ta) > 1e-14*math.Max(1, math.Abs(tb)); i++ {
		tm := 0.5 * (ta + tb)
		interp.SetInterpolatedTime(tm)
		ym, err := interp.InterpolatedState()
		if err != nil {
			return 0, err
		}
		gm := ev.G(tm, ym)
		if ga*gm <= 0 {
			tb = tm
		} else {
			ta = tm
			ga = gm
		}
	}
	return 0.5 * (ta + tb), nil
}
