package integrators

import (
	"math"

	"github.com/san-kum/varode/internal/ode"
)

// Euler is the explicit first-order integrator. It is mostly useful as a
// reference and for cheap smoke runs; prefer RK4 or DormandPrince54.
type Euler struct {
	stepControl
	step float64

	yDot     []float64
	yNext    []float64
	yDotNext []float64
	interp   HermiteInterpolator
}

func NewEuler(step float64) *Euler {
	return &Euler{step: math.Abs(step)}
}

func (e *Euler) Integrate(f ode.Func, t0 float64, z0 []float64, t float64, z []float64) (float64, error) {
	n := len(z0)
	if err := ode.CheckDimension("output state", n, len(z)); err != nil {
		return t0, err
	}
	copy(z, z0)
	if t == t0 {
		return t0, nil
	}

	if len(e.yDot) != n {
		e.yDot = make([]float64, n)
		e.yNext = make([]float64, n)
		e.yDotNext = make([]float64, n)
	}
	e.resetHandlers()
	gPrev := e.initEvents(t0, z)

	h := math.Copysign(e.step, t-t0)
	tCur := t0
	if err := f(tCur, z, e.yDot); err != nil {
		return tCur, err
	}

	for {
		remaining := t - tCur
		hStep := h
		isLast := false
		if math.Abs(remaining) <= math.Abs(h)*(1+1e-10) {
			hStep = remaining
			isLast = true
		}
		tNext := tCur + hStep

		for i := 0; i < n; i++ {
			e.yNext[i] = z[i] + hStep*e.yDot[i]
		}
		if err := f(tNext, e.yNext, e.yDotNext); err != nil {
			return tCur, err
		}

		e.interp.reload(tCur, tNext, z, e.yDot, e.yNext, e.yDotNext)

		if stopT, stopped, err := e.detectEvent(&e.interp, gPrev); err != nil {
			return tCur, err
		} else if stopped {
			if err := e.interp.truncate(stopT); err != nil {
				return tCur, err
			}
			if err := e.notifyHandlers(&e.interp, true); err != nil {
				return tCur, err
			}
			copy(z, e.interp.y1)
			return stopT, nil
		}

		if err := e.notifyHandlers(&e.interp, isLast); err != nil {
			return tCur, err
		}

		copy(z, e.yNext)
		copy(e.yDot, e.yDotNext)
		tCur = tNext
		if isLast {
			return tCur, nil
		}
	}
}
