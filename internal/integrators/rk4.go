package integrators

import (
	"math"

	"github.com/san-kum/varode/internal/ode"
)

// RK4 is the classical fixed-step fourth-order Runge-Kutta integrator.
type RK4 struct {
	stepControl
	step float64

	k1, k2, k3, k4 []float64
	yTmp           []float64
	yNext          []float64
	yDotNext       []float64
	interp         HermiteInterpolator
}

func NewRK4(step float64) *RK4 {
	return &RK4{step: math.Abs(step)}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.yTmp = make([]float64, n)
		r.yNext = make([]float64, n)
		r.yDotNext = make([]float64, n)
	}
}

func (r *RK4) Integrate(f ode.Func, t0 float64, z0 []float64, t float64, z []float64) (float64, error) {
	n := len(z0)
	if err := ode.CheckDimension("output state", n, len(z)); err != nil {
		return t0, err
	}
	copy(z, z0)
	if t == t0 {
		return t0, nil
	}

	r.ensureScratch(n)
	r.resetHandlers()
	gPrev := r.initEvents(t0, z)

	h := math.Copysign(r.step, t-t0)
	tCur := t0
	if err := f(tCur, z, r.k1); err != nil {
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

		// k1 holds f at the step start, either from initialization or
		// reused from the end of the previous step.
		for i := 0; i < n; i++ {
			r.yTmp[i] = z[i] + hStep*0.5*r.k1[i]
		}
		if err := f(tCur+hStep*0.5, r.yTmp, r.k2); err != nil {
			return tCur, err
		}
		for i := 0; i < n; i++ {
			r.yTmp[i] = z[i] + hStep*0.5*r.k2[i]
		}
		if err := f(tCur+hStep*0.5, r.yTmp, r.k3); err != nil {
			return tCur, err
		}
		for i := 0; i < n; i++ {
			r.yTmp[i] = z[i] + hStep*r.k3[i]
		}
		if err := f(tNext, r.yTmp, r.k4); err != nil {
			return tCur, err
		}

		h6 := hStep / 6.0
		for i := 0; i < n; i++ {
			r.yNext[i] = z[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
		}
		if err := f(tNext, r.yNext, r.yDotNext); err != nil {
			return tCur, err
		}

		r.interp.reload(tCur, tNext, z, r.k1, r.yNext, r.yDotNext)

		if stopT, stopped, err := r.detectEvent(&r.interp, gPrev); err != nil {
			return tCur, err
		} else if stopped {
			if err := r.interp.truncate(stopT); err != nil {
				return tCur, err
			}
			if err := r.notifyHandlers(&r.interp, true); err != nil {
				return tCur, err
			}
			copy(z, r.interp.y1)
			return stopT, nil
		}

		if err := r.notifyHandlers(&r.interp, isLast); err != nil {
			return tCur, err
		}

		copy(z, r.yNext)
		copy(r.k1, r.yDotNext)
		tCur = tNext
		if isLast {
			return tCur, nil
		}
	}
}
