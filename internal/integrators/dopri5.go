package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/varode/internal/ode"
)

// Dormand-Prince 5(4) coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DormandPrince54 is an adaptive embedded Runge-Kutta 5(4) integrator with
// error-based step size control.
type DormandPrince54 struct {
	stepControl
	tol      float64
	initStep float64
	minStep  float64
	maxSteps int

	safety   float64
	minScale float64
	maxScale float64

	k1, k2, k3, k4, k5, k6, k7 []float64
	yTmp                       []float64
	yNew                       []float64
	interp                     HermiteInterpolator
}

func NewDormandPrince54(tol float64) *DormandPrince54 {
	return &DormandPrince54{
		tol:      tol,
		minStep:  1e-12,
		maxSteps: 1_000_000,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// SetInitialStep overrides the automatic first step size guess.
func (d *DormandPrince54) SetInitialStep(h float64) { d.initStep = math.Abs(h) }

func (d *DormandPrince54) ensureScratch(n int) {
	if len(d.k1) != n {
		d.k1 = make([]float64, n)
		d.k2 = make([]float64, n)
		d.k3 = make([]float64, n)
		d.k4 = make([]float64, n)
		d.k5 = make([]float64, n)
		d.k6 = make([]float64, n)
		d.k7 = make([]float64, n)
		d.yTmp = make([]float64, n)
		d.yNew = make([]float64, n)
	}
}

func (d *DormandPrince54) Integrate(f ode.Func, t0 float64, z0 []float64, t float64, z []float64) (float64, error) {
	n := len(z0)
	if err := ode.CheckDimension("output state", n, len(z)); err != nil {
		return t0, err
	}
	copy(z, z0)
	if t == t0 {
		return t0, nil
	}

	d.ensureScratch(n)
	d.resetHandlers()
	gPrev := d.initEvents(t0, z)

	span := t - t0
	h0 := d.initStep
	if h0 == 0 {
		h0 = math.Abs(span) / 100
	}
	h := math.Copysign(math.Min(h0, math.Abs(span)), span)
	tCur := t0

	if err := f(tCur, z, d.k1); err != nil {
		return tCur, err
	}

	for steps := 0; ; steps++ {
		if steps >= d.maxSteps {
			return tCur, fmt.Errorf("%w: %d steps from t=%g toward t=%g", ode.ErrMaxStepsExceeded, steps, t0, t)
		}

		remaining := t - tCur
		isLast := false
		if math.Abs(remaining) <= math.Abs(h) {
			h = remaining
			isLast = true
		}

		for i := 0; i < n; i++ {
			d.yTmp[i] = z[i] + h*b21*d.k1[i]
		}
		if err := f(tCur+a2*h, d.yTmp, d.k2); err != nil {
			return tCur, err
		}
		for i := 0; i < n; i++ {
			d.yTmp[i] = z[i] + h*(b31*d.k1[i]+b32*d.k2[i])
		}
		if err := f(tCur+a3*h, d.yTmp, d.k3); err != nil {
			return tCur, err
		}
		for i := 0; i < n; i++ {
			d.yTmp[i] = z[i] + h*(b41*d.k1[i]+b42*d.k2[i]+b43*d.k3[i])
		}
		if err := f(tCur+a4*h, d.yTmp, d.k4); err != nil {
			return tCur, err
		}
		for i := 0; i < n; i++ {
			d.yTmp[i] = z[i] + h*(b51*d.k1[i]+b52*d.k2[i]+b53*d.k3[i]+b54*d.k4[i])
		}
		if err := f(tCur+a5*h, d.yTmp, d.k5); err != nil {
			return tCur, err
		}
		for i := 0; i < n; i++ {
			d.yTmp[i] = z[i] + h*(b61*d.k1[i]+b62*d.k2[i]+b63*d.k3[i]+b64*d.k4[i]+b65*d.k5[i])
		}
		if err := f(tCur+h, d.yTmp, d.k6); err != nil {
			return tCur, err
		}
		for i := 0; i < n; i++ {
			d.yNew[i] = z[i] + h*(c1*d.k1[i]+c3*d.k3[i]+c4*d.k4[i]+c5*d.k5[i]+c6*d.k6[i])
		}
		if err := f(tCur+h, d.yNew, d.k7); err != nil {
			return tCur, err
		}

		errMax := 0.0
		for i := 0; i < n; i++ {
			errEst := h * (dc1*d.k1[i] + dc3*d.k3[i] + dc4*d.k4[i] + dc5*d.k5[i] + dc6*d.k6[i] + dc7*d.k7[i])
			scale := math.Abs(z[i]) + math.Abs(h*d.k1[i]) + 1e-10
			errMax = math.Max(errMax, math.Abs(errEst)/scale)
		}
		errRatio := errMax / d.tol

		if errRatio > 1 {
			// reject and retry with a smaller step
			scale := math.Max(d.minScale, d.safety*math.Pow(errRatio, -0.25))
			h *= scale
			if math.Abs(h) < d.minStep {
				return tCur, fmt.Errorf("%w: %g at t=%g", ode.ErrStepTooSmall, h, tCur)
			}
			continue
		}

		tNext := tCur + h
		d.interp.reload(tCur, tNext, z, d.k1, d.yNew, d.k7)

		if stopT, stopped, err := d.detectEvent(&d.interp, gPrev); err != nil {
			return tCur, err
		} else if stopped {
			if err := d.interp.truncate(stopT); err != nil {
				return tCur, err
			}
			if err := d.notifyHandlers(&d.interp, true); err != nil {
				return tCur, err
			}
			copy(z, d.interp.y1)
			return stopT, nil
		}

		if err := d.notifyHandlers(&d.interp, isLast); err != nil {
			return tCur, err
		}

		copy(z, d.yNew)
		copy(d.k1, d.k7) // first-same-as-last
		tCur = tNext
		if isLast {
			return tCur, nil
		}

		if errRatio > 0 {
			h *= math.Min(d.maxScale, d.safety*math.Pow(errRatio, -0.2))
		} else {
			h *= d.maxScale
		}
	}
}
