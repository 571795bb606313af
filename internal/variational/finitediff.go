package variational

import "github.com/san-kum/varode/internal/ode"

// FiniteDifferenceJacobians adapts a plain ParameterizedODE into a
// WithJacobians by estimating df/dy and df/dp with forward differences.
//
// Each Jacobian request costs n+k extra evaluations of the right hand side,
// which makes the differencing the dominant cost of a sensitivity run. The
// truncation error is O(h); accuracy is controlled entirely by the caller
// through the hY and hP step sizes, no adaptive selection is performed.
type FiniteDifferenceJacobians struct {
	eqs ode.ParameterizedODE

	p  []float64
	hY []float64
	hP []float64

	tmpDot []float64
}

// NewFiniteDifferenceJacobians wraps eqs. p holds the current parameter
// values (length k), hY the state perturbation sizes (length n) and hP the
// parameter perturbation sizes (length k). The slices are copied.
func NewFiniteDifferenceJacobians(eqs ode.ParameterizedODE, p, hY, hP []float64) (*FiniteDifferenceJacobians, error) {
	n := eqs.Dimension()
	k := eqs.ParameterCount()
	if err := ode.CheckDimension("state step sizes hY", n, len(hY)); err != nil {
		return nil, err
	}
	if err := ode.CheckDimension("parameters p", k, len(p)); err != nil {
		return nil, err
	}
	if err := ode.CheckDimension("parameter step sizes hP", k, len(hP)); err != nil {
		return nil, err
	}
	w := &FiniteDifferenceJacobians{
		eqs:    eqs,
		p:      make([]float64, k),
		hY:     make([]float64, n),
		hP:     make([]float64, k),
		tmpDot: make([]float64, n),
	}
	copy(w.p, p)
	copy(w.hY, hY)
	copy(w.hP, hP)
	return w, nil
}

func (w *FiniteDifferenceJacobians) Dimension() int { return w.eqs.Dimension() }

func (w *FiniteDifferenceJacobians) ParameterCount() int { return w.eqs.ParameterCount() }

func (w *FiniteDifferenceJacobians) ComputeDerivatives(t float64, y, yDot []float64) error {
	return w.eqs.ComputeDerivatives(t, y, yDot)
}

func (w *FiniteDifferenceJacobians) SetParameter(i int, value float64) {
	w.eqs.SetParameter(i, value)
}

// ComputeJacobians estimates both Jacobians by forward differences. Each
// state component is perturbed in place and restored before the next one;
// each parameter slot is perturbed through SetParameter and restored to its
// construction-time value.
func (w *FiniteDifferenceJacobians) ComputeJacobians(t float64, y, yDot []float64, dFdY, dFdP [][]float64) error {
	n := w.eqs.Dimension()
	k := w.eqs.ParameterCount()

	for j := 0; j < n; j++ {
		saved := y[j]
		y[j] += w.hY[j]
		if err := w.eqs.ComputeDerivatives(t, y, w.tmpDot); err != nil {
			y[j] = saved
			return err
		}
		for i := 0; i < n; i++ {
			dFdY[i][j] = (w.tmpDot[i] - yDot[i]) / w.hY[j]
		}
		y[j] = saved
	}

	for j := 0; j < k; j++ {
		w.eqs.SetParameter(j, w.p[j]+w.hP[j])
		err := w.eqs.ComputeDerivatives(t, y, w.tmpDot)
		w.eqs.SetParameter(j, w.p[j])
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dFdP[i][j] = (w.tmpDot[i] - yDot[i]) / w.hP[j]
		}
	}

	return nil
}
