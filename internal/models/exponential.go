package models

// Exponential is the scalar growth equation y' = p·y with the growth rate
// as its single parameter. Analytic solution y(t) = y0·e^{p·t}, with
// dy/dy0 = e^{p·t} and dy/dp = t·y0·e^{p·t}, which makes it the standard
// check for sensitivity propagation.
type Exponential struct {
	Rate float64
}

func NewExponential() *Exponential {
	return &Exponential{Rate: 1.0}
}

func (e *Exponential) Name() string { return "exponential" }

func (e *Exponential) Dimension() int      { return 1 }
func (e *Exponential) ParameterCount() int { return 1 }

func (e *Exponential) DefaultState() []float64      { return []float64{1.0} }
func (e *Exponential) DefaultParameters() []float64 { return []float64{e.Rate} }

func (e *Exponential) ComputeDerivatives(t float64, y, yDot []float64) error {
	yDot[0] = e.Rate * y[0]
	return nil
}

func (e *Exponential) SetParameter(i int, value float64) {
	if i == 0 {
		e.Rate = value
	}
}

func (e *Exponential) ComputeJacobians(t float64, y, yDot []float64, dFdY, dFdP [][]float64) error {
	dFdY[0][0] = e.Rate
	dFdP[0][0] = y[0]
	return nil
}
