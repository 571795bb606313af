package models

// VanDerPol implements the Van der Pol oscillator with the nonlinearity μ
// as its parameter.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
type VanDerPol struct {
	mu float64
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{
		mu: 1.0, // Classic value for limit cycle
	}
}

func (v *VanDerPol) Name() string { return "vanderpol" }

func (v *VanDerPol) Dimension() int      { return 2 }
func (v *VanDerPol) ParameterCount() int { return 1 }

func (v *VanDerPol) DefaultState() []float64      { return []float64{2.0, 0.0} }
func (v *VanDerPol) DefaultParameters() []float64 { return []float64{v.mu} }

func (v *VanDerPol) ComputeDerivatives(t float64, y, yDot []float64) error {
	x, w := y[0], y[1]
	yDot[0] = w
	yDot[1] = v.mu*(1-x*x)*w - x
	return nil
}

func (v *VanDerPol) SetParameter(i int, value float64) {
	if i == 0 {
		v.mu = value
	}
}

func (v *VanDerPol) ComputeJacobians(t float64, y, yDot []float64, dFdY, dFdP [][]float64) error {
	x, w := y[0], y[1]
	dFdY[0][0] = 0
	dFdY[0][1] = 1
	dFdY[1][0] = -2*v.mu*x*w - 1
	dFdY[1][1] = v.mu * (1 - x*x)
	dFdP[0][0] = 0
	dFdP[1][0] = (1 - x*x) * w
	return nil
}
