package models

import "math"

// Pendulum is a damped pendulum with the damping coefficient as its
// parameter. It provides no analytic Jacobians, so sensitivity runs go
// through the finite-difference wrapper.
// State: [θ, ω]
// Equations:
//
//	dθ/dt = ω
//	dω/dt = -(g/L)·sin(θ) - b·ω
type Pendulum struct {
	Length  float64
	Gravity float64
	damping float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Length:  1.0,
		Gravity: 9.81,
		damping: 0.1,
	}
}

func (p *Pendulum) Name() string { return "pendulum" }

func (p *Pendulum) Dimension() int      { return 2 }
func (p *Pendulum) ParameterCount() int { return 1 }

func (p *Pendulum) DefaultState() []float64      { return []float64{0.5, 0.0} }
func (p *Pendulum) DefaultParameters() []float64 { return []float64{p.damping} }

func (p *Pendulum) ComputeDerivatives(t float64, y, yDot []float64) error {
	theta, omega := y[0], y[1]
	yDot[0] = omega
	yDot[1] = -(p.Gravity/p.Length)*math.Sin(theta) - p.damping*omega
	return nil
}

func (p *Pendulum) SetParameter(i int, value float64) {
	if i == 0 {
		p.damping = value
	}
}
