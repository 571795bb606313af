package variational

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/varode/internal/integrators"
	"github.com/san-kum/varode/internal/ode"
)

// doubling is y' = 2y with analytic Jacobians and no parameters, so
// dy/dy0 at time t is exactly e^(2t).
type doubling struct {
	calls int
}

func (d *doubling) Dimension() int      { return 1 }
func (d *doubling) ParameterCount() int { return 0 }

func (d *doubling) ComputeDerivatives(t float64, y, yDot []float64) error {
	d.calls++
	yDot[0] = 2 * y[0]
	return nil
}

func (d *doubling) SetParameter(i int, value float64) {}

func (d *doubling) ComputeJacobians(t float64, y, yDot []float64, dFdY, dFdP [][]float64) error {
	dFdY[0][0] = 2
	return nil
}

func TestIntegrateChecksDimensionsFirst(t *testing.T) {
	g := NewWithT(t)

	eqs := &doubling{}
	v := New(integrators.NewRK4(0.1), eqs)

	y := make([]float64, 1)
	dYdY0 := newMatrix(1, 1)

	_, err := v.Integrate(0, []float64{1, 2}, nil, 1, y, dYdY0, nil)
	g.Expect(err).To(MatchError(ode.ErrDimensionMismatch))
	g.Expect(eqs.calls).To(BeZero(), "derivatives must not be evaluated before validation")

	_, err = v.Integrate(0, []float64{1}, nil, 1, y, newMatrix(2, 1), nil)
	g.Expect(err).To(MatchError(ode.ErrDimensionMismatch))
	g.Expect(eqs.calls).To(BeZero())
}

func TestIntegratePropagatesStateJacobian(t *testing.T) {
	g := NewWithT(t)

	v := New(integrators.NewDormandPrince54(1e-10), &doubling{})

	y := make([]float64, 1)
	dYdY0 := newMatrix(1, 1)
	stop, err := v.Integrate(0, []float64{3}, nil, 1, y, dYdY0, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stop).To(Equal(1.0))

	// y(1) = 3·e², dy/dy0(1) = e²
	g.Expect(y[0]).To(BeNumerically("~", 3*math.Exp(2), 1e-6))
	g.Expect(dYdY0[0][0]).To(BeNumerically("~", math.Exp(2), 1e-6))
}

func TestIntegratePropagatesParameterJacobian(t *testing.T) {
	g := NewWithT(t)

	// y' = p·y with p = 1: dy/dp at t = 1 is t·e^t = e
	eqs := &expParam{p: 1}
	v, err := NewFiniteDifferences(integrators.NewDormandPrince54(1e-10), eqs,
		[]float64{1}, []float64{1e-7}, []float64{1e-7})
	g.Expect(err).NotTo(HaveOccurred())

	y := make([]float64, 1)
	dYdY0 := newMatrix(1, 1)
	dYdP := newMatrix(1, 1)
	_, err = v.Integrate(0, []float64{1}, newMatrix(1, 1), 1, y, dYdY0, dYdP)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(y[0]).To(BeNumerically("~", math.E, 1e-5))
	g.Expect(dYdY0[0][0]).To(BeNumerically("~", math.E, 1e-5))
	g.Expect(dYdP[0][0]).To(BeNumerically("~", math.E, 1e-5))
}

func TestIntegrateSeedsInitialParameterSensitivity(t *testing.T) {
	g := NewWithT(t)

	// a nonzero dY0dP seed flows through the chain rule: for y' = p·y,
	// dy/dp(t) = e^(p·t)·(dy0/dp + y0·t)
	eqs := &expParam{p: 1}
	v, err := NewFiniteDifferences(integrators.NewDormandPrince54(1e-10), eqs,
		[]float64{1}, []float64{1e-7}, []float64{1e-7})
	g.Expect(err).NotTo(HaveOccurred())

	y := make([]float64, 1)
	dYdY0 := newMatrix(1, 1)
	dYdP := newMatrix(1, 1)
	seed := [][]float64{{0.5}}
	_, err = v.Integrate(0, []float64{1}, seed, 1, y, dYdY0, dYdP)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(dYdP[0][0]).To(BeNumerically("~", math.E*1.5, 1e-4))
}

// collector records the final Jacobian view delivered to a step handler.
type collector struct {
	lastDy0 float64
	steps   int
	last    bool
}

func (c *collector) HandleStep(interp *Interpolator, isLast bool) error {
	c.steps++
	if isLast {
		c.last = true
	}
	interp.SetInterpolatedTime(interp.CurrentTime())
	dydy0, err := interp.InterpolatedDyDy0()
	if err != nil {
		return err
	}
	c.lastDy0 = dydy0[0][0]
	return nil
}

func (c *collector) RequiresDenseOutput() bool { return true }
func (c *collector) Reset()                    {}

func TestStepHandlerSeesJacobianViews(t *testing.T) {
	g := NewWithT(t)

	v := New(integrators.NewRK4(0.05), &doubling{})
	c := &collector{}
	v.AddStepHandler(c)

	y := make([]float64, 1)
	dYdY0 := newMatrix(1, 1)
	_, err := v.Integrate(0, []float64{1}, nil, 1, y, dYdY0, nil)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(c.steps).To(Equal(20))
	g.Expect(c.last).To(BeTrue())
	g.Expect(c.lastDy0).To(BeNumerically("~", math.Exp(2), 1e-4))
}

type plainHandler struct{}

func (plainHandler) HandleStep(interp ode.StepInterpolator, isLast bool) error { return nil }
func (plainHandler) RequiresDenseOutput() bool                                 { return false }
func (plainHandler) Reset()                                                    {}

func TestHandlerBookkeepingIgnoresBaseHandlers(t *testing.T) {
	g := NewWithT(t)

	base := integrators.NewRK4(0.1)
	raw := plainHandler{}
	base.AddStepHandler(raw)

	v := New(base, &doubling{})
	c1 := &collector{}
	c2 := &collector{}
	v.AddStepHandler(c1)
	v.AddStepHandler(c2)

	handlers := v.StepHandlers()
	g.Expect(handlers).To(HaveLen(2))
	g.Expect(handlers[0]).To(BeIdenticalTo(StepHandler(c1)))
	g.Expect(handlers[1]).To(BeIdenticalTo(StepHandler(c2)))

	v.ClearStepHandlers()
	g.Expect(v.StepHandlers()).To(BeEmpty())
	g.Expect(base.StepHandlers()).To(HaveLen(1), "handlers registered on the base integrator must survive")
}

type timeEvent struct {
	at float64
}

func (e *timeEvent) G(t float64, y []float64) float64 { return t - e.at }
func (e *timeEvent) Action() ode.EventAction          { return ode.StopIntegration }

func TestEventStopTimePassthrough(t *testing.T) {
	g := NewWithT(t)

	v := New(integrators.NewDormandPrince54(1e-10), &doubling{})
	v.AddEventHandler(&timeEvent{at: 0.5})

	y := make([]float64, 1)
	dYdY0 := newMatrix(1, 1)
	stop, err := v.Integrate(0, []float64{1}, nil, 1, y, dYdY0, nil)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(stop).To(BeNumerically("~", 0.5, 1e-8))
	g.Expect(y[0]).To(BeNumerically("~", math.E, 1e-4))
	g.Expect(dYdY0[0][0]).To(BeNumerically("~", math.E, 1e-4))
}

func TestIntegrateOutputAliasesInput(t *testing.T) {
	g := NewWithT(t)

	v := New(integrators.NewDormandPrince54(1e-10), &doubling{})

	y := []float64{2}
	dYdY0 := newMatrix(1, 1)
	_, err := v.Integrate(0, y, nil, 0.5, y, dYdY0, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(y[0]).To(BeNumerically("~", 2*math.E, 1e-6))
}
