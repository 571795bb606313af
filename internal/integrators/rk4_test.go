package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/varode/internal/ode"
)

// harmonic oscillator y'' = -y as a first-order system
func oscillator(t float64, y, yDot []float64) error {
	yDot[0] = y[1]
	yDot[1] = -y[0]
	return nil
}

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4(0.01)

	z0 := []float64{1.0, 0.0}
	z := make([]float64, 2)
	stop, err := integ.Integrate(oscillator, 0, z0, 1.0, z)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if stop != 1.0 {
		t.Errorf("expected stop time 1.0, got %g", stop)
	}

	expectedX := math.Cos(1.0)
	expectedV := -math.Sin(1.0)
	if math.Abs(z[0]-expectedX) > 1e-6 {
		t.Errorf("position error too large: got %.8f, expected %.8f", z[0], expectedX)
	}
	if math.Abs(z[1]-expectedV) > 1e-6 {
		t.Errorf("velocity error too large: got %.8f, expected %.8f", z[1], expectedV)
	}
}

func TestRK4Backward(t *testing.T) {
	integ := NewRK4(0.01)

	z0 := []float64{math.Cos(1.0), -math.Sin(1.0)}
	z := make([]float64, 2)
	if _, err := integ.Integrate(oscillator, 1.0, z0, 0, z); err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if math.Abs(z[0]-1.0) > 1e-6 {
		t.Errorf("backward integration: got %.8f, expected 1", z[0])
	}
}

func TestRK4OutputDimensionMismatch(t *testing.T) {
	integ := NewRK4(0.01)
	_, err := integ.Integrate(oscillator, 0, []float64{1, 0}, 1, make([]float64, 3))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

type recordingHandler struct {
	steps   int
	lastSet bool
	resets  int
	dense   bool
	onStep  func(interp ode.StepInterpolator) error
}

func (h *recordingHandler) HandleStep(interp ode.StepInterpolator, isLast bool) error {
	h.steps++
	if isLast {
		h.lastSet = true
	}
	if h.onStep != nil {
		return h.onStep(interp)
	}
	return nil
}

func (h *recordingHandler) RequiresDenseOutput() bool { return h.dense }
func (h *recordingHandler) Reset()                    { h.resets++ }

func TestRK4StepHandler(t *testing.T) {
	integ := NewRK4(0.1)
	handler := &recordingHandler{}
	integ.AddStepHandler(handler)

	z := make([]float64, 2)
	if _, err := integ.Integrate(oscillator, 0, []float64{1, 0}, 1.0, z); err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	if handler.steps != 10 {
		t.Errorf("expected 10 steps, got %d", handler.steps)
	}
	if !handler.lastSet {
		t.Error("isLast never set")
	}
	if handler.resets != 1 {
		t.Errorf("expected 1 reset, got %d", handler.resets)
	}
}

func TestRK4DenseOutput(t *testing.T) {
	integ := NewRK4(0.1)
	handler := &recordingHandler{dense: true}
	handler.onStep = func(interp ode.StepInterpolator) error {
		mid := 0.5 * (interp.PreviousTime() + interp.CurrentTime())
		interp.SetInterpolatedTime(mid)
		y, err := interp.InterpolatedState()
		if err != nil {
			return err
		}
		if got, want := y[0], math.Cos(mid); math.Abs(got-want) > 1e-4 {
			t.Errorf("dense output at t=%.3f: got %.6f, want %.6f", mid, got, want)
		}
		yDot, err := interp.InterpolatedDerivatives()
		if err != nil {
			return err
		}
		if got, want := yDot[0], -math.Sin(mid); math.Abs(got-want) > 1e-3 {
			t.Errorf("dense derivative at t=%.3f: got %.6f, want %.6f", mid, got, want)
		}
		return nil
	}
	integ.AddStepHandler(handler)

	z := make([]float64, 2)
	if _, err := integ.Integrate(oscillator, 0, []float64{1, 0}, 1.0, z); err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
}

type stopEvent struct {
	at float64
}

func (e *stopEvent) G(t float64, y []float64) float64 { return t - e.at }
func (e *stopEvent) Action() ode.EventAction          { return ode.StopIntegration }

func TestRK4EventStop(t *testing.T) {
	integ := NewRK4(0.1)
	integ.AddEventHandler(&stopEvent{at: 0.55})

	z := make([]float64, 2)
	stop, err := integ.Integrate(oscillator, 0, []float64{1, 0}, 1.0, z)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if math.Abs(stop-0.55) > 1e-8 {
		t.Errorf("expected stop at 0.55, got %.10f", stop)
	}
	if math.Abs(z[0]-math.Cos(0.55)) > 1e-4 {
		t.Errorf("state at event: got %.6f, want %.6f", z[0], math.Cos(0.55))
	}
}

func TestRK4EventOnStepBoundary(t *testing.T) {
	// 0.25 is exactly representable, so g hits zero exactly at the first
	// step end rather than changing sign across it
	integ := NewRK4(0.25)
	integ.AddEventHandler(&stopEvent{at: 0.25})

	z := make([]float64, 2)
	stop, err := integ.Integrate(oscillator, 0, []float64{1, 0}, 1.0, z)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if stop != 0.25 {
		t.Errorf("expected stop exactly at 0.25, got %.17g", stop)
	}
	if math.Abs(z[0]-math.Cos(0.25)) > 1e-4 {
		t.Errorf("state at event: got %.6f, want %.6f", z[0], math.Cos(0.25))
	}
}

func TestRK4HandlerBookkeeping(t *testing.T) {
	integ := NewRK4(0.1)
	h1 := &recordingHandler{}
	h2 := &recordingHandler{}
	integ.AddStepHandler(h1)
	integ.AddStepHandler(h2)

	handlers := integ.StepHandlers()
	if len(handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(handlers))
	}
	if handlers[0] != ode.StepHandler(h1) || handlers[1] != ode.StepHandler(h2) {
		t.Error("handlers not returned in insertion order")
	}

	integ.ClearStepHandlers()
	if len(integ.StepHandlers()) != 0 {
		t.Error("handlers not cleared")
	}
}
