package models

import (
	"math"
	"testing"

	"github.com/san-kum/varode/internal/ode"
	"github.com/san-kum/varode/internal/variational"
)

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, m.Name())
		}
		if len(m.DefaultState()) != m.Dimension() {
			t.Errorf("%s: default state length %d, dimension %d",
				name, len(m.DefaultState()), m.Dimension())
		}
		if len(m.DefaultParameters()) != m.ParameterCount() {
			t.Errorf("%s: default parameters length %d, count %d",
				name, len(m.DefaultParameters()), m.ParameterCount())
		}
	}

	if _, err := Get("lorenz"); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestExponentialJacobians(t *testing.T) {
	m := NewExponential()
	m.SetParameter(0, 2.5)

	y := []float64{3}
	yDot := make([]float64, 1)
	if err := m.ComputeDerivatives(0, y, yDot); err != nil {
		t.Fatal(err)
	}
	if yDot[0] != 7.5 {
		t.Errorf("derivative: got %g, want 7.5", yDot[0])
	}

	dFdY := [][]float64{{0}}
	dFdP := [][]float64{{0}}
	if err := m.ComputeJacobians(0, y, yDot, dFdY, dFdP); err != nil {
		t.Fatal(err)
	}
	if dFdY[0][0] != 2.5 || dFdP[0][0] != 3 {
		t.Errorf("Jacobians: dFdY=%g dFdP=%g, want 2.5 and 3", dFdY[0][0], dFdP[0][0])
	}
}

// analytic Jacobians must agree with forward differences on the same model
func TestVanDerPolJacobiansMatchFiniteDifferences(t *testing.T) {
	analytic := NewVanDerPol()
	analytic.SetParameter(0, 1.5)

	numeric := NewVanDerPol()
	numeric.SetParameter(0, 1.5)
	fd, err := variational.NewFiniteDifferenceJacobians(numeric,
		[]float64{1.5}, []float64{1e-7, 1e-7}, []float64{1e-7})
	if err != nil {
		t.Fatal(err)
	}

	y := []float64{1.3, -0.7}
	yDot := make([]float64, 2)
	if err := analytic.ComputeDerivatives(0, y, yDot); err != nil {
		t.Fatal(err)
	}

	wantY := newMat(2, 2)
	wantP := newMat(2, 1)
	if err := analytic.ComputeJacobians(0, y, yDot, wantY, wantP); err != nil {
		t.Fatal(err)
	}

	gotY := newMat(2, 2)
	gotP := newMat(2, 1)
	if err := fd.ComputeJacobians(0, y, yDot, gotY, gotP); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(gotY[i][j]-wantY[i][j]) > 1e-5 {
				t.Errorf("dFdY[%d][%d]: analytic %g, numeric %g", i, j, wantY[i][j], gotY[i][j])
			}
		}
		if math.Abs(gotP[i][0]-wantP[i][0]) > 1e-5 {
			t.Errorf("dFdP[%d][0]: analytic %g, numeric %g", i, wantP[i][0], gotP[i][0])
		}
	}
}

func TestPendulumHasNoAnalyticJacobians(t *testing.T) {
	var m Model = NewPendulum()
	if _, ok := m.(ode.WithJacobians); ok {
		t.Error("pendulum should rely on the finite-difference path")
	}
	var v Model = NewVanDerPol()
	if _, ok := v.(ode.WithJacobians); !ok {
		t.Error("vanderpol should provide analytic Jacobians")
	}
}

func TestPendulumSmallAngle(t *testing.T) {
	m := NewPendulum()
	m.SetParameter(0, 0) // undamped

	y := []float64{0.01, 0}
	yDot := make([]float64, 2)
	if err := m.ComputeDerivatives(0, y, yDot); err != nil {
		t.Fatal(err)
	}
	// small angle: dω/dt ≈ -(g/L)·θ
	want := -(m.Gravity / m.Length) * y[0]
	if math.Abs(yDot[1]-want) > 1e-6 {
		t.Errorf("small-angle acceleration: got %g, want %g", yDot[1], want)
	}
}

func newMat(r, c int) [][]float64 {
	m := make([][]float64, r)
	for i := range m {
		m[i] = make([]float64, c)
	}
	return m
}
