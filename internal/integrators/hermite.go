package integrators

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/varode/internal/ode"
)

// HermiteInterpolator provides dense output over one accepted step using
// cubic Hermite interpolation on the step endpoint states and derivatives.
// Integrators reuse a single instance across steps, so a handler that needs
// to keep a step must call Copy.
type HermiteInterpolator struct {
	prevT   float64
	curT    float64
	interpT float64

	y0, yDot0 []float64
	y1, yDot1 []float64

	state []float64
	deriv []float64
}

func (h *HermiteInterpolator) ensure(n int) {
	if len(h.y0) != n {
		h.y0 = make([]float64, n)
		h.yDot0 = make([]float64, n)
		h.y1 = make([]float64, n)
		h.yDot1 = make([]float64, n)
		h.state = make([]float64, n)
		h.deriv = make([]float64, n)
	}
}

// reload fills the interpolator with a fresh step. The interpolated time is
// reset to the step end.
func (h *HermiteInterpolator) reload(prevT, curT float64, y0, yDot0, y1, yDot1 []float64) {
	h.ensure(len(y0))
	h.prevT = prevT
	h.curT = curT
	h.interpT = curT
	copy(h.y0, y0)
	copy(h.yDot0, yDot0)
	copy(h.y1, y1)
	copy(h.yDot1, yDot1)
}

// truncate shortens the step to end at te, taking the new endpoint values
// from the dense output. Used when an event stops the run mid-step.
func (h *HermiteInterpolator) truncate(te float64) error {
	h.SetInterpolatedTime(te)
	s, err := h.InterpolatedState()
	if err != nil {
		return err
	}
	copy(h.y1, s)
	d, err := h.InterpolatedDerivatives()
	if err != nil {
		return err
	}
	copy(h.yDot1, d)
	h.curT = te
	h.interpT = te
	return nil
}

func (h *HermiteInterpolator) SetInterpolatedTime(t float64) { h.interpT = t }
func (h *HermiteInterpolator) InterpolatedTime() float64     { return h.interpT }
func (h *HermiteInterpolator) PreviousTime() float64         { return h.prevT }
func (h *HermiteInterpolator) CurrentTime() float64          { return h.curT }
func (h *HermiteInterpolator) IsForward() bool               { return h.curT >= h.prevT }

func (h *HermiteInterpolator) InterpolatedState() ([]float64, error) {
	if len(h.y0) == 0 {
		return nil, errors.New("integrators: empty interpolator")
	}
	dt := h.curT - h.prevT
	if dt == 0 {
		copy(h.state, h.y1)
		return h.state, nil
	}
	theta := (h.interpT - h.prevT) / dt
	theta2 := theta * theta
	theta3 := theta2 * theta
	b00 := 2*theta3 - 3*theta2 + 1
	b10 := theta3 - 2*theta2 + theta
	b01 := -2*theta3 + 3*theta2
	b11 := theta3 - theta2
	for i := range h.state {
		h.state[i] = b00*h.y0[i] + b10*dt*h.yDot0[i] + b01*h.y1[i] + b11*dt*h.yDot1[i]
	}
	return h.state, nil
}

func (h *HermiteInterpolator) InterpolatedDerivatives() ([]float64, error) {
	if len(h.y0) == 0 {
		return nil, errors.New("integrators: empty interpolator")
	}
	dt := h.curT - h.prevT
	if dt == 0 {
		copy(h.deriv, h.yDot1)
		return h.deriv, nil
	}
	theta := (h.interpT - h.prevT) / dt
	theta2 := theta * theta
	d00 := (6*theta2 - 6*theta) / dt
	d10 := 3*theta2 - 4*theta + 1
	d01 := (6*theta - 6*theta2) / dt
	d11 := 3*theta2 - 2*theta
	for i := range h.deriv {
		h.deriv[i] = d00*h.y0[i] + d10*h.yDot0[i] + d01*h.y1[i] + d11*h.yDot1[i]
	}
	return h.deriv, nil
}

func (h *HermiteInterpolator) Copy() (ode.StepInterpolator, error) {
	c := &HermiteInterpolator{}
	c.ensure(len(h.y0))
	c.prevT = h.prevT
	c.curT = h.curT
	c.interpT = h.interpT
	copy(c.y0, h.y0)
	copy(c.yDot0, h.yDot0)
	copy(c.y1, h.y1)
	copy(c.yDot1, h.yDot1)
	return c, nil
}

// Binary layout: prevT, curT, interpT (float64), then int32 n followed by
// the four endpoint arrays y0, yDot0, y1, yDot1.

func (h *HermiteInterpolator) MarshalBinaryTo(w io.Writer) error {
	for _, t := range []float64{h.prevT, h.curT, h.interpT} {
		if err := binary.Write(w, binary.BigEndian, t); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(h.y0))); err != nil {
		return err
	}
	for _, a := range [][]float64{h.y0, h.yDot0, h.y1, h.yDot1} {
		if err := binary.Write(w, binary.BigEndian, a); err != nil {
			return err
		}
	}
	return nil
}

func (h *HermiteInterpolator) UnmarshalBinaryFrom(r io.Reader) error {
	var ts [3]float64
	for i := range ts {
		if err := binary.Read(r, binary.BigEndian, &ts[i]); err != nil {
			return snapshotErr(err)
		}
	}
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return snapshotErr(err)
	}
	if n < 0 {
		return fmt.Errorf("%w: negative dimension %d", ode.ErrTruncatedSnapshot, n)
	}
	h.ensure(int(n))
	h.prevT, h.curT, h.interpT = ts[0], ts[1], ts[2]
	for _, a := range [][]float64{h.y0, h.yDot0, h.y1, h.yDot1} {
		if err := binary.Read(r, binary.BigEndian, a); err != nil {
			return snapshotErr(err)
		}
	}
	return nil
}

func snapshotErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ode.ErrTruncatedSnapshot, err)
	}
	return err
}
