package variational

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/varode/internal/ode"
)

// Interpolator exposes the dense output of one accepted step of the
// augmented system as (y, yDot, dy/dy0, dy/dp) views. It is created by the
// facade for each step and stays valid until the next step unless copied.
//
// The returned slices and matrices are cached and refilled on every getter
// call; hold a Copy if values must outlive the next query.
type Interpolator struct {
	raw ode.StepInterpolator
	lay layout

	y     []float64
	yDot  []float64
	dydy0 [][]float64
	dydp  [][]float64
}

func newInterpolator(raw ode.StepInterpolator, lay layout) *Interpolator {
	return &Interpolator{
		raw:   raw,
		lay:   lay,
		y:     make([]float64, lay.n),
		yDot:  make([]float64, lay.n),
		dydy0: newMatrix(lay.n, lay.n),
		dydp:  newMatrix(lay.n, lay.k),
	}
}

func (p *Interpolator) SetInterpolatedTime(t float64) { p.raw.SetInterpolatedTime(t) }
func (p *Interpolator) InterpolatedTime() float64     { return p.raw.InterpolatedTime() }
func (p *Interpolator) PreviousTime() float64         { return p.raw.PreviousTime() }
func (p *Interpolator) CurrentTime() float64          { return p.raw.CurrentTime() }
func (p *Interpolator) IsForward() bool               { return p.raw.IsForward() }

// InterpolatedY returns the state at the interpolated time.
func (p *Interpolator) InterpolatedY() ([]float64, error) {
	z, err := p.raw.InterpolatedState()
	if err != nil {
		return nil, err
	}
	copy(p.y, z[:p.lay.n])
	return p.y, nil
}

// InterpolatedDyDy0 returns the Jacobian of the state with respect to the
// initial state at the interpolated time.
func (p *Interpolator) InterpolatedDyDy0() ([][]float64, error) {
	z, err := p.raw.InterpolatedState()
	if err != nil {
		return nil, err
	}
	p.sliceDy0(z, p.dydy0)
	return p.dydy0, nil
}

// InterpolatedDyDp returns the Jacobian of the state with respect to the
// parameters at the interpolated time.
func (p *Interpolator) InterpolatedDyDp() ([][]float64, error) {
	z, err := p.raw.InterpolatedState()
	if err != nil {
		return nil, err
	}
	p.sliceDp(z, p.dydp)
	return p.dydp, nil
}

// InterpolatedYDot returns the state derivative at the interpolated time.
func (p *Interpolator) InterpolatedYDot() ([]float64, error) {
	zDot, err := p.raw.InterpolatedDerivatives()
	if err != nil {
		return nil, err
	}
	copy(p.yDot, zDot[:p.lay.n])
	return p.yDot, nil
}

// InterpolatedDyDy0Dot returns the time derivative of dy/dy0 at the
// interpolated time. It shares its backing matrix with InterpolatedDyDy0.
func (p *Interpolator) InterpolatedDyDy0Dot() ([][]float64, error) {
	zDot, err := p.raw.InterpolatedDerivatives()
	if err != nil {
		return nil, err
	}
	p.sliceDy0(zDot, p.dydy0)
	return p.dydy0, nil
}

// InterpolatedDyDpDot returns the time derivative of dy/dp at the
// interpolated time. It shares its backing matrix with InterpolatedDyDp.
func (p *Interpolator) InterpolatedDyDpDot() ([][]float64, error) {
	zDot, err := p.raw.InterpolatedDerivatives()
	if err != nil {
		return nil, err
	}
	p.sliceDp(zDot, p.dydp)
	return p.dydp, nil
}

func (p *Interpolator) sliceDy0(z []float64, dst [][]float64) {
	for i := 0; i < p.lay.n; i++ {
		copy(dst[i], z[p.lay.dy0Index(i, 0):p.lay.dy0Index(i, p.lay.n)])
	}
}

func (p *Interpolator) sliceDp(z []float64, dst [][]float64) {
	for i := 0; i < p.lay.n; i++ {
		copy(dst[i], z[p.lay.dpIndex(i, 0):p.lay.dpIndex(i, p.lay.k)])
	}
}

// Copy deep-clones the adapter together with the underlying raw
// interpolator, decoupling the snapshot from subsequent steps.
func (p *Interpolator) Copy() (*Interpolator, error) {
	raw, err := p.raw.Copy()
	if err != nil {
		return nil, err
	}
	c := newInterpolator(raw, p.lay)
	copy(c.y, p.y)
	copy(c.yDot, p.yDot)
	for i := 0; i < p.lay.n; i++ {
		copy(c.dydy0[i], p.dydy0[i])
		copy(c.dydp[i], p.dydp[i])
	}
	return c, nil
}

// MarshalBinaryTo writes the snapshot: the raw interpolator first, then
// big-endian int32 n and k, then y, yDot, dydy0 (row-major) and dydp
// (row-major), all float64. The caches are refreshed at the current
// interpolated time before writing.
func (p *Interpolator) MarshalBinaryTo(w io.Writer) error {
	if _, err := p.InterpolatedY(); err != nil {
		return err
	}
	if _, err := p.InterpolatedDyDy0(); err != nil {
		return err
	}
	if _, err := p.InterpolatedDyDp(); err != nil {
		return err
	}
	if _, err := p.InterpolatedYDot(); err != nil {
		return err
	}

	if err := p.raw.MarshalBinaryTo(w); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(p.lay.n)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(p.lay.k)); err != nil {
		return err
	}
	for _, a := range [][]float64{p.y, p.yDot} {
		if err := binary.Write(w, binary.BigEndian, a); err != nil {
			return err
		}
	}
	for _, m := range [][][]float64{p.dydy0, p.dydp} {
		for _, row := range m {
			if err := binary.Write(w, binary.BigEndian, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadSnapshot reads a snapshot written by MarshalBinaryTo. raw must be a
// fresh instance of the same concrete interpolator type that produced the
// snapshot; it is filled from the stream and owned by the result. A short
// or malformed stream leaves no usable partial state and reports an error
// wrapping ode.ErrTruncatedSnapshot.
func ReadSnapshot(r io.Reader, raw ode.StepInterpolator) (*Interpolator, error) {
	if err := raw.UnmarshalBinaryFrom(r); err != nil {
		return nil, err
	}
	var n, k int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, wrapTruncated(err)
	}
	if err := binary.Read(r, binary.BigEndian, &k); err != nil {
		return nil, wrapTruncated(err)
	}
	if n < 0 || k < 0 {
		return nil, fmt.Errorf("%w: negative dimensions n=%d k=%d", ode.ErrTruncatedSnapshot, n, k)
	}

	p := newInterpolator(raw, layout{n: int(n), k: int(k)})
	for _, a := range [][]float64{p.y, p.yDot} {
		if err := binary.Read(r, binary.BigEndian, a); err != nil {
			return nil, wrapTruncated(err)
		}
	}
	for _, m := range [][][]float64{p.dydy0, p.dydp} {
		for _, row := range m {
			if err := binary.Read(r, binary.BigEndian, row); err != nil {
				return nil, wrapTruncated(err)
			}
		}
	}
	return p, nil
}

func wrapTruncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ode.ErrTruncatedSnapshot, err)
	}
	return err
}
