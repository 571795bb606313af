package store

import "github.com/san-kum/varode/internal/variational"

// Recorder is a step handler that keeps the trajectory of a sensitivity
// run: at each accepted step it samples the interpolator at the step end
// and stores deep copies of the state and both Jacobian blocks.
type Recorder struct {
	Times  []float64
	States [][]float64
	DyDy0  [][][]float64
	DyDp   [][][]float64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) HandleStep(interp *variational.Interpolator, isLast bool) error {
	interp.SetInterpolatedTime(interp.CurrentTime())

	y, err := interp.InterpolatedY()
	if err != nil {
		return err
	}
	dydy0, err := interp.InterpolatedDyDy0()
	if err != nil {
		return err
	}
	dydp, err := interp.InterpolatedDyDp()
	if err != nil {
		return err
	}

	r.Times = append(r.Times, interp.CurrentTime())
	r.States = append(r.States, cloneVec(y))
	r.DyDy0 = append(r.DyDy0, cloneMat(dydy0))
	r.DyDp = append(r.DyDp, cloneMat(dydp))
	return nil
}

func (r *Recorder) RequiresDenseOutput() bool { return false }

func (r *Recorder) Reset() {
	r.Times = nil
	r.States = nil
	r.DyDy0 = nil
	r.DyDp = nil
}

// StateSeries returns the trajectory of state component i.
func (r *Recorder) StateSeries(i int) []float64 {
	out := make([]float64, len(r.States))
	for s, y := range r.States {
		out[s] = y[i]
	}
	return out
}

// DyDy0Series returns the trajectory of dy[i]/dy0[j].
func (r *Recorder) DyDy0Series(i, j int) []float64 {
	out := make([]float64, len(r.DyDy0))
	for s, m := range r.DyDy0 {
		out[s] = m[i][j]
	}
	return out
}

// DyDpSeries returns the trajectory of dy[i]/dp[j].
func (r *Recorder) DyDpSeries(i, j int) []float64 {
	out := make([]float64, len(r.DyDp))
	for s, m := range r.DyDp {
		out[s] = m[i][j]
	}
	return out
}

func cloneVec(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

func cloneMat(m [][]float64) [][]float64 {
	c := make([][]float64, len(m))
	for i := range m {
		c[i] = cloneVec(m[i])
	}
	return c
}
