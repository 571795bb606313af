package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxGrowthFactor returns the largest singular value of the propagated
// dy/dy0 matrix: the factor by which the worst-case initial perturbation
// has been amplified over the integration interval.
func MaxGrowthFactor(dYdY0 [][]float64) (float64, error) {
	m, err := denseFrom(dYdY0)
	if err != nil {
		return 0, err
	}
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return 0, errors.New("analysis: SVD failed to converge")
	}
	return svd.Values(nil)[0], nil
}

// FTLE returns the finite-time Lyapunov exponent ln(σ_max)/Δt computed
// from the propagated dy/dy0 over an interval of length elapsed. A positive
// value indicates exponential divergence of nearby trajectories over the
// window.
func FTLE(dYdY0 [][]float64, elapsed float64) (float64, error) {
	if elapsed == 0 {
		return 0, errors.New("analysis: zero interval")
	}
	sigma, err := MaxGrowthFactor(dYdY0)
	if err != nil {
		return 0, err
	}
	if sigma <= 0 {
		return math.Inf(-1), nil
	}
	return math.Log(sigma) / math.Abs(elapsed), nil
}

func denseFrom(rows [][]float64) (*mat.Dense, error) {
	r := len(rows)
	if r == 0 {
		return nil, errors.New("analysis: empty matrix")
	}
	c := len(rows[0])
	m := mat.NewDense(r, c, nil)
	for i, row := range rows {
		if len(row) != c {
			return nil, errors.New("analysis: ragged matrix")
		}
		m.SetRow(i, row)
	}
	return m, nil
}
