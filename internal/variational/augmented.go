package variational

import "github.com/san-kum/varode/internal/ode"

// layout maps (state index, derivative index) pairs to positions in the flat
// augmented vector z of length q = n(1+n+k):
//
//	y[i]         at z[i]
//	dy[i]/dy0[j] at z[n + i*n + j]
//	dy[i]/dp[j]  at z[n(n+1) + i*k + j]
//
// All offset arithmetic for the augmented vector lives here.
type layout struct {
	n int // state dimension
	k int // parameter count
}

func (lo layout) q() int { return lo.n * (1 + lo.n + lo.k) }

func (lo layout) dy0Index(i, j int) int { return lo.n + i*lo.n + j }

func (lo layout) dpIndex(i, j int) int { return lo.n*(lo.n+1) + i*lo.k + j }

// initialState builds z0 from the initial state and the initial parameter
// sensitivity. The dy/dy0 block is the identity: y(t0) = y0 exactly, so
// dy_i/dy0_j(t0) = δ_ij.
func (lo layout) initialState(y0 []float64, dY0dP [][]float64) []float64 {
	z := make([]float64, lo.q())
	copy(z, y0)
	for i := 0; i < lo.n; i++ {
		z[lo.dy0Index(i, i)] = 1.0
		if lo.k > 0 {
			copy(z[lo.dpIndex(i, 0):lo.dpIndex(i, lo.k)], dY0dP[i])
		}
	}
	return z
}

// dispatch unpacks the augmented vector into the caller's output buffers.
// dYdP is only touched when k > 0.
func (lo layout) dispatch(z, y []float64, dYdY0, dYdP [][]float64) {
	copy(y, z[:lo.n])
	for i := 0; i < lo.n; i++ {
		copy(dYdY0[i], z[lo.dy0Index(i, 0):lo.dy0Index(i, lo.n)])
	}
	if lo.k > 0 {
		for i := 0; i < lo.n; i++ {
			copy(dYdP[i], z[lo.dpIndex(i, 0):lo.dpIndex(i, lo.k)])
		}
	}
}

// derivative builds the right hand side of the augmented system: the raw ODE
// in block 0 and the variational equations in blocks 1 and 2.
//
//	d/dt (dy_i/dy0_j) = Σ_l dF_i/dy_l · dy_l/dy0_j
//	d/dt (dy_i/dp_j)  = dF_i/dp_j + Σ_l dF_i/dy_l · dy_l/dp_j
//
// The closure owns scratch buffers reused across evaluations, so the
// returned Func must only be driven by one integration at a time.
func (lo layout) derivative(eqs ode.WithJacobians) ode.Func {
	n, k := lo.n, lo.k
	y := make([]float64, n)
	yDot := make([]float64, n)
	dFdY := newMatrix(n, n)
	dFdP := newMatrix(n, k)

	return func(t float64, z, zDot []float64) error {
		copy(y, z[:n])
		if err := eqs.ComputeDerivatives(t, y, yDot); err != nil {
			return err
		}
		if err := eqs.ComputeJacobians(t, y, yDot, dFdY, dFdP); err != nil {
			return err
		}

		copy(zDot[:n], yDot)

		for i := 0; i < n; i++ {
			row := dFdY[i]
			for j := 0; j < n; j++ {
				s := 0.0
				for m := 0; m < n; m++ {
					s += row[m] * z[lo.dy0Index(m, j)]
				}
				zDot[lo.dy0Index(i, j)] = s
			}
		}

		for i := 0; i < n; i++ {
			row := dFdY[i]
			pRow := dFdP[i]
			for j := 0; j < k; j++ {
				s := pRow[j]
				for m := 0; m < n; m++ {
					s += row[m] * z[lo.dpIndex(m, j)]
				}
				zDot[lo.dpIndex(i, j)] = s
			}
		}

		return nil
	}
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
