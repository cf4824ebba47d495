package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Anderson defaults, in addition to the shared Config defaults.
const (
	DefaultWindow = 5    // history slots m
	DefaultRidge  = 1e-4 // Tikhonov regularization λ
	DefaultBeta   = 1.0  // damping β (1.0 = undamped)
)

// AndersonConfig configures the Anderson solver. Zero fields take the
// package defaults, so a zero Beta means undamped, not frozen.
type AndersonConfig struct {
	Config
	Window int     // history size m, at least 2 (default 5)
	Ridge  float64 // regularization λ for the bordered system (default 1e-4)
	Beta   float64 // damping: β·(αᵀF) + (1−β)·(αᵀX) (default 1.0)
}

func (c AndersonConfig) withDefaults() AndersonConfig {
	c.Config = c.Config.withDefaults()
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.Ridge == 0 {
		c.Ridge = DefaultRidge
	}
	if c.Beta == 0 {
		c.Beta = DefaultBeta
	}
	return c
}

// Anderson accelerates fixed-point iteration by replaying a sliding
// window of past iterates: each step finds the least-squares mix of the
// last m residuals (via a small bordered linear solve) and takes the
// corresponding mix of their images under f as the next iterate.
type Anderson struct {
	cfg AndersonConfig
}

// NewAnderson creates an Anderson-accelerated solver.
func NewAnderson(cfg AndersonConfig) *Anderson {
	return &Anderson{cfg: cfg.withDefaults()}
}

// Solve runs Anderson acceleration from zInit. The window must hold at
// least the two seed iterates. On exhausting the iteration budget it
// returns the last written iterate together with ErrDidNotConverge.
func (s *Anderson) Solve(f Func, zInit *mat.VecDense) (*Result, error) {
	m := s.cfg.Window
	if m < 2 {
		return nil, fmt.Errorf("anderson: window must hold the two seed iterates, got %d", m)
	}

	n := zInit.Len()

	// Ring buffers of the last m iterates and their images. Row k%m
	// holds step k; only the first min(k, m) rows are valid at step k.
	X := mat.NewDense(m, n, nil)
	F := mat.NewDense(m, n, nil)

	// Seed with x0 = zInit and x1 = f(x0).
	x0 := mat.VecDenseCopyOf(zInit)
	f0, err := eval(f, x0)
	if err != nil {
		return nil, err
	}
	setRow(X, 0, x0)
	setRow(F, 0, f0)

	f1, err := eval(f, f0)
	if err != nil {
		return nil, err
	}
	setRow(X, 1, f0)
	setRow(F, 1, f1)

	res := &Result{Z: mat.VecDenseCopyOf(f0), Residuals: make([]float64, 0, s.cfg.MaxIter)}
	z := mat.VecDenseCopyOf(f0)

	for k := 2; k < s.cfg.MaxIter; k++ {
		nk := min(k, m)

		alpha, err := mixingWeights(X, F, nk, s.cfg.Ridge)
		if err != nil {
			return nil, fmt.Errorf("anderson: iteration %d: %w", k, err)
		}

		// x_k = β·(αᵀF) + (1−β)·(αᵀX), slotted at k mod m.
		for j := 0; j < n; j++ {
			var v float64
			for i := 0; i < nk; i++ {
				v += alpha[i] * (s.cfg.Beta*F.At(i, j) + (1-s.cfg.Beta)*X.At(i, j))
			}
			z.SetVec(j, v)
		}

		fz, err := eval(f, z)
		if err != nil {
			return nil, err
		}
		setRow(X, k%m, z)
		setRow(F, k%m, fz)

		// Normalized residual of the freshly written slot.
		r := residual(fz, z) / (1e-5 + mat.Norm(fz, 2))
		res.Z = mat.VecDenseCopyOf(z)
		res.Iterations = k
		res.Residual = r
		res.Residuals = append(res.Residuals, r)

		if math.IsNaN(r) || math.IsInf(r, 0) {
			return res, fmt.Errorf("anderson: iteration %d: %w", k, ErrNumericalBreakdown)
		}
		if r < s.cfg.Tol {
			return res, nil
		}
	}

	return res, fmt.Errorf("anderson: residual %.3g after %d iterations (tol %.3g): %w",
		res.Residual, s.cfg.MaxIter, s.cfg.Tol, ErrDidNotConverge)
}

// mixingWeights solves the bordered least-squares system for the
// combination weights α over the first nk history rows:
//
//	H·y = e₀ with H = [[0, 1ᵀ], [1, G·Gᵀ]] + λI, G = F[:nk] − X[:nk]
//
// The bordering row constrains the weights to sum to one; λ guards the
// Gram block against singularity when iterates are linearly dependent.
func mixingWeights(X, F *mat.Dense, nk int, ridge float64) ([]float64, error) {
	_, n := X.Dims()

	G := mat.NewDense(nk, n, nil)
	G.Sub(F.Slice(0, nk, 0, n), X.Slice(0, nk, 0, n))

	GTG := mat.NewDense(nk, nk, nil)
	GTG.Mul(G, G.T())

	H := mat.NewDense(nk+1, nk+1, nil)
	for i := 1; i <= nk; i++ {
		H.Set(0, i, 1)
		H.Set(i, 0, 1)
		for j := 1; j <= nk; j++ {
			H.Set(i, j, GTG.At(i-1, j-1))
		}
	}
	for i := 0; i <= nk; i++ {
		H.Set(i, i, H.At(i, i)+ridge)
	}

	e0 := mat.NewVecDense(nk+1, nil)
	e0.SetVec(0, 1)

	var lu mat.LU
	lu.Factorize(H)
	y := mat.NewVecDense(nk+1, nil)
	if err := lu.SolveVecTo(y, false, e0); err != nil {
		return nil, fmt.Errorf("bordered solve: %v: %w", err, ErrSingularSystem)
	}

	return y.RawVector().Data[1:], nil
}

func setRow(m *mat.Dense, i int, v *mat.VecDense) {
	for j := 0; j < v.Len(); j++ {
		m.Set(i, j, v.AtVec(j))
	}
}
