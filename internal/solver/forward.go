package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Forward is plain fixed-point (Picard) iteration: z ← f(z) until
// successive iterates are within tolerance. Each step costs one
// evaluation of f; convergence requires f to be contractive near the
// fixed point.
type Forward struct {
	cfg Config
}

// NewForward creates a forward-iteration solver.
func NewForward(cfg Config) *Forward {
	return &Forward{cfg: cfg.withDefaults()}
}

// Solve iterates z ← f(z) from zInit until ‖z_prev − z‖₂ ≤ tol.
// On exhausting the iteration budget it returns the last iterate
// together with ErrDidNotConverge.
func (s *Forward) Solve(f Func, zInit *mat.VecDense) (*Result, error) {
	return iterate(s.cfg, "forward", f, zInit)
}

// iterate is the shared fixed-point driver: it repeatedly applies f and
// checks the successive-iterate residual. Newton reuses it to drive its
// own update map, so the stopping rule is identical for both solvers.
func iterate(cfg Config, name string, f Func, zInit *mat.VecDense) (*Result, error) {
	zPrev := mat.VecDenseCopyOf(zInit)
	z, err := eval(f, zPrev)
	if err != nil {
		return nil, err
	}

	res := &Result{Residuals: make([]float64, 0, cfg.MaxIter)}
	for k := 1; ; k++ {
		r := residual(zPrev, z)
		res.Z = z
		res.Iterations = k
		res.Residual = r
		res.Residuals = append(res.Residuals, r)

		if math.IsNaN(r) || math.IsInf(r, 0) {
			return res, fmt.Errorf("%s: iteration %d: %w", name, k, ErrNumericalBreakdown)
		}
		if r <= cfg.Tol {
			return res, nil
		}
		if k >= cfg.MaxIter {
			return res, fmt.Errorf("%s: residual %.3g after %d iterations (tol %.3g): %w",
				name, r, k, cfg.Tol, ErrDidNotConverge)
		}

		zPrev = z
		if z, err = eval(f, zPrev); err != nil {
			return nil, err
		}
	}
}
