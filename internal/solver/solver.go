// Package solver implements fixed-point solvers for equilibrium models.
//
// Three interchangeable algorithms find a state z* with f(z*) = z*:
//   - Forward: plain Picard iteration z ← f(z)
//   - Newton: Newton's method on the root map g(z) = f(z) − z
//   - Anderson: Anderson-accelerated iteration over a sliding window
//
// All three implement the Solver interface and, for a contractive f,
// converge to the same fixed point up to tolerance. Each call is
// self-contained and owns its buffers, so concurrent calls are safe.
package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Default hyperparameters shared by all solvers.
const (
	DefaultTol     = 1e-5
	DefaultMaxIter = 50
)

// Func is the fixed-point update map z' = f(z). It must be pure and
// preserve the length of z.
type Func interface {
	Eval(z *mat.VecDense) *mat.VecDense
}

// Differentiable is a Func that can report the exact Jacobian of f at
// z. Newton's method requires it; update maps built with the autodiff
// package satisfy it via reverse-mode differentiation.
type Differentiable interface {
	Func
	Jacobian(z *mat.VecDense) *mat.Dense
}

// FuncOf adapts a plain closure into a Func.
type FuncOf func(z *mat.VecDense) *mat.VecDense

// Eval applies the closure.
func (f FuncOf) Eval(z *mat.VecDense) *mat.VecDense { return f(z) }

// Config holds the stopping rule shared by all solvers.
// Zero fields take the package defaults.
type Config struct {
	Tol     float64 // Convergence tolerance on the residual (default 1e-5)
	MaxIter int     // Iteration budget (default 50)
}

func (c Config) withDefaults() Config {
	if c.Tol == 0 {
		c.Tol = DefaultTol
	}
	if c.MaxIter == 0 {
		c.MaxIter = DefaultMaxIter
	}
	return c
}

// Result reports a solver run. Z is always the last computed iterate,
// even when Solve also returns ErrDidNotConverge, so callers can decide
// whether a best-effort state is acceptable.
type Result struct {
	Z          *mat.VecDense // Final iterate
	Iterations int           // Number of iterations performed
	Residual   float64       // Residual at the final iterate
	Residuals  []float64     // Residual after each iteration
}

// Solver finds a fixed point of an update map from an initial state.
// The three implementations are interchangeable: same signature, and
// numerically equivalent fixed points up to tolerance.
type Solver interface {
	Solve(f Func, zInit *mat.VecDense) (*Result, error)
}

// eval applies f and enforces the shape-preservation contract.
func eval(f Func, z *mat.VecDense) (*mat.VecDense, error) {
	out := f.Eval(z)
	if out.Len() != z.Len() {
		return nil, fmt.Errorf("solver: update changed state length from %d to %d: %w",
			z.Len(), out.Len(), ErrShapeMismatch)
	}
	return out, nil
}

// residual is the Euclidean norm of a − b.
func residual(a, b *mat.VecDense) float64 {
	diff := mat.NewVecDense(a.Len(), nil)
	diff.SubVec(a, b)
	return mat.Norm(diff, 2)
}
