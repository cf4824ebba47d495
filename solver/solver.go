// Copyright 2026 Deq ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package solver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/solver"
)

// Default stopping parameters shared by all solvers.
const (
	DefaultTol     = solver.DefaultTol
	DefaultMaxIter = solver.DefaultMaxIter
)

// Anderson defaults.
const (
	DefaultWindow = solver.DefaultWindow
	DefaultRidge  = solver.DefaultRidge
	DefaultBeta   = solver.DefaultBeta
)

// Sentinel errors reported by the solvers. Test with errors.Is.
var (
	ErrDidNotConverge     = solver.ErrDidNotConverge
	ErrSingularSystem     = solver.ErrSingularSystem
	ErrShapeMismatch      = solver.ErrShapeMismatch
	ErrNoJacobian         = solver.ErrNoJacobian
	ErrNumericalBreakdown = solver.ErrNumericalBreakdown
)

// Func is a fixed-point update map z ← f(z).
type Func = solver.Func

// Differentiable is an update map that can also produce its Jacobian,
// as Newton requires.
type Differentiable = solver.Differentiable

// FuncOf adapts a plain function to the Func interface.
type FuncOf = solver.FuncOf

// Config holds the stopping parameters common to all solvers.
type Config = solver.Config

// Result reports a solve: the final (or best) iterate, the iteration
// count, and the residual history.
type Result = solver.Result

// Solver runs an update map to its fixed point.
type Solver = solver.Solver

// Forward is the plain Picard iteration solver.
type Forward = solver.Forward

// NewForward creates a forward-iteration solver.
func NewForward(cfg Config) *Forward {
	return solver.NewForward(cfg)
}

// Newton solves g(z) = f(z) − z by Newton's method. The update map
// must implement Differentiable.
type Newton = solver.Newton

// NewNewton creates a Newton solver.
func NewNewton(cfg Config) *Newton {
	return solver.NewNewton(cfg)
}

// Anderson is the Anderson-accelerated solver.
type Anderson = solver.Anderson

// AndersonConfig extends Config with the memory window, the Tikhonov
// ridge, and the damping factor.
type AndersonConfig = solver.AndersonConfig

// NewAnderson creates an Anderson-accelerated solver.
func NewAnderson(cfg AndersonConfig) *Anderson {
	return solver.NewAnderson(cfg)
}

// SolveBatch solves independent fixed-point problems concurrently with
// the same solver. Results line up with the inputs; per-problem errors
// are joined.
func SolveBatch(s Solver, fs []Func, zInits []*mat.VecDense) ([]*Result, error) {
	return solver.SolveBatch(s, fs, zInits)
}
