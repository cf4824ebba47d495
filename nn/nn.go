// Copyright 2026 Deq ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides equilibrium-model building blocks.
//
// # Overview
//
// This package contains:
//   - Cell: a parameterized update map f(x, z) built on a tape
//   - TanhCell: the classic cell f(W, x, z) = tanh(W·z + x)
//   - FixedPointLayer: a layer whose output is the fixed point of a cell
//   - ImplicitVJP / ImplicitJVP: implicit-function-theorem derivatives
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/deq-ml/deq/autodiff"
//	    "github.com/deq-ml/deq/nn"
//	    "github.com/deq-ml/deq/solver"
//	)
//
//	func main() {
//	    cell := nn.NewTanhCell(64, rand.New(rand.NewSource(1)))
//	    layer := nn.NewFixedPointLayer(cell, solver.NewAnderson(solver.AndersonConfig{}))
//
//	    t := autodiff.NewTape()
//	    t.StartRecording()
//	    zstar, _, err := layer.Forward(t, x)
//	    // backward through zstar uses the implicit rule, with memory
//	    // independent of the solver's iteration count
//	    _ = err
//	    _ = zstar
//	}
package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
	"github.com/deq-ml/deq/internal/nn"
	"github.com/deq-ml/deq/internal/solver"
)

// Cell is a parameterized fixed-point update map.
type Cell = nn.Cell

// Parameter represents a trainable value in an equilibrium model.
type Parameter = nn.Parameter

// NewParameter creates a new trainable parameter wrapping data.
func NewParameter(name string, data *mat.Dense) *Parameter {
	return nn.NewParameter(name, data)
}

// TanhCell is the cell f(W, x, z) = tanh(W·z + x).
type TanhCell = nn.TanhCell

// NewTanhCell creates a tanh cell with W ~ N(0, 1/n).
func NewTanhCell(n int, rng *rand.Rand) *TanhCell {
	return nn.NewTanhCell(n, rng)
}

// NewTanhCellFrom creates a tanh cell around an existing square weight
// matrix.
func NewTanhCellFrom(w *mat.Dense) *TanhCell {
	return nn.NewTanhCellFrom(w)
}

// FixedPointLayer is a layer whose output is the fixed point of its
// cell.
type FixedPointLayer = nn.FixedPointLayer

// NewFixedPointLayer creates a fixed-point layer driving cell with s.
func NewFixedPointLayer(cell Cell, s solver.Solver) *FixedPointLayer {
	return nn.NewFixedPointLayer(cell, s)
}

// ImplicitVJP pulls an upstream gradient back through a converged fixed
// point via the implicit function theorem.
func ImplicitVJP(cell Cell, x *autodiff.Value, zstar *mat.VecDense, outputGrad *mat.Dense) (map[*autodiff.Value]*mat.Dense, error) {
	return nn.ImplicitVJP(cell, x, zstar, outputGrad)
}

// ImplicitJVP computes the directional derivative of the solution map
// in a parameter direction.
func ImplicitJVP(cell Cell, x *autodiff.Value, zstar *mat.VecDense, p *Parameter, v *mat.Dense) (*mat.VecDense, error) {
	return nn.ImplicitJVP(cell, x, zstar, p, v)
}
