// Copyright 2026 Deq ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Operations are recorded on a gradient tape and replayed backward to
// accumulate gradients, keyed by value identity.
//
// Example:
//
//	import (
//	    "github.com/deq-ml/deq/autodiff"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    t := autodiff.NewTape()
//	    t.StartRecording()
//
//	    w := autodiff.NewValue(mat.NewDense(2, 2, nil))
//	    z := autodiff.NewValue(mat.NewDense(2, 1, nil))
//	    out := t.Tanh(t.MatVec(w, z))
//
//	    grads := t.Backward(out, mat.NewDense(2, 1, []float64{1, 1}))
//	    _ = grads[w]
//	}
package autodiff

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
)

// Value is a node in the computation graph wrapping a dense matrix.
// Column vectors are n×1 matrices.
type Value = autodiff.Value

// NewValue creates a leaf value with stable gradient identity.
func NewValue(data *mat.Dense) *Value {
	return autodiff.NewValue(data)
}

// Operation is one recorded step with a custom backward rule.
type Operation = autodiff.Operation

// Tape records operations for reverse-mode differentiation.
type Tape = autodiff.Tape

// NewTape creates a new gradient tape. Recording starts off.
func NewTape() *Tape {
	return autodiff.NewTape()
}

// Lifted is a taped computation bound into a plain vector update map,
// with exact Jacobians available on demand.
type Lifted = autodiff.Lifted

// Lift binds a tape-building function into a Lifted map.
func Lift(build func(t *Tape, z *Value) *Value) *Lifted {
	return autodiff.Lift(build)
}

// ColVector copies a vector into an n×1 matrix.
func ColVector(v *mat.VecDense) *mat.Dense {
	return autodiff.ColVector(v)
}

// AsVector copies an n×1 matrix into a vector.
func AsVector(m *mat.Dense) *mat.VecDense {
	return autodiff.AsVector(m)
}
