// Package autodiff implements reverse-mode automatic differentiation
// over dense gonum values.
//
// A Tape records operations during the forward pass. Each operation
// implements the Operation interface and knows how to push a gradient
// from its output back to its inputs. Tape.Backward walks the recorded
// operations in reverse and accumulates gradients per Value using the
// chain rule.
//
// Usage:
//
//	tape := autodiff.NewTape()
//	tape.StartRecording()
//
//	w := tape.Var(weights) // p×n matrix
//	z := tape.Var(state)   // n×1 column
//	y := tape.Tanh(tape.Add(tape.MatVec(w, z), tape.Var(x)))
//
//	grads := tape.Backward(y, seed)
//	_ = grads[w] // dL/dW
package autodiff

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Var creates a leaf value. Leaves record no operation; they receive
// gradients during Backward when used as inputs.
func (t *Tape) Var(data *mat.Dense) *Value {
	return &Value{data: data}
}

// Add performs element-wise addition and records the operation.
func (t *Tape) Add(a, b *Value) *Value {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Add(a.data, b.data)

	result := &Value{data: out}
	t.Record(&addOp{a: a, b: b, output: result})
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (t *Tape) Sub(a, b *Value) *Value {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Sub(a.data, b.data)

	result := &Value{data: out}
	t.Record(&subOp{a: a, b: b, output: result})
	return result
}

// MatVec multiplies a matrix value by a column value and records the
// operation. w must be r×c and z must be c×1; the result is r×1.
func (t *Tape) MatVec(w, z *Value) *Value {
	r, _ := w.Dims()
	out := mat.NewDense(r, 1, nil)
	out.Mul(w.data, z.data)

	result := &Value{data: out}
	t.Record(&matVecOp{w: w, z: z, output: result})
	return result
}

// Scale multiplies a value by a scalar constant and records the operation.
func (t *Tape) Scale(c float64, a *Value) *Value {
	r, cols := a.Dims()
	out := mat.NewDense(r, cols, nil)
	out.Scale(c, a.data)

	result := &Value{data: out}
	t.Record(&scaleOp{c: c, a: a, output: result})
	return result
}

// Tanh applies the element-wise hyperbolic tangent and records the operation.
func (t *Tape) Tanh(a *Value) *Value {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, a.data)

	result := &Value{data: out}
	t.Record(&tanhOp{a: a, output: result})
	return result
}

// Sum reduces a value to a 1×1 scalar by summing all elements and
// records the operation.
func (t *Tape) Sum(a *Value) *Value {
	out := mat.NewDense(1, 1, []float64{mat.Sum(a.data)})

	result := &Value{data: out}
	t.Record(&sumOp{a: a, output: result})
	return result
}
