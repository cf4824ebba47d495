// Package nn implements equilibrium-model building blocks.
//
// This package provides:
//   - Cell interface: a parameterized update map f(x, z) built on a tape
//   - Parameter: trainable values with stable gradient identity
//   - TanhCell: the classic cell f(W, x, z) = tanh(W·z + x)
//   - FixedPointLayer: a layer whose output is the fixed point of a cell
//
// The layer is the deep-equilibrium abstraction: its forward pass runs
// any solver to convergence with no gradient tracking, then registers a
// single operation on the caller's tape whose backward rule applies the
// implicit function theorem at the converged state.
package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
)

// Cell is a parameterized fixed-point update map. Apply builds
// f(x, z) on the tape; z and the result are column values of the same
// length. Apply must reuse the same parameter values on every call so
// gradients accumulate against stable identities.
type Cell interface {
	Apply(t *autodiff.Tape, x, z *autodiff.Value) *autodiff.Value
	Parameters() []*Parameter
}

// Parameter represents a trainable value in an equilibrium model.
type Parameter struct {
	name  string
	value *autodiff.Value
}

// NewParameter creates a new trainable parameter wrapping data.
func NewParameter(name string, data *mat.Dense) *Parameter {
	return &Parameter{name: name, value: autodiff.NewValue(data)}
}

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

// Value returns the autodiff value; gradients from Tape.Backward are
// keyed by it.
func (p *Parameter) Value() *autodiff.Value { return p.value }

// Data returns the underlying matrix. Optimizers update it in place.
func (p *Parameter) Data() *mat.Dense { return p.value.Data() }
