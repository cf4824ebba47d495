package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
	"github.com/deq-ml/deq/internal/solver"
)

// FixedPointLayer is a layer whose output is the fixed point of its
// cell: z* = f(x, z*). Any of the solvers can drive it; they are
// interchangeable up to tolerance.
//
// Forward runs the solver with no gradient recording, then registers a
// single fixedPointOp on the caller's tape. The tape therefore sees the
// whole solve as one operation with a custom backward rule — the
// dual-mode registration that keeps backward memory independent of the
// iteration count.
type FixedPointLayer struct {
	cell   Cell
	solver solver.Solver
}

// NewFixedPointLayer creates a fixed-point layer driving cell with s.
func NewFixedPointLayer(cell Cell, s solver.Solver) *FixedPointLayer {
	return &FixedPointLayer{cell: cell, solver: s}
}

// Cell returns the layer's update cell.
func (l *FixedPointLayer) Cell() Cell { return l.cell }

// Parameters returns the trainable parameters of the cell.
func (l *FixedPointLayer) Parameters() []*Parameter {
	return l.cell.Parameters()
}

// Forward solves for the equilibrium of the cell at input x (an n×1
// column value), starting from z_init = 0. The returned value is
// recorded on t; the solver result carries iteration and residual
// detail for the caller.
func (l *FixedPointLayer) Forward(t *autodiff.Tape, x *autodiff.Value) (*autodiff.Value, *solver.Result, error) {
	n, _ := x.Dims()

	// Bind x and the parameters into a single-argument update map.
	// Each evaluation uses its own scratch tape, so solver iterations
	// are never recorded; Lift also gives Newton its exact Jacobian.
	f := autodiff.Lift(func(ft *autodiff.Tape, z *autodiff.Value) *autodiff.Value {
		return l.cell.Apply(ft, x, z)
	})

	res, err := l.solver.Solve(f, mat.NewVecDense(n, nil))
	if err != nil {
		return nil, res, err
	}

	out := autodiff.NewValue(autodiff.ColVector(res.Z))
	t.Record(&fixedPointOp{cell: l.cell, x: x, zstar: res.Z, output: out})
	return out, res, nil
}

// fixedPointOp treats an entire solver run as one differentiable
// operation. Its backward rule is the implicit function theorem at the
// converged state: no iteration history is stored or replayed.
type fixedPointOp struct {
	cell   Cell
	x      *autodiff.Value
	zstar  *mat.VecDense
	output *autodiff.Value
}

func (op *fixedPointOp) Inputs() []*autodiff.Value {
	inputs := []*autodiff.Value{op.x}
	for _, p := range op.cell.Parameters() {
		inputs = append(inputs, p.Value())
	}
	return inputs
}

func (op *fixedPointOp) Output() *autodiff.Value { return op.output }

// Backward applies the implicit rule. A singular linearized system
// means the fixed point violates the layer's contraction assumption;
// that is a programming error at this level, so it panics like any
// other op invariant violation.
func (op *fixedPointOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	grads, err := ImplicitVJP(op.cell, op.x, op.zstar, outputGrad)
	if err != nil {
		panic("nn: fixed point backward: " + err.Error())
	}

	out := []*mat.Dense{grads[op.x]}
	for _, p := range op.cell.Parameters() {
		out = append(out, grads[p.Value()])
	}
	return out
}
