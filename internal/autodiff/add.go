package autodiff

import "gonum.org/v1/gonum/mat"

// addOp is element-wise addition: d(a+b)/da = 1, d(a+b)/db = 1.
type addOp struct {
	a, b   *Value
	output *Value
}

func (op *addOp) Inputs() []*Value { return []*Value{op.a, op.b} }
func (op *addOp) Output() *Value   { return op.output }

// Backward passes the output gradient to both inputs unchanged.
func (op *addOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	return []*mat.Dense{outputGrad, outputGrad}
}

// subOp is element-wise subtraction: d(a-b)/da = 1, d(a-b)/db = -1.
type subOp struct {
	a, b   *Value
	output *Value
}

func (op *subOp) Inputs() []*Value { return []*Value{op.a, op.b} }
func (op *subOp) Output() *Value   { return op.output }

func (op *subOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	r, c := outputGrad.Dims()
	neg := mat.NewDense(r, c, nil)
	neg.Scale(-1, outputGrad)
	return []*mat.Dense{outputGrad, neg}
}
