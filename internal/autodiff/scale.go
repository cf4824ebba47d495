package autodiff

import "gonum.org/v1/gonum/mat"

// scaleOp multiplies a value by a scalar constant: d(c·a)/da = c.
type scaleOp struct {
	c      float64
	a      *Value
	output *Value
}

func (op *scaleOp) Inputs() []*Value { return []*Value{op.a} }
func (op *scaleOp) Output() *Value   { return op.output }

func (op *scaleOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	r, c := outputGrad.Dims()
	grad := mat.NewDense(r, c, nil)
	grad.Scale(op.c, outputGrad)
	return []*mat.Dense{grad}
}

// sumOp reduces all elements to a 1×1 scalar: d(sum(a))/da = 1 everywhere.
type sumOp struct {
	a      *Value
	output *Value
}

func (op *sumOp) Inputs() []*Value { return []*Value{op.a} }
func (op *sumOp) Output() *Value   { return op.output }

func (op *sumOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	g := outputGrad.At(0, 0)
	r, c := op.a.Dims()
	grad := mat.NewDense(r, c, nil)
	grad.Apply(func(_, _ int, _ float64) float64 { return g }, grad)
	return []*mat.Dense{grad}
}
