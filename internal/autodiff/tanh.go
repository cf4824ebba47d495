package autodiff

import "gonum.org/v1/gonum/mat"

// tanhOp is the element-wise hyperbolic tangent.
type tanhOp struct {
	a      *Value
	output *Value
}

func (op *tanhOp) Inputs() []*Value { return []*Value{op.a} }
func (op *tanhOp) Output() *Value   { return op.output }

// Backward computes the gradient for tanh.
//
// d(tanh(x))/dx = 1 - tanh²(x), and the output already holds tanh(x):
//
//	grad_input = grad_output ⊙ (1 - output²)
func (op *tanhOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	r, c := op.output.Dims()

	deriv := mat.NewDense(r, c, nil)
	deriv.Apply(func(i, j int, g float64) float64 {
		y := op.output.data.At(i, j)
		return g * (1 - y*y)
	}, outputGrad)

	return []*mat.Dense{deriv}
}
