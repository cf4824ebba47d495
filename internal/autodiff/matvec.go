package autodiff

import "gonum.org/v1/gonum/mat"

// matVecOp is matrix-vector multiplication y = W·z with W r×c and z c×1.
type matVecOp struct {
	w, z   *Value
	output *Value
}

func (op *matVecOp) Inputs() []*Value { return []*Value{op.w, op.z} }
func (op *matVecOp) Output() *Value   { return op.output }

// Backward computes the gradients for both operands:
//
//	dL/dW = g · zᵀ   (outer product, r×c)
//	dL/dz = Wᵀ · g   (c×1)
func (op *matVecOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	r, c := op.w.Dims()

	gradW := mat.NewDense(r, c, nil)
	gradW.Mul(outputGrad, op.z.data.T())

	gradZ := mat.NewDense(c, 1, nil)
	gradZ.Mul(op.w.data.T(), outputGrad)

	return []*mat.Dense{gradW, gradZ}
}
