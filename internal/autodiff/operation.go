package autodiff

import "gonum.org/v1/gonum/mat"

// Operation represents a differentiable operation in the computation
// graph. Each operation records its inputs and output during the
// forward pass, and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for the inputs given the gradient of
	// the output. The returned slice matches Inputs() positionally.
	Backward(outputGrad *mat.Dense) []*mat.Dense

	// Inputs returns the input values of this operation.
	Inputs() []*Value

	// Output returns the value produced by this operation.
	Output() *Value
}
