// Package optim implements optimization algorithms for training
// equilibrium models.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Gradients come from Tape.Backward as a fresh map keyed by parameter
// value, so there is no stored gradient state to clear between steps;
// clearing the tape itself is the caller's job.
//
// Example usage:
//
//	optimizer := optim.NewAdam(layer.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    tape.Clear()
//	    tape.StartRecording()
//	    out, _, err := layer.Forward(tape, x)
//	    ...
//	    grads := tape.Backward(loss, seed)
//	    optimizer.Step(grads)
//	}
package optim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
	"github.com/deq-ml/deq/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update parameters in-place based on the gradient map of a
// backward pass. Parameters absent from the map are skipped.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	Step(grads map[*autodiff.Value]*mat.Dense)

	// GetLR returns the current learning rate.
	GetLR() float64
}

// getGradient retrieves the gradient for a parameter.
//
// Returns nil if the parameter took no part in the recorded computation.
func getGradient(param *nn.Parameter, grads map[*autodiff.Value]*mat.Dense) *mat.Dense {
	if param == nil {
		return nil
	}
	return grads[param.Value()]
}
