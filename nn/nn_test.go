// Copyright 2026 Deq ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/autodiff"
	"github.com/deq-ml/deq/nn"
	"github.com/deq-ml/deq/optim"
	"github.com/deq-ml/deq/solver"
)

// TestPublicSurface drives one training step entirely through the
// public packages: build a cell, solve its fixed point with every
// solver, backpropagate, and apply an optimizer step.
func TestPublicSurface(t *testing.T) {
	const n = 6
	rng := rand.New(rand.NewSource(9))

	// Scaled-down weights keep the update map firmly contractive.
	wData := make([]float64, n*n)
	for i := range wData {
		wData[i] = 0.5 * rng.NormFloat64() / math.Sqrt(n)
	}
	cell := nn.NewTanhCellFrom(mat.NewDense(n, n, wData))
	xData := make([]float64, n)
	for i := range xData {
		xData[i] = rng.NormFloat64()
	}
	x := autodiff.NewValue(mat.NewDense(n, 1, xData))

	tests := []struct {
		name string
		s    solver.Solver
	}{
		{"Forward", solver.NewForward(solver.Config{})},
		{"Newton", solver.NewNewton(solver.Config{})},
		{"Anderson", solver.NewAnderson(solver.AndersonConfig{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := nn.NewFixedPointLayer(cell, tt.s)

			tape := autodiff.NewTape()
			tape.StartRecording()

			zstar, res, err := layer.Forward(tape, x)
			if err != nil {
				t.Fatalf("Forward: %v", err)
			}
			if res.Iterations == 0 || res.Iterations > solver.DefaultMaxIter {
				t.Errorf("Iterations = %d, want within (0, %d]", res.Iterations, solver.DefaultMaxIter)
			}

			loss := tape.Sum(zstar)
			grads := tape.Backward(loss, mat.NewDense(1, 1, []float64{1}))
			if grads[cell.Weight().Value()] == nil {
				t.Fatal("expected a gradient for the cell weight")
			}

			before := mat.DenseCopyOf(cell.Weight().Data())
			opt := optim.NewSGD(layer.Parameters(), optim.SGDConfig{LR: 0.01})
			opt.Step(grads)
			if mat.Equal(before, cell.Weight().Data()) {
				t.Error("optimizer step left the weight unchanged")
			}

			// Restore so each solver starts from the same weights.
			cell.Weight().Data().Copy(before)
		})
	}
}

// TestParameterSurface verifies the parameter accessors.
func TestParameterSurface(t *testing.T) {
	data := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	param := nn.NewParameter("test.weight", data)

	if name := param.Name(); name != "test.weight" {
		t.Errorf("Name() = %q, want %q", name, "test.weight")
	}
	if got := param.Data(); got != data {
		t.Error("Data() returned a different matrix than provided")
	}
	if param.Value() == nil {
		t.Error("Value() returned nil")
	}
}
