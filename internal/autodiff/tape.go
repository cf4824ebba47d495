package autodiff

import "gonum.org/v1/gonum/mat"

// Tape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic
// differentiation.
//
// Usage:
//
//	tape := NewTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	grads := tape.Backward(output, seed)
type Tape struct {
	operations []Operation // Recorded operations (in execution order)
	recording  bool        // Whether the tape is currently recording
}

// NewTape creates a new gradient tape.
func NewTape() *Tape {
	return &Tape{
		operations: make([]Operation, 0, 64),
	}
}

// StartRecording enables operation recording.
func (t *Tape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *Tape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *Tape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *Tape) Record(op Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *Tape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *Tape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients for all values reachable from output by
// walking the tape in reverse.
//
// Algorithm:
//  1. Seed the output value with seed (same dimensions as output)
//  2. Walk operations in reverse order
//  3. For each operation, compute input gradients via the chain rule
//  4. Accumulate gradients when the same value is used multiple times
//
// Returns a map from Value to its accumulated gradient.
func (t *Tape) Backward(output *Value, seed *mat.Dense) map[*Value]*mat.Dense {
	grads := make(map[*Value]*mat.Dense)
	if len(t.operations) == 0 {
		return grads
	}

	// Stop recording during backward so gradient arithmetic is not taped.
	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	grads[output] = seed

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			continue // No gradient flows through this operation.
		}
		inputGrads := op.Backward(outGrad)
		t.accumulate(op.Inputs(), inputGrads, grads)
	}

	return grads
}

// accumulate adds each input gradient into the gradient map.
func (t *Tape) accumulate(inputs []*Value, inputGrads []*mat.Dense, grads map[*Value]*mat.Dense) {
	for j, input := range inputs {
		if j >= len(inputGrads) || inputGrads[j] == nil {
			continue
		}
		if existing, ok := grads[input]; ok {
			r, c := existing.Dims()
			sum := mat.NewDense(r, c, nil)
			sum.Add(existing, inputGrads[j])
			grads[input] = sum
		} else {
			grads[input] = inputGrads[j]
		}
	}
}
