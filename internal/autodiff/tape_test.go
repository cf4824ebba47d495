package autodiff_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
)

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	tape := autodiff.NewTape()

	if tape.IsRecording() {
		t.Error("Tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("Tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("Tape should not be recording after StopRecording()")
	}
}

// TestTape_Clear tests that Clear drops operations but keeps recording state.
func TestTape_Clear(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()

	a := tape.Var(mat.NewDense(2, 1, []float64{1, 2}))
	b := tape.Var(mat.NewDense(2, 1, []float64{3, 4}))
	tape.Add(a, b)

	if tape.NumOps() == 0 {
		t.Error("Tape should have recorded operations")
	}

	tape.Clear()

	if tape.NumOps() != 0 {
		t.Errorf("Tape should be empty after Clear(), got %d ops", tape.NumOps())
	}
	if !tape.IsRecording() {
		t.Error("Tape should still be recording after Clear()")
	}
}

// TestTape_NotRecording tests that operations are skipped when the tape is off.
func TestTape_NotRecording(t *testing.T) {
	tape := autodiff.NewTape()

	a := tape.Var(mat.NewDense(2, 1, []float64{1, 2}))
	b := tape.Var(mat.NewDense(2, 1, []float64{3, 4}))
	c := tape.Add(a, b)

	if tape.NumOps() != 0 {
		t.Errorf("Expected 0 operations recorded, got %d", tape.NumOps())
	}

	// Forward values are still computed.
	if got := c.Data().At(0, 0); got != 4 {
		t.Errorf("Add result[0] = %f, want 4", got)
	}
}

// TestTape_Add_Forward tests the forward value and recording of Add.
func TestTape_Add_Forward(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()

	a := tape.Var(mat.NewDense(2, 1, []float64{1, 2}))
	b := tape.Var(mat.NewDense(2, 1, []float64{3, 4}))
	c := tape.Add(a, b)

	want := []float64{4, 6}
	for i, w := range want {
		if got := c.Data().At(i, 0); got != w {
			t.Errorf("Add result[%d] = %f, want %f", i, got, w)
		}
	}

	if tape.NumOps() != 1 {
		t.Errorf("Expected 1 operation recorded, got %d", tape.NumOps())
	}
}

// TestTape_Backward_Accumulates tests gradient accumulation when a value
// feeds two operations: y = x + x should give dy/dx = 2.
func TestTape_Backward_Accumulates(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()

	x := tape.Var(mat.NewDense(1, 1, []float64{3}))
	y := tape.Add(x, x)

	grads := tape.Backward(y, mat.NewDense(1, 1, []float64{1}))

	gx := grads[x]
	if gx == nil {
		t.Fatal("Expected gradient for x")
	}
	if got := gx.At(0, 0); got != 2 {
		t.Errorf("d(x+x)/dx = %f, want 2", got)
	}
}

// TestTape_Backward_Chain tests the chain rule through sum(tanh(W·z + x)).
func TestTape_Backward_Chain(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()

	w := tape.Var(mat.NewDense(2, 2, []float64{0.5, -0.3, 0.2, 0.1}))
	z := tape.Var(mat.NewDense(2, 1, []float64{1.0, -1.0}))
	x := tape.Var(mat.NewDense(2, 1, []float64{0.1, 0.2}))

	y := tape.Sum(tape.Tanh(tape.Add(tape.MatVec(w, z), x)))

	grads := tape.Backward(y, mat.NewDense(1, 1, []float64{1}))

	// Analytic gradient wrt z: Wᵀ · (1 - tanh²(Wz + x)).
	pre := []float64{0.5*1.0 + (-0.3)*(-1.0) + 0.1, 0.2*1.0 + 0.1*(-1.0) + 0.2}
	d0 := 1 - math.Tanh(pre[0])*math.Tanh(pre[0])
	d1 := 1 - math.Tanh(pre[1])*math.Tanh(pre[1])
	wantZ := []float64{0.5*d0 + 0.2*d1, -0.3*d0 + 0.1*d1}

	gz := grads[z]
	if gz == nil {
		t.Fatal("Expected gradient for z")
	}
	for i, w := range wantZ {
		if got := gz.At(i, 0); math.Abs(got-w) > 1e-12 {
			t.Errorf("dL/dz[%d] = %g, want %g", i, got, w)
		}
	}

	// Gradient wrt W: diag(1 - tanh²) scaled outer product with zᵀ.
	gw := grads[w]
	if gw == nil {
		t.Fatal("Expected gradient for w")
	}
	wantW := [][]float64{{d0 * 1.0, d0 * -1.0}, {d1 * 1.0, d1 * -1.0}}
	for i := range wantW {
		for j := range wantW[i] {
			if got := gw.At(i, j); math.Abs(got-wantW[i][j]) > 1e-12 {
				t.Errorf("dL/dW[%d,%d] = %g, want %g", i, j, got, wantW[i][j])
			}
		}
	}
}
