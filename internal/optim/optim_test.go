package optim_test

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
	"github.com/deq-ml/deq/internal/nn"
	"github.com/deq-ml/deq/internal/optim"
	"github.com/deq-ml/deq/internal/solver"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func scalarParam(name string, v float64) *nn.Parameter {
	return nn.NewParameter(name, mat.NewDense(1, 1, []float64{v}))
}

func scalarGrads(p *nn.Parameter, g float64) map[*autodiff.Value]*mat.Dense {
	return map[*autodiff.Value]*mat.Dense{
		p.Value(): mat.NewDense(1, 1, []float64{g}),
	}
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	param := scalarParam("x", 2.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})

	optimizer.Step(scalarGrads(param, 1.0))

	// x_new = 2.0 - 0.1 * 1.0 = 1.9
	if got := param.Data().At(0, 0); !floatEqual(got, 1.9, 1e-12) {
		t.Errorf("SGD update: got %f, want 1.9", got)
	}
}

// TestSGD_WithMomentum tests SGD with momentum over two steps.
func TestSGD_WithMomentum(t *testing.T) {
	param := scalarParam("x", 1.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// v_1 = 0.9 * 0 + 1.0 = 1.0
	// x_1 = 1.0 - 0.1 * 1.0 = 0.9
	optimizer.Step(scalarGrads(param, 1.0))
	if got := param.Data().At(0, 0); !floatEqual(got, 0.9, 1e-12) {
		t.Errorf("SGD momentum step 1: got %f, want 0.9", got)
	}

	// v_2 = 0.9 * 1.0 + 1.0 = 1.9
	// x_2 = 0.9 - 0.1 * 1.9 = 0.71
	optimizer.Step(scalarGrads(param, 1.0))
	if got := param.Data().At(0, 0); !floatEqual(got, 0.71, 1e-12) {
		t.Errorf("SGD momentum step 2: got %f, want 0.71", got)
	}
}

// TestSGD_GetSetLR tests learning rate getter/setter.
func TestSGD_GetSetLR(t *testing.T) {
	param := scalarParam("x", 1.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.01})

	if optimizer.GetLR() != 0.01 {
		t.Errorf("GetLR: got %f, want 0.01", optimizer.GetLR())
	}

	optimizer.SetLR(0.001)
	if optimizer.GetLR() != 0.001 {
		t.Errorf("GetLR after SetLR: got %f, want 0.001", optimizer.GetLR())
	}
}

// TestSGD_SkipsMissingGradient checks that parameters outside the
// gradient map are untouched.
func TestSGD_SkipsMissingGradient(t *testing.T) {
	param := scalarParam("x", 5.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})

	optimizer.Step(map[*autodiff.Value]*mat.Dense{})

	if got := param.Data().At(0, 0); got != 5.0 {
		t.Errorf("parameter without gradient moved: got %f, want 5.0", got)
	}
}

// TestAdam_SimpleUpdate tests the first Adam step.
func TestAdam_SimpleUpdate(t *testing.T) {
	param := scalarParam("x", 1.0)
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{
		LR:    0.001,
		Betas: [2]float64{0.9, 0.999},
		Eps:   1e-8,
	})

	optimizer.Step(scalarGrads(param, 1.0))

	// m_1 = 0.1, v_1 = 0.001; with bias correction m_hat = v_hat = 1.
	// x_new = 1.0 - 0.001 * 1.0 / (sqrt(1.0) + 1e-8) ≈ 0.999
	if got := param.Data().At(0, 0); !floatEqual(got, 0.999, 1e-8) {
		t.Errorf("Adam first step: got %f, want 0.999", got)
	}
}

// TestAdam_BiasCorrection tests that the timestep advances and the
// parameter keeps moving under a constant gradient.
func TestAdam_BiasCorrection(t *testing.T) {
	param := scalarParam("x", 1.0)
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.01})

	if optimizer.GetTimestep() != 0 {
		t.Errorf("initial timestep: got %d, want 0", optimizer.GetTimestep())
	}

	for i := 1; i <= 3; i++ {
		optimizer.Step(scalarGrads(param, 1.0))
		if optimizer.GetTimestep() != i {
			t.Errorf("after step %d, timestep: got %d, want %d", i, optimizer.GetTimestep(), i)
		}
	}

	if final := param.Data().At(0, 0); final >= 1.0 {
		t.Errorf("after 3 Adam steps with positive gradient, parameter should decrease: got %f", final)
	}
}

// TestConvergence_SimpleQuadratic verifies both optimizers minimize
// f(x) = x². The minimum is at x = 0.
func TestConvergence_SimpleQuadratic(t *testing.T) {
	run := func(t *testing.T, opt optim.Optimizer, param *nn.Parameter) {
		for i := 0; i < 100; i++ {
			g := 2.0 * param.Data().At(0, 0)
			opt.Step(scalarGrads(param, g))
		}
		if final := param.Data().At(0, 0); math.Abs(final) > 0.1 {
			t.Errorf("convergence: x = %f, expected close to 0", final)
		}
	}

	t.Run("SGD", func(t *testing.T) {
		param := scalarParam("x", 3.0)
		run(t, optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9}), param)
	})

	t.Run("Adam", func(t *testing.T) {
		param := scalarParam("x", 3.0)
		run(t, optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1}), param)
	})
}

// TestMultipleParameters tests one step over several parameters.
func TestMultipleParameters(t *testing.T) {
	p1 := nn.NewParameter("x1", mat.NewDense(1, 2, []float64{1.0, 2.0}))
	p2 := scalarParam("x2", 3.0)

	optimizer := optim.NewSGD([]*nn.Parameter{p1, p2}, optim.SGDConfig{LR: 0.1})

	grads := map[*autodiff.Value]*mat.Dense{
		p1.Value(): mat.NewDense(1, 2, []float64{1.0, 2.0}),
		p2.Value(): mat.NewDense(1, 1, []float64{0.5}),
	}
	optimizer.Step(grads)

	if got0, got1 := p1.Data().At(0, 0), p1.Data().At(0, 1); !floatEqual(got0, 0.9, 1e-12) || !floatEqual(got1, 1.8, 1e-12) {
		t.Errorf("p1: got [%f, %f], want [0.9, 1.8]", got0, got1)
	}
	if got := p2.Data().At(0, 0); !floatEqual(got, 2.95, 1e-12) {
		t.Errorf("p2: got %f, want 2.95", got)
	}
}

// TestTraining_FixedPointLayer trains a tanh equilibrium cell end to
// end: minimize L = sum(z*)² by gradient descent on W through the
// implicit backward rule. The loss should drop monotonically toward 0.
func TestTraining_FixedPointLayer(t *testing.T) {
	const n = 4
	rng := rand.New(rand.NewSource(5))

	wData := make([]float64, n*n)
	for i := range wData {
		wData[i] = 0.5 * rng.NormFloat64() / math.Sqrt(n)
	}
	xData := make([]float64, n)
	for i := range xData {
		xData[i] = rng.NormFloat64()
	}

	cell := nn.NewTanhCellFrom(mat.NewDense(n, n, wData))
	x := autodiff.NewValue(mat.NewDense(n, 1, xData))
	layer := nn.NewFixedPointLayer(cell, solver.NewAnderson(solver.AndersonConfig{}))
	optimizer := optim.NewAdam(layer.Parameters(), optim.AdamConfig{LR: 0.05})

	lossAt := func() float64 {
		tape := autodiff.NewTape()
		_, res, err := layer.Forward(tape, x)
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		s := mat.Sum(res.Z)
		return s * s
	}

	initial := lossAt()
	for step := 0; step < 60; step++ {
		tape := autodiff.NewTape()
		tape.StartRecording()

		zstar, _, err := layer.Forward(tape, x)
		if err != nil {
			t.Fatalf("step %d: forward: %v", step, err)
		}
		s := tape.Sum(zstar)

		// L = s², so seed the backward pass with dL/ds = 2s.
		seed := mat.NewDense(1, 1, []float64{2 * s.Data().At(0, 0)})
		grads := tape.Backward(s, seed)
		optimizer.Step(grads)
	}
	final := lossAt()

	if final >= initial {
		t.Errorf("training did not reduce loss: initial %f, final %f", initial, final)
	}
	if final > 0.01 {
		t.Errorf("loss after training: got %f, want < 0.01", final)
	}
}
