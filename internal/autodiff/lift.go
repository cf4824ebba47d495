package autodiff

import "gonum.org/v1/gonum/mat"

// Lifted wraps a tape-built computation of a single column argument so
// it can serve as a fixed-point update map with an exact Jacobian.
//
// Eval runs the computation without recording. Jacobian records one
// forward pass and then performs one vector-Jacobian sweep per output
// component, so every entry comes from exact reverse-mode
// differentiation rather than finite differences.
type Lifted struct {
	build func(t *Tape, z *Value) *Value
}

// Lift wraps a tape-built computation. The build function must be pure:
// it may only combine z and values it creates on the supplied tape.
func Lift(build func(t *Tape, z *Value) *Value) *Lifted {
	return &Lifted{build: build}
}

// Eval applies the computation to z.
func (l *Lifted) Eval(z *mat.VecDense) *mat.VecDense {
	t := NewTape()
	out := l.build(t, t.Var(ColVector(z)))
	return AsVector(out.Data())
}

// Jacobian computes the exact m×n Jacobian of the computation at z,
// where m is the output length and n the input length.
func (l *Lifted) Jacobian(z *mat.VecDense) *mat.Dense {
	t := NewTape()
	t.StartRecording()

	zv := t.Var(ColVector(z))
	out := l.build(t, zv)

	m, _ := out.Dims()
	n := z.Len()
	jac := mat.NewDense(m, n, nil)

	// Row i of the Jacobian is the VJP of the i-th basis vector.
	for i := 0; i < m; i++ {
		seed := mat.NewDense(m, 1, nil)
		seed.Set(i, 0, 1)

		grads := t.Backward(out, seed)
		if g, ok := grads[zv]; ok {
			for j := 0; j < n; j++ {
				jac.Set(i, j, g.At(j, 0))
			}
		}
	}

	return jac
}
