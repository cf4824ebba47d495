package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
	"github.com/deq-ml/deq/internal/solver"
)

// linearization is one taped application of a cell at a converged fixed
// point. All implicit derivatives need only this single evaluation: the
// partial derivatives of f at z*, never at earlier iterates.
type linearization struct {
	tape *autodiff.Tape
	zv   *autodiff.Value // z leaf
	out  *autodiff.Value // f(x, z*)
	n    int
}

func linearize(cell Cell, x *autodiff.Value, zstar *mat.VecDense) *linearization {
	t := autodiff.NewTape()
	t.StartRecording()
	zv := autodiff.NewValue(autodiff.ColVector(zstar))
	out := cell.Apply(t, x, zv)
	return &linearization{tape: t, zv: zv, out: out, n: zstar.Len()}
}

// vjp runs one backward sweep with the given seed on the recorded
// application.
func (l *linearization) vjp(seed *mat.Dense) map[*autodiff.Value]*mat.Dense {
	return l.tape.Backward(l.out, seed)
}

// jacobianZ assembles the exact n×n ∂f/∂z at the fixed point, one
// seeded VJP per row.
func (l *linearization) jacobianZ() *mat.Dense {
	jz := mat.NewDense(l.n, l.n, nil)
	for i := 0; i < l.n; i++ {
		seed := mat.NewDense(l.n, 1, nil)
		seed.Set(i, 0, 1)
		if g, ok := l.vjp(seed)[l.zv]; ok {
			for j := 0; j < l.n; j++ {
				jz.Set(i, j, g.At(j, 0))
			}
		}
	}
	return jz
}

// ImplicitVJP pulls an upstream gradient g = ∂L/∂z* back to the cell
// input and parameters via the implicit function theorem: it solves
//
//	(I − ∂f/∂z)ᵀ·u = g
//
// at the fixed point and then runs a single VJP through one application
// of f seeded with u. Memory cost is independent of how many iterations
// the solver took.
//
// The returned map is keyed like Tape.Backward: the x value and each
// parameter value of the cell.
func ImplicitVJP(cell Cell, x *autodiff.Value, zstar *mat.VecDense, outputGrad *mat.Dense) (map[*autodiff.Value]*mat.Dense, error) {
	lin := linearize(cell, x, zstar)

	a := implicitSystem(lin.jacobianZ()) // I − J_z

	g := mat.NewVecDense(lin.n, nil)
	for i := 0; i < lin.n; i++ {
		g.SetVec(i, outputGrad.At(i, 0))
	}

	var lu mat.LU
	lu.Factorize(a)
	u := mat.NewVecDense(lin.n, nil)
	if err := lu.SolveVecTo(u, true, g); err != nil {
		return nil, fmt.Errorf("nn: implicit backward solve: %v: %w", err, solver.ErrSingularSystem)
	}

	grads := lin.vjp(autodiff.ColVector(u))
	delete(grads, lin.zv) // The state gradient is internal to the rule.
	return grads, nil
}

// ImplicitJVP computes the directional derivative of the solution map
// z*(p) in a parameter direction v: it solves
//
//	(I − ∂f/∂z)·u = (∂f/∂p)·v
//
// at the fixed point. The right-hand side comes from the same n seeded
// VJP sweeps that assemble ∂f/∂z, so everything is exact.
func ImplicitJVP(cell Cell, x *autodiff.Value, zstar *mat.VecDense, p *Parameter, v *mat.Dense) (*mat.VecDense, error) {
	lin := linearize(cell, x, zstar)

	jz := mat.NewDense(lin.n, lin.n, nil)
	rhs := mat.NewVecDense(lin.n, nil)
	for i := 0; i < lin.n; i++ {
		seed := mat.NewDense(lin.n, 1, nil)
		seed.Set(i, 0, 1)
		grads := lin.vjp(seed)

		if g, ok := grads[lin.zv]; ok {
			for j := 0; j < lin.n; j++ {
				jz.Set(i, j, g.At(j, 0))
			}
		}
		// rhs_i = ⟨∂f_i/∂p, v⟩.
		if gp, ok := grads[p.Value()]; ok {
			rhs.SetVec(i, mat.Dot(vecView(gp), vecView(v)))
		}
	}

	a := implicitSystem(jz)

	var lu mat.LU
	lu.Factorize(a)
	u := mat.NewVecDense(lin.n, nil)
	if err := lu.SolveVecTo(u, false, rhs); err != nil {
		return nil, fmt.Errorf("nn: implicit forward solve: %v: %w", err, solver.ErrSingularSystem)
	}
	return u, nil
}

// implicitSystem builds I − J_z.
func implicitSystem(jz *mat.Dense) *mat.Dense {
	n, _ := jz.Dims()
	a := mat.NewDense(n, n, nil)
	a.Scale(-1, jz)
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+1)
	}
	return a
}

// vecView flattens a dense matrix row-major into a vector.
func vecView(m *mat.Dense) *mat.VecDense {
	r, c := m.Dims()
	out := mat.NewVecDense(r*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.SetVec(i*c+j, m.At(i, j))
		}
	}
	return out
}
