package autodiff

import "gonum.org/v1/gonum/mat"

// Value is a node in the computation graph. It wraps a dense matrix;
// column vectors are represented as n×1 matrices. Node identity (the
// *Value pointer) is what gradients are keyed by, so the same Value
// used twice accumulates both contributions.
type Value struct {
	data *mat.Dense
}

// NewValue wraps a dense matrix as a leaf value. The identity is
// stable, so the same Value can appear on many tapes — parameters rely
// on this to key their gradients consistently.
func NewValue(data *mat.Dense) *Value {
	return &Value{data: data}
}

// Data returns the underlying dense matrix.
func (v *Value) Data() *mat.Dense {
	return v.data
}

// Dims returns the dimensions of the value.
func (v *Value) Dims() (r, c int) {
	return v.data.Dims()
}

// ColVector copies a vector into a fresh n×1 column value suitable for
// tape operations.
func ColVector(v *mat.VecDense) *mat.Dense {
	n := v.Len()
	data := make([]float64, n)
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return mat.NewDense(n, 1, data)
}

// AsVector copies an n×1 column back into a vector.
func AsVector(m *mat.Dense) *mat.VecDense {
	r, _ := m.Dims()
	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		out.SetVec(i, m.At(i, 0))
	}
	return out
}
