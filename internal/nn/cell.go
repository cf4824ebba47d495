package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
)

// TanhCell is the classic equilibrium cell f(W, x, z) = tanh(W·z + x)
// with a single n×n weight matrix.
type TanhCell struct {
	n      int
	weight *Parameter
}

// NewTanhCell creates a tanh cell with W ~ N(0, 1/n), the scaling that
// keeps the update map contractive for typical inputs.
func NewTanhCell(n int, rng *rand.Rand) *TanhCell {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = rng.NormFloat64() / math.Sqrt(float64(n))
	}
	return NewTanhCellFrom(mat.NewDense(n, n, data))
}

// NewTanhCellFrom creates a tanh cell around an existing square weight
// matrix.
func NewTanhCellFrom(w *mat.Dense) *TanhCell {
	n, _ := w.Dims()
	return &TanhCell{
		n:      n,
		weight: NewParameter("weight", w),
	}
}

// Apply builds tanh(W·z + x) on the tape.
func (c *TanhCell) Apply(t *autodiff.Tape, x, z *autodiff.Value) *autodiff.Value {
	return t.Tanh(t.Add(t.MatVec(c.weight.value, z), x))
}

// Parameters returns the trainable parameters of this cell.
func (c *TanhCell) Parameters() []*Parameter {
	return []*Parameter{c.weight}
}

// Weight returns the weight parameter.
func (c *TanhCell) Weight() *Parameter { return c.weight }

// Size returns the state dimension n.
func (c *TanhCell) Size() int { return c.n }
