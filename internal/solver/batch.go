package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/parallel"
)

// SolveBatch solves len(fs) independent fixed-point problems with the
// same solver, fanning them across goroutines. Every problem owns its
// iterate and history buffers, so concurrent solves are safe as long as
// the update functions themselves are reentrant.
//
// The returned slice is positional: results[i] pairs with fs[i] and
// zInits[i]. Per-problem failures are joined into a single error;
// results for the failed entries still carry their best-effort iterate
// where the solver produced one.
func SolveBatch(s Solver, fs []Func, zInits []*mat.VecDense) ([]*Result, error) {
	if len(fs) != len(zInits) {
		return nil, fmt.Errorf("solver: %d update functions for %d initial states: %w",
			len(fs), len(zInits), ErrShapeMismatch)
	}

	results := make([]*Result, len(fs))
	errs := make([]error, len(fs))

	parallel.For(len(fs), func(i int) {
		res, err := s.Solve(fs[i], zInits[i])
		results[i] = res
		if err != nil {
			errs[i] = fmt.Errorf("problem %d: %w", i, err)
		}
	}, parallel.DefaultConfig())

	return results, errors.Join(errs...)
}
