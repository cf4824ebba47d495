package solver

import "errors"

// Common errors. All are local to a single Solve call; callers decide
// whether to retry with different hyperparameters or initial states.
var (
	ErrDidNotConverge     = errors.New("did not converge within iteration budget")
	ErrSingularSystem     = errors.New("singular or ill-conditioned linear system")
	ErrShapeMismatch      = errors.New("update function must preserve state shape")
	ErrNoJacobian         = errors.New("update function does not provide a jacobian")
	ErrNumericalBreakdown = errors.New("iteration produced non-finite values")
)
