// Copyright 2026 Deq ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package solver provides fixed-point solvers for equilibrium models.
//
// # Overview
//
// This package contains:
//   - Forward: plain Picard iteration z ← f(z)
//   - Newton: Newton's method on the residual g(z) = f(z) − z
//   - Anderson: Anderson acceleration with a sliding memory window
//   - SolveBatch: independent problems solved concurrently
//
// All solvers share the same contract: iterate up to a hard budget,
// stop when the update residual falls under tolerance, and always
// report the best iterate found even on failure.
//
// # Basic Usage
//
//	import (
//	    "github.com/deq-ml/deq/solver"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    s := solver.NewAnderson(solver.AndersonConfig{})
//	    f := solver.FuncOf(func(z *mat.VecDense) *mat.VecDense {
//	        // ... the update map ...
//	        return z
//	    })
//	    res, err := s.Solve(f, mat.NewVecDense(n, nil))
//	    if err != nil {
//	        // res still holds the best iterate and its residual
//	    }
//	    _ = res.Z
//	}
package solver
