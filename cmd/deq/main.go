// Package main provides the Deq ML Framework CLI.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/deq-ml/deq/autodiff"
	"github.com/deq-ml/deq/nn"
	"github.com/deq-ml/deq/solver"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Deq ML Framework %s\n", version)
	case "demo":
		if err := runDemo(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "deq demo:", err)
			os.Exit(1)
		}
	case "plot":
		if err := runPlot(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "deq plot:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Deq ML Framework - Equilibrium Models for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Solve a tanh equilibrium with every solver")
	fmt.Println("  plot       Write the solvers' residual curves to a PNG")
}

// scenario binds a random contractive tanh cell into a solvable update
// map: f(z) = tanh(W·z + x) with W ~ N(0, 1/(4n)).
func scenario(n int, seed int64) solver.Func {
	rng := rand.New(rand.NewSource(seed))

	wData := make([]float64, n*n)
	for i := range wData {
		wData[i] = 0.5 * rng.NormFloat64() / math.Sqrt(float64(n))
	}
	xData := make([]float64, n)
	for i := range xData {
		xData[i] = rng.NormFloat64()
	}

	cell := nn.NewTanhCellFrom(mat.NewDense(n, n, wData))
	x := autodiff.NewValue(mat.NewDense(n, 1, xData))

	return autodiff.Lift(func(t *autodiff.Tape, z *autodiff.Value) *autodiff.Value {
		return cell.Apply(t, x, z)
	})
}

func solvers(cfg solver.Config) map[string]solver.Solver {
	return map[string]solver.Solver{
		"forward":  solver.NewForward(cfg),
		"newton":   solver.NewNewton(cfg),
		"anderson": solver.NewAnderson(solver.AndersonConfig{Config: cfg}),
	}
}

func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	n := fs.Int("n", 10, "state dimension")
	seed := fs.Int64("seed", 1, "random seed")
	tol := fs.Float64("tol", solver.DefaultTol, "convergence tolerance")
	maxIter := fs.Int("max-iter", solver.DefaultMaxIter, "iteration budget")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := scenario(*n, *seed)
	for _, name := range []string{"forward", "newton", "anderson"} {
		s := solvers(solver.Config{Tol: *tol, MaxIter: *maxIter})[name]
		res, err := s.Solve(f, mat.NewVecDense(*n, nil))
		if err != nil {
			fmt.Printf("%-9s error: %v\n", name, err)
			continue
		}
		fmt.Printf("%-9s %3d iterations, residual %.3e\n", name, res.Iterations, res.Residual)
	}
	return nil
}

func runPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	n := fs.Int("n", 10, "state dimension")
	seed := fs.Int64("seed", 1, "random seed")
	out := fs.String("o", "residuals.png", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := scenario(*n, *seed)

	p := plot.New()
	p.Title.Text = "Fixed-point solver convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "residual"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	i := 0
	for _, name := range []string{"forward", "newton", "anderson"} {
		s := solvers(solver.Config{})[name]
		res, err := s.Solve(f, mat.NewVecDense(*n, nil))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		pts := make(plotter.XYs, len(res.Residuals))
		for k, r := range res.Residuals {
			// Log scale cannot place a zero residual.
			pts[k].X = float64(k + 1)
			pts[k].Y = math.Max(r, 1e-16)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
		i++
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *out); err != nil {
		return err
	}
	fmt.Println("wrote", *out)
	return nil
}
