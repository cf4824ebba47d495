package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
	"github.com/deq-ml/deq/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int // Timestep for bias correction
	m      map[*nn.Parameter]*mat.Dense
	v      map[*nn.Parameter]*mat.Dense
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Running-average coefficients (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over params with default
// hyperparameters where unspecified.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*mat.Dense),
		v:      make(map[*nn.Parameter]*mat.Dense),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient in the map are skipped, but the timestep
// still advances once per call.
func (a *Adam) Step(grads map[*autodiff.Value]*mat.Dense) {
	a.t++

	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		data := param.Data()
		r, c := data.Dims()

		m, ok := a.m[param]
		if !ok {
			m = mat.NewDense(r, c, nil)
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = mat.NewDense(r, c, nil)
			a.v[param] = v
		}

		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := grad.At(i, j)

				mij := a.beta1*m.At(i, j) + (1-a.beta1)*g
				vij := a.beta2*v.At(i, j) + (1-a.beta2)*g*g
				m.Set(i, j, mij)
				v.Set(i, j, vij)

				mHat := mij / biasCorrection1
				vHat := vij / biasCorrection2
				data.Set(i, j, data.At(i, j)-a.lr*mHat/(math.Sqrt(vHat)+a.eps))
			}
		}
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}
