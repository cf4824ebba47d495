package optim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deq-ml/deq/internal/autodiff"
	"github.com/deq-ml/deq/internal/nn"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*mat.Dense
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*mat.Dense),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient in the map are skipped.
func (s *SGD) Step(grads map[*autodiff.Value]*mat.Dense) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		update := grad
		if s.momentum != 0 {
			r, c := grad.Dims()
			velocity, ok := s.velocities[param]
			if !ok {
				velocity = mat.NewDense(r, c, nil)
				s.velocities[param] = velocity
			}
			// velocity = momentum * velocity + grad
			velocity.Scale(s.momentum, velocity)
			velocity.Add(velocity, grad)
			update = velocity
		}

		// param -= lr * update, in place.
		data := param.Data()
		r, c := data.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				data.Set(i, j, data.At(i, j)-s.lr*update.At(i, j))
			}
		}
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
