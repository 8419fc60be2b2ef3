package nn

import (
	"math"
)

// ActivationType selects the activation applied after a layer's linear part.
type ActivationType int

const (
	ActivationNone      ActivationType = 0 // identity
	ActivationReLU      ActivationType = 1 // max(0, v)
	ActivationSigmoid   ActivationType = 2 // 1 / (1 + exp(-v))
	ActivationTanh      ActivationType = 3 // tanh(v)
	ActivationSoftplus  ActivationType = 4 // log(1 + exp(v))
	ActivationLeakyReLU ActivationType = 5 // v if v >= 0, else v * 0.1
)

// Activate applies the activation function to a single value.
func Activate[T Float](v T, activation ActivationType) T {
	switch activation {
	case ActivationReLU:
		if v < 0 {
			return 0
		}
		return v
	case ActivationSigmoid:
		return T(1.0 / (1.0 + math.Exp(float64(-v))))
	case ActivationTanh:
		return T(math.Tanh(float64(v)))
	case ActivationSoftplus:
		return T(math.Log(1.0 + math.Exp(float64(v))))
	case ActivationLeakyReLU:
		if v < 0 {
			return v * T(0.1)
		}
		return v
	default:
		return v
	}
}

// ActivateDerivative computes the activation derivative with respect to the
// PRE-activation value.
func ActivateDerivative[T Float](preAct T, activation ActivationType) T {
	switch activation {
	case ActivationReLU:
		if preAct > 0 {
			return 1
		}
		return 0
	case ActivationSigmoid:
		sig := 1.0 / (1.0 + math.Exp(float64(-preAct)))
		return T(sig * (1.0 - sig))
	case ActivationTanh:
		t := math.Tanh(float64(preAct))
		return T(1.0 - t*t)
	case ActivationSoftplus:
		return T(1.0 / (1.0 + math.Exp(float64(-preAct))))
	case ActivationLeakyReLU:
		if preAct >= 0 {
			return 1
		}
		return T(0.1)
	default:
		return 1
	}
}

// activateTensor applies the activation element-wise in place.
func activateTensor[T Float](t *Tensor[T], activation ActivationType) {
	if activation == ActivationNone {
		return
	}
	for i, v := range t.Data {
		t.Data[i] = Activate(v, activation)
	}
}
