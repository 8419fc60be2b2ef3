package nn

import (
	"math/rand"
)

// Dropout zeroes each element with probability Rate during training and
// rescales the survivors by 1/(1-Rate), so the expected activation is
// unchanged. Outside training it is a no-op.
type Dropout[T Float] struct {
	Rate float64
}

// Forward applies inverted dropout. When training is false or Rate is 0 the
// input tensor is returned unchanged.
func (d *Dropout[T]) Forward(x *Tensor[T], training bool) *Tensor[T] {
	if !training || d.Rate <= 0 {
		return x
	}
	out := NewTensor[T](x.Shape...)
	if d.Rate >= 1 {
		return out
	}

	keep := 1.0 - d.Rate
	scale := T(1.0 / keep)
	for i, v := range x.Data {
		if rand.Float64() < keep {
			out.Data[i] = v * scale
		}
	}
	return out
}
