package nn

// =============================================================================
// Highway Layer
// =============================================================================

// Highway is a gated residual transform: H = relu(dense(x)),
// G = sigmoid(dense(x)), output = H*G + x*(1-G).
//
// The gate's bias starts at -1, biasing G toward 0 so the layer passes its
// input through nearly unchanged early in training. Each Highway owns its
// two dense sub-layers; sharing weights between call sites means passing the
// same *Highway, not matching a registry name.
type Highway[T Float] struct {
	Units     int
	Transform *Dense[T]
	Gate      *Dense[T]
}

// NewHighway creates a highway layer for inputs whose channel dimension is
// units wide. Pass the input's channel count to mirror the default of sizing
// the layer to its input.
func NewHighway[T Float](units int) (*Highway[T], error) {
	transform, err := NewDense[T](units, units, ActivationReLU)
	if err != nil {
		return nil, err
	}
	gate, err := NewDense[T](units, units, ActivationSigmoid)
	if err != nil {
		return nil, err
	}
	fill(gate.Bias.Data, T(-1))

	return &Highway[T]{Units: units, Transform: transform, Gate: gate}, nil
}

// Forward applies the gated blend position-wise. Output shape equals input
// shape. When the gate saturates at 1 the output is the transform branch;
// at 0 the input passes through untouched.
func (h *Highway[T]) Forward(x *Tensor[T], training bool) (*Tensor[T], error) {
	if x.Dim(-1) != h.Units {
		return nil, shapeErrorf("highway", "expected %d channels, got shape %v", h.Units, x.Shape)
	}

	transformed, err := h.Transform.Forward(x, training)
	if err != nil {
		return nil, err
	}
	gate, err := h.Gate.Forward(x, training)
	if err != nil {
		return nil, err
	}

	out := NewTensor[T](x.Shape...)
	for i := range out.Data {
		g := gate.Data[i]
		out.Data[i] = transformed.Data[i]*g + x.Data[i]*(1-g)
	}
	return out, nil
}
