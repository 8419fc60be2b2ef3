package nn

// Block is any layer that transforms a tensor. All blocks in this package
// are pure functions of (input, owned parameters); the training flag only
// switches dropout and batch-norm statistics handling.
type Block[T Float] interface {
	Forward(x *Tensor[T], training bool) (*Tensor[T], error)
}

// Sequential chains blocks, feeding each output into the next.
type Sequential[T Float] struct {
	Blocks []Block[T]
}

// NewSequential creates a sequential pipeline.
func NewSequential[T Float](blocks ...Block[T]) *Sequential[T] {
	return &Sequential[T]{Blocks: blocks}
}

// Forward runs the blocks in order, stopping at the first error.
func (s *Sequential[T]) Forward(x *Tensor[T], training bool) (*Tensor[T], error) {
	var err error
	for _, b := range s.Blocks {
		if x, err = b.Forward(x, training); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Residual wraps a block with a skip connection: output = x + Body(x).
// The body must preserve the input shape.
type Residual[T Float] struct {
	Body Block[T]
}

// Forward adds the body's output to its input element-wise.
func (r *Residual[T]) Forward(x *Tensor[T], training bool) (*Tensor[T], error) {
	y, err := r.Body.Forward(x, training)
	if err != nil {
		return nil, err
	}
	if len(y.Data) != len(x.Data) {
		return nil, shapeErrorf("residual", "body changed shape from %v to %v", x.Shape, y.Shape)
	}

	out := NewTensor[T](x.Shape...)
	for i := range out.Data {
		out.Data[i] = x.Data[i] + y.Data[i]
	}
	return out, nil
}
