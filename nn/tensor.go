package nn

// Float is the element constraint for all tensors in this package.
type Float interface {
	~float32 | ~float64
}

// Tensor is a dense multi-dimensional array stored flat in row-major order.
// Sequence data uses the layout [batch, time, channels].
type Tensor[T Float] struct {
	Data  []T
	Shape []int // row-major
}

// NewTensor creates a zero-filled tensor with the given shape.
func NewTensor[T Float](shape ...int) *Tensor[T] {
	n := 1
	for _, d := range shape {
		n *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor[T]{Data: make([]T, n), Shape: s}
}

// NewTensorFromSlice wraps an existing slice as a tensor.
// The slice is used directly, not copied.
func NewTensorFromSlice[T Float](data []T, shape ...int) *Tensor[T] {
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor[T]{Data: data, Shape: s}
}

// Size returns the total number of elements.
func (t *Tensor[T]) Size() int {
	return len(t.Data)
}

// Rank returns the number of dimensions.
func (t *Tensor[T]) Rank() int {
	return len(t.Shape)
}

// Dim returns the size of dimension i. Negative indices count from the end,
// so Dim(-1) is the channel (last) dimension.
func (t *Tensor[T]) Dim(i int) int {
	if i < 0 {
		i += len(t.Shape)
	}
	if i < 0 || i >= len(t.Shape) {
		return 0
	}
	return t.Shape[i]
}

// Clone returns a deep copy.
func (t *Tensor[T]) Clone() *Tensor[T] {
	out := NewTensor[T](t.Shape...)
	copy(out.Data, t.Data)
	return out
}

// Reshape returns a view of the same data with a new shape.
// Returns nil if the element count does not match.
func (t *Tensor[T]) Reshape(shape ...int) *Tensor[T] {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(t.Data) {
		return nil
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor[T]{Data: t.Data, Shape: s}
}
