package nn

// =============================================================================
// Embedding Lookup
// =============================================================================

// Embedding maps integer ids to learned vectors via an owned lookup table.
//
// When ZeroPad is set, id 0 (the padding token) always maps to the zero
// vector: row 0 is skipped on lookup regardless of what the table stores,
// and EmbeddingBackward never produces a gradient for it.
type Embedding[T Float] struct {
	VocabSize int
	NumUnits  int
	ZeroPad   bool

	// Table has shape (VocabSize, NumUnits), initialized from a truncated
	// normal distribution (mean 0, std 0.1).
	Table *Tensor[T]
}

// NewEmbedding creates an embedding layer with a freshly initialized table.
func NewEmbedding[T Float](vocabSize, numUnits int, zeroPad bool) (*Embedding[T], error) {
	if vocabSize < 1 || numUnits < 1 {
		return nil, shapeErrorf("embed", "vocabSize and numUnits must be >= 1, got %d and %d", vocabSize, numUnits)
	}
	table := NewTensor[T](vocabSize, numUnits)
	truncatedNormal(table.Data, 0.0, 0.1)
	return &Embedding[T]{
		VocabSize: vocabSize,
		NumUnits:  numUnits,
		ZeroPad:   zeroPad,
		Table:     table,
	}, nil
}

// Forward looks up each id as a row of the table. shape describes the layout
// of ids (e.g. batch, time); when omitted, ids is treated as a flat vector.
// The output has shape shape + [NumUnits].
//
// Any id outside [0, VocabSize) fails with an IndexError.
func (e *Embedding[T]) Forward(ids []int, shape ...int) (*Tensor[T], error) {
	if len(shape) == 0 {
		shape = []int{len(ids)}
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(ids) {
		return nil, shapeErrorf("embed", "id shape %v does not match %d ids", shape, len(ids))
	}

	outShape := append(append([]int{}, shape...), e.NumUnits)
	out := NewTensor[T](outShape...)

	for i, id := range ids {
		if id < 0 || id >= e.VocabSize {
			return nil, &IndexError{Op: "embed", Index: id, Size: e.VocabSize}
		}
		if e.ZeroPad && id == 0 {
			continue // row 0 stays the zero vector
		}
		row := e.Table.Data[id*e.NumUnits : (id+1)*e.NumUnits]
		copy(out.Data[i*e.NumUnits:(i+1)*e.NumUnits], row)
	}

	return out, nil
}

// EmbeddingBackward accumulates table gradients from gradOutput. Only rows
// that were looked up receive gradient; with zeroPad, row 0 receives none.
func EmbeddingBackward[T Float](gradOutput *Tensor[T], ids []int, vocabSize, numUnits int, zeroPad bool) *Tensor[T] {
	gradTable := NewTensor[T](vocabSize, numUnits)

	for i, id := range ids {
		if id < 0 || id >= vocabSize {
			continue
		}
		if zeroPad && id == 0 {
			continue
		}
		dst := gradTable.Data[id*numUnits : (id+1)*numUnits]
		src := gradOutput.Data[i*numUnits : (i+1)*numUnits]
		for j := range dst {
			dst[j] += src[j]
		}
	}

	return gradTable
}
