package nn

import (
	"github.com/ajroetker/go-highway/hwy/contrib/matvec"
)

// =============================================================================
// Dense (fully-connected) Layer
// =============================================================================

// Dense applies an owned weight matrix and bias to the channel (last) axis,
// position by position. Weights are stored (OutUnits, InUnits) row-major so
// each output unit's weights form one contiguous row.
type Dense[T Float] struct {
	InUnits    int
	OutUnits   int
	Activation ActivationType

	Weights *Tensor[T] // (OutUnits, InUnits)
	Bias    *Tensor[T] // (OutUnits)
}

// NewDense creates a dense layer with He-initialized weights and zero bias.
func NewDense[T Float](inUnits, outUnits int, activation ActivationType) (*Dense[T], error) {
	if inUnits < 1 || outUnits < 1 {
		return nil, shapeErrorf("dense", "unit counts must be >= 1, got %d and %d", inUnits, outUnits)
	}
	weights := NewTensor[T](outUnits, inUnits)
	heInit(weights.Data, inUnits)
	return &Dense[T]{
		InUnits:    inUnits,
		OutUnits:   outUnits,
		Activation: activation,
		Weights:    weights,
		Bias:       NewTensor[T](outUnits),
	}, nil
}

// Forward applies the layer to every position of x, whose last dimension
// must equal InUnits. The output keeps x's shape with the last dimension
// replaced by OutUnits.
func (d *Dense[T]) Forward(x *Tensor[T], training bool) (*Tensor[T], error) {
	if x.Rank() < 1 || x.Dim(-1) != d.InUnits {
		return nil, shapeErrorf("dense", "expected last dimension %d, got shape %v", d.InUnits, x.Shape)
	}

	outShape := append([]int{}, x.Shape...)
	outShape[len(outShape)-1] = d.OutUnits
	out := NewTensor[T](outShape...)

	rows := x.Size() / d.InUnits
	for r := 0; r < rows; r++ {
		in := x.Data[r*d.InUnits : (r+1)*d.InUnits]
		dst := out.Data[r*d.OutUnits : (r+1)*d.OutUnits]
		matVec(d.Weights.Data, d.OutUnits, d.InUnits, in, dst)
		for o := 0; o < d.OutUnits; o++ {
			dst[o] = Activate(dst[o]+d.Bias.Data[o], d.Activation)
		}
	}

	return out, nil
}

// matVec computes result = m @ v for a row-major (rows, cols) matrix,
// dispatching to the SIMD kernels for the plain float types.
func matVec[T Float](m []T, rows, cols int, v, result []T) {
	if mm, ok := any(m).([]float32); ok {
		matvec.MatVec(mm, rows, cols, any(v).([]float32), any(result).([]float32))
		return
	}
	if mm, ok := any(m).([]float64); ok {
		matvec.MatVec(mm, rows, cols, any(v).([]float64), any(result).([]float64))
		return
	}
	// Named float types fall back to the scalar loop.
	for r := 0; r < rows; r++ {
		row := m[r*cols : (r+1)*cols]
		var sum float64
		for i, w := range row {
			sum += float64(w) * float64(v[i])
		}
		result[r] = T(sum)
	}
}

// DenseForward is the layer-free kernel: it returns both the pre-activation
// values (needed by DenseBackward) and the activated output.
func DenseForward[T Float](input, weights, bias *Tensor[T], inUnits, outUnits int, activation ActivationType) (preAct, postAct *Tensor[T]) {
	rows := input.Size() / inUnits
	preAct = NewTensor[T](rows, outUnits)
	postAct = NewTensor[T](rows, outUnits)

	for r := 0; r < rows; r++ {
		in := input.Data[r*inUnits : (r+1)*inUnits]
		pre := preAct.Data[r*outUnits : (r+1)*outUnits]
		matVec(weights.Data, outUnits, inUnits, in, pre)
		for o := 0; o < outUnits; o++ {
			if bias != nil {
				pre[o] += bias.Data[o]
			}
			postAct.Data[r*outUnits+o] = Activate(pre[o], activation)
		}
	}

	return preAct, postAct
}

// DenseBackward computes gradients for a dense layer given the upstream
// gradient and the stored pre-activation values.
func DenseBackward[T Float](gradOutput, input, preAct, weights *Tensor[T], inUnits, outUnits int, activation ActivationType) (gradInput, gradWeights, gradBias *Tensor[T]) {
	rows := input.Size() / inUnits
	gradInput = NewTensor[T](input.Shape...)
	gradWeights = NewTensor[T](outUnits, inUnits)
	gradBias = NewTensor[T](outUnits)

	for r := 0; r < rows; r++ {
		for o := 0; o < outUnits; o++ {
			outIdx := r*outUnits + o
			grad := gradOutput.Data[outIdx] * ActivateDerivative(preAct.Data[outIdx], activation)

			gradBias.Data[o] += grad
			wRow := weights.Data[o*inUnits : (o+1)*inUnits]
			gRow := gradWeights.Data[o*inUnits : (o+1)*inUnits]
			for i := 0; i < inUnits; i++ {
				inIdx := r*inUnits + i
				gRow[i] += input.Data[inIdx] * grad
				gradInput.Data[inIdx] += wRow[i] * grad
			}
		}
	}

	return gradInput, gradWeights, gradBias
}
