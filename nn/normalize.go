package nn

import (
	"math"
)

// NormMode selects the normalization strategy. The mode is fixed at
// construction rather than re-dispatched per call.
type NormMode int

const (
	NormNone     NormMode = 0 // identity
	NormBatch    NormMode = 1 // normalize over all axes except channels
	NormLayer    NormMode = 2 // normalize over the channel (last) axis
	NormInstance NormMode = 3 // normalize over the time axis (axis 1)
)

// String returns the string representation of the norm mode.
func (m NormMode) String() string {
	switch m {
	case NormNone:
		return "none"
	case NormBatch:
		return "batch"
	case NormLayer:
		return "layer"
	case NormInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Norm normalizes features according to its mode.
//
// Layer and instance modes own per-channel Gamma (scale, init ones) and Beta
// (shift, init zeros). Batch mode owns its affine Scale/Shift plus running
// mean/variance accumulated while training and used unchanged at inference.
//
// With Masking set (layer/instance only), any time position whose raw input
// vector sums to exactly zero stays exactly zero after normalization, so
// explicit padding positions survive the normalize step.
type Norm[T Float] struct {
	Mode     NormMode
	Channels int
	Epsilon  float64
	Momentum float64 // batch-mode running-stat decay
	Masking  bool

	Gamma *Tensor[T] // layer/instance scale, shape (Channels)
	Beta  *Tensor[T] // layer/instance shift, shape (Channels)

	Scale       *Tensor[T] // batch-mode scale, shape (Channels)
	Shift       *Tensor[T] // batch-mode shift, shape (Channels)
	RunningMean []float64
	RunningVar  []float64
}

// NewNorm creates a normalizer for inputs whose channel (last) dimension is
// channels wide.
func NewNorm[T Float](mode NormMode, channels int) (*Norm[T], error) {
	if channels < 1 {
		return nil, shapeErrorf("normalize", "channels must be >= 1, got %d", channels)
	}

	n := &Norm[T]{Mode: mode, Channels: channels, Momentum: 0.99}

	switch mode {
	case NormBatch:
		n.Epsilon = 1e-3
		n.Scale = NewTensor[T](channels)
		n.Shift = NewTensor[T](channels)
		fill(n.Scale.Data, T(1))
		n.RunningMean = make([]float64, channels)
		n.RunningVar = make([]float64, channels)
		for i := range n.RunningVar {
			n.RunningVar[i] = 1
		}
	case NormLayer, NormInstance:
		n.Epsilon = 1e-8
		n.Gamma = NewTensor[T](channels)
		n.Beta = NewTensor[T](channels)
		fill(n.Gamma.Data, T(1))
	}

	return n, nil
}

// Forward normalizes x and returns a tensor of the same shape. An
// out-of-range mode value (only reachable by casting an arbitrary integer)
// falls back to identity rather than failing.
func (n *Norm[T]) Forward(x *Tensor[T], training bool) (*Tensor[T], error) {
	switch n.Mode {
	case NormBatch:
		return n.batchNorm(x, training)
	case NormLayer:
		return n.layerNorm(x)
	case NormInstance:
		return n.instanceNorm(x)
	default:
		return x, nil
	}
}

// =============================================================================
// Batch Normalization
// =============================================================================

func (n *Norm[T]) batchNorm(x *Tensor[T], training bool) (*Tensor[T], error) {
	rank := x.Rank()
	if rank < 2 {
		return nil, shapeErrorf("normalize", "batch mode expects rank >= 2, got %d", rank)
	}
	if x.Dim(-1) != n.Channels {
		return nil, shapeErrorf("normalize", "expected %d channels, got %d", n.Channels, x.Dim(-1))
	}

	mean := n.RunningMean
	variance := n.RunningVar
	if training {
		if rank <= 4 {
			// Ranks 2 and 3 are promoted to rank 4 by inserting singleton
			// axes, which leaves the flat row-major buffer untouched; the
			// NHWC kernel then reduces over N*H*W per channel in one
			// linear sweep.
			mean, variance = batchStatsNHWC(x.Data, n.Channels)
		} else {
			mean, variance = batchStatsGeneral(x.Data, n.Channels)
		}
		for c := 0; c < n.Channels; c++ {
			n.RunningMean[c] = n.Momentum*n.RunningMean[c] + (1-n.Momentum)*mean[c]
			n.RunningVar[c] = n.Momentum*n.RunningVar[c] + (1-n.Momentum)*variance[c]
		}
	}

	out := NewTensor[T](x.Shape...)
	for i, v := range x.Data {
		c := i % n.Channels
		normalized := (float64(v) - mean[c]) / math.Sqrt(variance[c]+n.Epsilon)
		out.Data[i] = T(normalized*float64(n.Scale.Data[c]) + float64(n.Shift.Data[c]))
	}
	return out, nil
}

// batchStatsNHWC computes per-channel mean and population variance by
// sweeping the rank-4 NHWC view linearly, channel index carried alongside.
func batchStatsNHWC[T Float](data []T, channels int) (mean, variance []float64) {
	mean = make([]float64, channels)
	variance = make([]float64, channels)
	rows := len(data) / channels

	idx := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < channels; c++ {
			mean[c] += float64(data[idx])
			idx++
		}
	}
	for c := range mean {
		mean[c] /= float64(rows)
	}

	idx = 0
	for r := 0; r < rows; r++ {
		for c := 0; c < channels; c++ {
			diff := float64(data[idx]) - mean[c]
			variance[c] += diff * diff
			idx++
		}
	}
	for c := range variance {
		variance[c] /= float64(rows)
	}
	return mean, variance
}

// batchStatsGeneral is the slow-path fallback for ranks outside {2, 3, 4}:
// same per-channel reduction, channel recovered by modulo indexing.
func batchStatsGeneral[T Float](data []T, channels int) (mean, variance []float64) {
	mean = make([]float64, channels)
	variance = make([]float64, channels)
	rows := len(data) / channels

	for i, v := range data {
		mean[i%channels] += float64(v)
	}
	for c := range mean {
		mean[c] /= float64(rows)
	}

	for i, v := range data {
		diff := float64(v) - mean[i%channels]
		variance[i%channels] += diff * diff
	}
	for c := range variance {
		variance[c] /= float64(rows)
	}
	return mean, variance
}

// =============================================================================
// Layer Normalization
// =============================================================================

func (n *Norm[T]) layerNorm(x *Tensor[T]) (*Tensor[T], error) {
	if x.Dim(-1) != n.Channels {
		return nil, shapeErrorf("normalize", "expected %d channels, got %d", n.Channels, x.Dim(-1))
	}

	out := NewTensor[T](x.Shape...)
	rows := x.Size() / n.Channels

	for r := 0; r < rows; r++ {
		start := r * n.Channels
		end := start + n.Channels
		row := x.Data[start:end]

		if n.Masking && rowSum(row) == 0 {
			continue // padding position stays exactly zero
		}

		mean, variance := moments(row)
		invStd := 1.0 / math.Sqrt(variance+n.Epsilon)
		for i, v := range row {
			normalized := (float64(v) - mean) * invStd
			out.Data[start+i] = T(normalized*float64(n.Gamma.Data[i]) + float64(n.Beta.Data[i]))
		}
	}

	return out, nil
}

// =============================================================================
// Instance Normalization
// =============================================================================

func (n *Norm[T]) instanceNorm(x *Tensor[T]) (*Tensor[T], error) {
	if x.Rank() != 3 {
		return nil, shapeErrorf("normalize", "instance mode expects rank-3 input (batch, time, channels), got rank %d", x.Rank())
	}
	if x.Dim(-1) != n.Channels {
		return nil, shapeErrorf("normalize", "expected %d channels, got %d", n.Channels, x.Dim(-1))
	}

	batch, steps := x.Shape[0], x.Shape[1]
	out := NewTensor[T](x.Shape...)

	for b := 0; b < batch; b++ {
		base := b * steps * n.Channels
		for c := 0; c < n.Channels; c++ {
			// Reduction axis is time: one mean/variance per (batch, channel).
			var sum float64
			for t := 0; t < steps; t++ {
				sum += float64(x.Data[base+t*n.Channels+c])
			}
			mean := sum / float64(steps)

			var variance float64
			for t := 0; t < steps; t++ {
				diff := float64(x.Data[base+t*n.Channels+c]) - mean
				variance += diff * diff
			}
			variance /= float64(steps)

			invStd := 1.0 / math.Sqrt(variance+n.Epsilon)
			for t := 0; t < steps; t++ {
				idx := base + t*n.Channels + c
				normalized := (float64(x.Data[idx]) - mean) * invStd
				out.Data[idx] = T(normalized*float64(n.Gamma.Data[c]) + float64(n.Beta.Data[c]))
			}
		}

		if n.Masking {
			for t := 0; t < steps; t++ {
				start := base + t*n.Channels
				if rowSum(x.Data[start:start+n.Channels]) == 0 {
					clearRow(out.Data[start : start+n.Channels])
				}
			}
		}
	}

	return out, nil
}

// =============================================================================
// Shared helpers
// =============================================================================

// moments computes mean and population variance with float64 accumulation.
func moments[T Float](row []T) (mean, variance float64) {
	for _, v := range row {
		mean += float64(v)
	}
	mean /= float64(len(row))

	for _, v := range row {
		diff := float64(v) - mean
		variance += diff * diff
	}
	variance /= float64(len(row))
	return mean, variance
}

func rowSum[T Float](row []T) float64 {
	var sum float64
	for _, v := range row {
		sum += float64(v)
	}
	return sum
}

func clearRow[T Float](row []T) {
	for i := range row {
		row[i] = 0
	}
}

// LayerNormBackward computes gradients for layer normalization (pre-masking)
// over rows of normSize contiguous elements.
//
//	dx = invStd * (dxhat - mean(dxhat) - xhat * mean(dxhat * xhat))
func LayerNormBackward[T Float](input, gradOutput, gamma *Tensor[T], normSize int, epsilon float64) (gradInput, gradGamma, gradBeta *Tensor[T]) {
	if epsilon == 0 {
		epsilon = 1e-8
	}

	gradInput = NewTensor[T](input.Shape...)
	gradGamma = NewTensor[T](normSize)
	gradBeta = NewTensor[T](normSize)

	rows := input.Size() / normSize
	for r := 0; r < rows; r++ {
		start := r * normSize
		row := input.Data[start : start+normSize]

		mean, variance := moments(row)
		invStd := 1.0 / math.Sqrt(variance+epsilon)

		var sumDxhat, sumDxhatXhat float64
		for i, v := range row {
			dy := float64(gradOutput.Data[start+i])
			xhat := (float64(v) - mean) * invStd

			gradBeta.Data[i] += T(dy)
			gradGamma.Data[i] += T(dy * xhat)

			g := 1.0
			if gamma != nil {
				g = float64(gamma.Data[i])
			}
			dxhat := dy * g
			sumDxhat += dxhat
			sumDxhatXhat += dxhat * xhat
		}

		meanDxhat := sumDxhat / float64(normSize)
		meanDxhatXhat := sumDxhatXhat / float64(normSize)

		for i, v := range row {
			dy := float64(gradOutput.Data[start+i])
			g := 1.0
			if gamma != nil {
				g = float64(gamma.Data[i])
			}
			xhat := (float64(v) - mean) * invStd
			gradInput.Data[start+i] = T(invStd * (dy*g - meanDxhat - xhat*meanDxhatXhat))
		}
	}

	return gradInput, gradGamma, gradBeta
}
