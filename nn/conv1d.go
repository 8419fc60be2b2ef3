package nn

// PadMode selects how the time axis is padded before convolving.
type PadMode int

const (
	PadSame   PadMode = 0 // zero-pad so output length equals input length
	PadValid  PadMode = 1 // no padding; output shrinks by (size-1)*rate
	PadCausal PadMode = 2 // left-pad (size-1)*rate zeros, then valid
)

// String returns the string representation of the pad mode.
func (p PadMode) String() string {
	switch p {
	case PadSame:
		return "same"
	case PadValid:
		return "valid"
	case PadCausal:
		return "causal"
	default:
		return "unknown"
	}
}

// Conv1DConfig configures a Conv1D block. Zero values select the defaults:
// Filters 0 means "same as input channels", Size and Rate 0 mean 1, and the
// bias is on unless NoBias is set.
type Conv1DConfig struct {
	Filters     int
	Size        int
	Rate        int // dilation
	Pad         PadMode
	DropoutRate float64
	NoBias      bool
	Norm        NormMode
	Activation  ActivationType
}

// =============================================================================
// Dilated 1-D Convolution Block
// =============================================================================

// Conv1D is a dilated 1-D convolution over (batch, time, channels) input,
// followed by normalization, an optional activation, and dropout.
//
// Causal padding guarantees that output position t depends only on input
// positions <= t: the time axis is left-padded with (Size-1)*Rate zeros and
// convolved valid, so the kernel never reaches past the current step.
type Conv1D[T Float] struct {
	InChannels int
	Filters    int
	Size       int
	Rate       int
	Pad        PadMode
	Activation ActivationType

	Kernel  *Tensor[T] // (Size, InChannels, Filters)
	Bias    *Tensor[T] // (Filters), nil when disabled
	Norm    *Norm[T]
	Dropout *Dropout[T]
}

// NewConv1D creates a convolution block for rank-3 input with inChannels
// channels. The kernel is He-initialized (variance scaling), the bias zero.
func NewConv1D[T Float](inChannels int, cfg Conv1DConfig) (*Conv1D[T], error) {
	if inChannels < 1 {
		return nil, shapeErrorf("conv1d", "unknown channel dimension: inChannels=%d", inChannels)
	}
	filters := cfg.Filters
	if filters == 0 {
		filters = inChannels
	}
	size := cfg.Size
	if size == 0 {
		size = 1
	}
	rate := cfg.Rate
	if rate == 0 {
		rate = 1
	}
	if filters < 1 || size < 1 || rate < 1 {
		return nil, shapeErrorf("conv1d", "filters, size, and rate must be >= 1, got %d, %d, %d", filters, size, rate)
	}

	kernel := NewTensor[T](size, inChannels, filters)
	heInit(kernel.Data, size*inChannels)

	var bias *Tensor[T]
	if !cfg.NoBias {
		bias = NewTensor[T](filters)
	}

	norm, err := NewNorm[T](cfg.Norm, filters)
	if err != nil {
		return nil, err
	}

	return &Conv1D[T]{
		InChannels: inChannels,
		Filters:    filters,
		Size:       size,
		Rate:       rate,
		Pad:        cfg.Pad,
		Activation: cfg.Activation,
		Kernel:     kernel,
		Bias:       bias,
		Norm:       norm,
		Dropout:    &Dropout[T]{Rate: cfg.DropoutRate},
	}, nil
}

// Forward convolves x (batch, time, channels) and runs the post-pipeline:
// normalize, activate, dropout. Dropout is active only while training.
func (c *Conv1D[T]) Forward(x *Tensor[T], training bool) (*Tensor[T], error) {
	if x.Rank() != 3 {
		return nil, shapeErrorf("conv1d", "expected rank-3 input (batch, time, channels), got shape %v", x.Shape)
	}
	if x.Shape[2] != c.InChannels {
		return nil, shapeErrorf("conv1d", "expected %d input channels, got %d", c.InChannels, x.Shape[2])
	}

	inLen := x.Shape[1]
	span := (c.Size - 1) * c.Rate

	var padLeft, outLen int
	switch c.Pad {
	case PadSame:
		padLeft = span / 2
		outLen = inLen
	case PadCausal:
		padLeft = span
		outLen = inLen
	case PadValid:
		outLen = inLen - span
	default:
		return nil, shapeErrorf("conv1d", "unknown pad mode %d", c.Pad)
	}
	if outLen < 1 {
		return nil, shapeErrorf("conv1d", "input length %d too short for size %d rate %d valid convolution", inLen, c.Size, c.Rate)
	}

	out := Conv1DForward(x, c.Kernel, c.Bias, c.Rate, padLeft, outLen)

	out, err := c.Norm.Forward(out, training)
	if err != nil {
		return nil, err
	}
	activateTensor(out, c.Activation)
	return c.Dropout.Forward(out, training), nil
}

// Conv1DForward is the bare convolution kernel. input is (batch, time,
// inChannels), kernel is (size, inChannels, filters); positions that reach
// outside the input (the virtual padding) contribute zero.
func Conv1DForward[T Float](input, kernel, bias *Tensor[T], rate, padLeft, outLen int) *Tensor[T] {
	batch, inLen, inC := input.Shape[0], input.Shape[1], input.Shape[2]
	size, filters := kernel.Shape[0], kernel.Shape[2]

	out := NewTensor[T](batch, outLen, filters)

	forEachBatch(batch, func(b int) {
		inBase := b * inLen * inC
		outBase := b * outLen * filters
		for t := 0; t < outLen; t++ {
			dst := out.Data[outBase+t*filters : outBase+(t+1)*filters]
			if bias != nil {
				copy(dst, bias.Data)
			}
			for k := 0; k < size; k++ {
				inPos := t + k*rate - padLeft
				if inPos < 0 || inPos >= inLen {
					continue
				}
				src := input.Data[inBase+inPos*inC : inBase+(inPos+1)*inC]
				for ic, v := range src {
					wRow := kernel.Data[(k*inC+ic)*filters : (k*inC+ic+1)*filters]
					for f := range dst {
						dst[f] += v * wRow[f]
					}
				}
			}
		}
	})

	return out
}

// Conv1DBackward computes gradients for the bare convolution kernel given
// the gradient of its direct output (before normalization and activation).
func Conv1DBackward[T Float](gradOutput, input, kernel *Tensor[T], rate, padLeft int) (gradInput, gradKernel, gradBias *Tensor[T]) {
	batch, inLen, inC := input.Shape[0], input.Shape[1], input.Shape[2]
	size, filters := kernel.Shape[0], kernel.Shape[2]
	outLen := gradOutput.Shape[1]

	gradInput = NewTensor[T](input.Shape...)
	gradKernel = NewTensor[T](kernel.Shape...)
	gradBias = NewTensor[T](filters)

	for b := 0; b < batch; b++ {
		inBase := b * inLen * inC
		outBase := b * outLen * filters
		for t := 0; t < outLen; t++ {
			grad := gradOutput.Data[outBase+t*filters : outBase+(t+1)*filters]
			for f, g := range grad {
				gradBias.Data[f] += g
			}
			for k := 0; k < size; k++ {
				inPos := t + k*rate - padLeft
				if inPos < 0 || inPos >= inLen {
					continue
				}
				src := input.Data[inBase+inPos*inC : inBase+(inPos+1)*inC]
				gIn := gradInput.Data[inBase+inPos*inC : inBase+(inPos+1)*inC]
				for ic, v := range src {
					wRow := kernel.Data[(k*inC+ic)*filters : (k*inC+ic+1)*filters]
					gRow := gradKernel.Data[(k*inC+ic)*filters : (k*inC+ic+1)*filters]
					for f, g := range grad {
						gRow[f] += v * g
						gIn[ic] += wRow[f] * g
					}
				}
			}
		}
	}

	return gradInput, gradKernel, gradBias
}
