package nn

// ConvTranspose1DConfig configures an upsampling block. Zero values select
// the defaults: Filters 0 means "same as input channels", Size 0 means 3,
// Stride 0 means 2. Pad must be PadSame or PadValid.
type ConvTranspose1DConfig struct {
	Filters     int
	Size        int
	Stride      int
	Pad         PadMode
	DropoutRate float64
	NoBias      bool
	Norm        NormMode
	Activation  ActivationType
}

// =============================================================================
// Strided Transposed Convolution (upsampling)
// =============================================================================

// ConvTranspose1D expands the time axis of (batch, time, channels) input by
// roughly Stride, the same computation as a 2-D transposed convolution with
// kernel (1, Size) and strides (1, Stride) on a singleton-height view of the
// sequence. Used to double or triple sequence resolution between decoder
// stages. The post-pipeline (normalize, activate, dropout) matches Conv1D.
//
// Output length: same padding gives inLen*Stride, valid gives
// (inLen-1)*Stride + Size.
type ConvTranspose1D[T Float] struct {
	InChannels int
	Filters    int
	Size       int
	Stride     int
	Pad        PadMode
	Activation ActivationType

	Kernel  *Tensor[T] // (Size, InChannels, Filters)
	Bias    *Tensor[T] // (Filters), nil when disabled
	Norm    *Norm[T]
	Dropout *Dropout[T]
}

// NewConvTranspose1D creates an upsampling block for rank-3 input with
// inChannels channels.
func NewConvTranspose1D[T Float](inChannels int, cfg ConvTranspose1DConfig) (*ConvTranspose1D[T], error) {
	if inChannels < 1 {
		return nil, shapeErrorf("conv1d_transpose", "unknown channel dimension: inChannels=%d", inChannels)
	}
	filters := cfg.Filters
	if filters == 0 {
		filters = inChannels
	}
	size := cfg.Size
	if size == 0 {
		size = 3
	}
	stride := cfg.Stride
	if stride == 0 {
		stride = 2
	}
	if filters < 1 || size < 1 || stride < 1 {
		return nil, shapeErrorf("conv1d_transpose", "filters, size, and stride must be >= 1, got %d, %d, %d", filters, size, stride)
	}
	if cfg.Pad != PadSame && cfg.Pad != PadValid {
		return nil, shapeErrorf("conv1d_transpose", "pad mode must be same or valid, got %s", cfg.Pad)
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

	return &ConvTranspose1D[T]{
		InChannels: inChannels,
		Filters:    filters,
		Size:       size,
		Stride:     stride,
		Pad:        cfg.Pad,
		Activation: cfg.Activation,
		Kernel:     kernel,
		Bias:       bias,
		Norm:       norm,
		Dropout:    &Dropout[T]{Rate: cfg.DropoutRate},
	}, nil
}

// Forward upsamples x and runs the post-pipeline. Dropout is active only
// while training.
func (c *ConvTranspose1D[T]) Forward(x *Tensor[T], training bool) (*Tensor[T], error) {
	if x.Rank() != 3 {
		return nil, shapeErrorf("conv1d_transpose", "expected rank-3 input (batch, time, channels), got shape %v", x.Shape)
	}
	if x.Shape[2] != c.InChannels {
		return nil, shapeErrorf("conv1d_transpose", "expected %d input channels, got %d", c.InChannels, x.Shape[2])
	}

	inLen := x.Shape[1]
	var padLeft, outLen int
	if c.Pad == PadSame {
		outLen = inLen * c.Stride
		if c.Size > c.Stride {
			padLeft = (c.Size - c.Stride) / 2
		}
	} else {
		outLen = (inLen-1)*c.Stride + c.Size
	}

	out := ConvTranspose1DForward(x, c.Kernel, c.Bias, c.Stride, padLeft, outLen)

	out, err := c.Norm.Forward(out, training)
	if err != nil {
		return nil, err
	}
	activateTensor(out, c.Activation)
	return c.Dropout.Forward(out, training), nil
}

// ConvTranspose1DForward is the bare transposed-convolution kernel: each
// input position scatters Size kernel taps into the output at stride
// spacing; taps falling outside [0, outLen) are cropped. Bias is added in a
// separate sweep once the scatter is complete.
func ConvTranspose1DForward[T Float](input, kernel, bias *Tensor[T], stride, padLeft, outLen int) *Tensor[T] {
	batch, inLen, inC := input.Shape[0], input.Shape[1], input.Shape[2]
	size, filters := kernel.Shape[0], kernel.Shape[2]

	out := NewTensor[T](batch, outLen, filters)

	forEachBatch(batch, func(b int) {
		inBase := b * inLen * inC
		outBase := b * outLen * filters
		for t := 0; t < inLen; t++ {
			src := input.Data[inBase+t*inC : inBase+(t+1)*inC]
			for k := 0; k < size; k++ {
				outPos := t*stride + k - padLeft
				if outPos < 0 || outPos >= outLen {
					continue
				}
				dst := out.Data[outBase+outPos*filters : outBase+(outPos+1)*filters]
				for ic, v := range src {
					wRow := kernel.Data[(k*inC+ic)*filters : (k*inC+ic+1)*filters]
					for f := range dst {
						dst[f] += v * wRow[f]
					}
				}
			}
		}

		if bias != nil {
			for t := 0; t < outLen; t++ {
				dst := out.Data[outBase+t*filters : outBase+(t+1)*filters]
				for f := range dst {
					dst[f] += bias.Data[f]
				}
			}
		}
	})

	return out
}
