package nn

import (
	"testing"
)

// TestSequentialPipeline composes an encoder-style stack and checks the
// shape contract end to end.
func TestSequentialPipeline(t *testing.T) {
	conv1, err := NewConv1D[float32](8, Conv1DConfig{Filters: 16, Size: 3, Pad: PadCausal, Norm: NormLayer, Activation: ActivationReLU})
	if err != nil {
		t.Fatalf("NewConv1D failed: %v", err)
	}
	hw, err := NewHighway[float32](16)
	if err != nil {
		t.Fatalf("NewHighway failed: %v", err)
	}
	up, err := NewConvTranspose1D[float32](16, ConvTranspose1DConfig{Filters: 16, Size: 3, Stride: 2, Pad: PadSame})
	if err != nil {
		t.Fatalf("NewConvTranspose1D failed: %v", err)
	}

	stack := NewSequential[float32](conv1, hw, up)
	out, err := stack.Forward(NewTensor[float32](2, 10, 8), true)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if out.Shape[0] != 2 || out.Shape[1] != 20 || out.Shape[2] != 16 {
		t.Errorf("Expected shape [2, 20, 16], got %v", out.Shape)
	}
}

// TestResidual verifies the skip connection and the shape guard.
func TestResidual(t *testing.T) {
	conv, _ := NewConv1D[float64](2, Conv1DConfig{Size: 1, NoBias: true})
	copy(conv.Kernel.Data, []float64{1, 0, 0, 1}) // identity 1x1 convolution

	res := &Residual[float64]{Body: conv}
	x := NewTensorFromSlice([]float64{1, 2, 3, 4}, 1, 2, 2)
	out, err := res.Forward(x, false)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	for i := range x.Data {
		if out.Data[i] != 2*x.Data[i] {
			t.Errorf("out[%d]: Expected %g, got %g", i, 2*x.Data[i], out.Data[i])
		}
	}

	// A body that changes shape must be rejected.
	wide, _ := NewConv1D[float64](2, Conv1DConfig{Filters: 3, Size: 1})
	badRes := &Residual[float64]{Body: wide}
	if _, err := badRes.Forward(x, false); err == nil {
		t.Error("Expected ShapeError when body changes shape")
	}
}

// TestDropoutInferenceNoop verifies dropout passes input through untouched
// outside training.
func TestDropoutInferenceNoop(t *testing.T) {
	drop := &Dropout[float32]{Rate: 0.9}
	x := NewTensorFromSlice([]float32{1, 2, 3, 4}, 4)

	out := drop.Forward(x, false)
	for i := range x.Data {
		if out.Data[i] != x.Data[i] {
			t.Errorf("out[%d]: Expected %g, got %g", i, x.Data[i], out.Data[i])
		}
	}
}

// TestDropoutTraining verifies survivors are rescaled and a rate of 1 zeroes
// everything.
func TestDropoutTraining(t *testing.T) {
	drop := &Dropout[float64]{Rate: 0.5}
	x := NewTensor[float64](1000)
	fill(x.Data, 1)

	out := drop.Forward(x, true)
	zeros := 0
	for _, v := range out.Data {
		switch v {
		case 0:
			zeros++
		case 2: // 1 / (1 - 0.5)
		default:
			t.Fatalf("Expected 0 or 2, got %g", v)
		}
	}
	if zeros == 0 || zeros == len(out.Data) {
		t.Errorf("Expected a mix of kept and dropped elements, got %d zeros of %d", zeros, len(out.Data))
	}

	all := &Dropout[float64]{Rate: 1}
	out = all.Forward(x, true)
	for _, v := range out.Data {
		if v != 0 {
			t.Fatalf("Rate 1 must zero everything, got %g", v)
		}
	}
}

// TestConvWorkersParallel verifies the parallel batch fan-out matches the
// sequential result.
func TestConvWorkersParallel(t *testing.T) {
	conv, err := NewConv1D[float32](4, Conv1DConfig{Filters: 6, Size: 3, Rate: 2, Pad: PadSame})
	if err != nil {
		t.Fatalf("NewConv1D failed: %v", err)
	}

	x := NewTensor[float32](8, 12, 4)
	for i := range x.Data {
		x.Data[i] = float32(i%13)*0.25 - 1.5
	}

	sequential, err := conv.Forward(x, false)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	SetConvWorkers(4)
	defer SetConvWorkers(0)

	parallel, err := conv.Forward(x, false)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	for i := range sequential.Data {
		if sequential.Data[i] != parallel.Data[i] {
			t.Fatalf("Parallel output diverged at %d: %g vs %g", i, sequential.Data[i], parallel.Data[i])
		}
	}
}
