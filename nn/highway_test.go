package nn

import (
	"math"
	"testing"
)

// TestHighwayGateOpen verifies that a gate saturated near 1 yields the
// transform branch.
func TestHighwayGateOpen(t *testing.T) {
	hw, err := NewHighway[float64](2)
	if err != nil {
		t.Fatalf("NewHighway failed: %v", err)
	}
	fill(hw.Gate.Weights.Data, 0)
	fill(hw.Gate.Bias.Data, 50) // sigmoid(50) ~ 1

	x := NewTensorFromSlice([]float64{0.3, -0.7}, 1, 1, 2)
	out, err := hw.Forward(x, false)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	transformed, _ := hw.Transform.Forward(x, false)
	for i := range out.Data {
		if math.Abs(out.Data[i]-transformed.Data[i]) > 1e-9 {
			t.Errorf("out[%d]: Expected transform branch %g, got %g", i, transformed.Data[i], out.Data[i])
		}
	}
}

// TestHighwayGateClosed verifies that a gate saturated near 0 passes the
// input through unchanged.
func TestHighwayGateClosed(t *testing.T) {
	hw, err := NewHighway[float64](2)
	if err != nil {
		t.Fatalf("NewHighway failed: %v", err)
	}
	fill(hw.Gate.Weights.Data, 0)
	fill(hw.Gate.Bias.Data, -50) // sigmoid(-50) ~ 0

	x := NewTensorFromSlice([]float64{0.3, -0.7}, 1, 1, 2)
	out, err := hw.Forward(x, false)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	for i := range out.Data {
		if math.Abs(out.Data[i]-x.Data[i]) > 1e-9 {
			t.Errorf("out[%d]: Expected input %g, got %g", i, x.Data[i], out.Data[i])
		}
	}
}

// TestHighwayGateBias verifies the gate bias starts at -1, biasing the layer
// toward the pass-through path early in training.
func TestHighwayGateBias(t *testing.T) {
	hw, err := NewHighway[float32](8)
	if err != nil {
		t.Fatalf("NewHighway failed: %v", err)
	}
	for i, b := range hw.Gate.Bias.Data {
		if b != -1 {
			t.Errorf("Gate bias[%d]: Expected -1, got %f", i, b)
		}
	}
	for i, b := range hw.Transform.Bias.Data {
		if b != 0 {
			t.Errorf("Transform bias[%d]: Expected 0, got %f", i, b)
		}
	}
}

// TestHighwayShape verifies output shape equals input shape and mismatched
// channels are rejected.
func TestHighwayShape(t *testing.T) {
	hw, _ := NewHighway[float32](4)

	out, err := hw.Forward(NewTensor[float32](2, 5, 4), false)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if out.Shape[0] != 2 || out.Shape[1] != 5 || out.Shape[2] != 4 {
		t.Errorf("Expected shape [2, 5, 4], got %v", out.Shape)
	}

	if _, err := hw.Forward(NewTensor[float32](2, 5, 3), false); err == nil {
		t.Error("Expected ShapeError for mismatched channels")
	}
}
