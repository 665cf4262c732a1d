package testutil

import "testing"

func TestMaxAbs(t *testing.T) {
	if got := MaxAbs([]float64{0.5, -2, 1}); got != 2 {
		t.Fatalf("MaxAbs = %v, want 2", got)
	}
	if got := MaxAbs([]float32{}); got != 0 {
		t.Fatalf("MaxAbs(empty) = %v, want 0", got)
	}
}

func TestMaxStep(t *testing.T) {
	if got := MaxStep([]float64{0, 0.25, 1, 0.5}); got != 0.75 {
		t.Fatalf("MaxStep = %v, want 0.75", got)
	}
	if got := MaxStep([]float64{3}); got != 0 {
		t.Fatalf("MaxStep(single) = %v, want 0", got)
	}
}

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float32{1, 2}, []float32{1, 2.0000001}, 1e-6)
	RequireFinite(t, []float64{0, 1, -1})
	RequireBounded(t, []float64{0.5, -1}, 1)
}
