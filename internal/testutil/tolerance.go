package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-polezero/dsp/core"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual[T core.Float](t *testing.T, got, want []T, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(float64(got[i]) - float64(want[i]))
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite[T core.Float](t *testing.T, data []T) {
	t.Helper()
	for i, v := range data {
		if !core.IsFinite(float64(v)) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireBounded fails t if any |element| exceeds limit.
func RequireBounded[T core.Float](t *testing.T, data []T, limit float64) {
	t.Helper()
	for i, v := range data {
		if math.Abs(float64(v)) > limit {
			t.Fatalf("index %d: |%v| exceeds %v", i, v, limit)
		}
	}
}

// MaxAbs returns the largest magnitude in data.
func MaxAbs[T core.Float](data []T) float64 {
	m := 0.0
	for _, v := range data {
		m = math.Max(m, math.Abs(float64(v)))
	}
	return m
}

// MaxStep returns the largest absolute difference between neighbouring
// samples.
func MaxStep[T core.Float](data []T) float64 {
	m := 0.0
	for i := 1; i < len(data); i++ {
		m = math.Max(m, math.Abs(float64(data[i])-float64(data[i-1])))
	}
	return m
}
