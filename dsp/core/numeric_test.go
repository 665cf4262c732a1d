package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClampFloat32(t *testing.T) {
	if got := Clamp[float32](5, -3, 3); got != 3 {
		t.Fatalf("Clamp[float32]() = %v, want 3", got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"finite", 0.25, 0.25},
		{"nan", math.NaN(), 0},
		{"+inf", math.Inf(1), SampleLimit},
		{"-inf", math.Inf(-1), -SampleLimit},
		{"huge", 1e12, SampleLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Fatalf("Sanitize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got := Sanitize(float32(math.NaN())); got != 0 {
		t.Fatalf("Sanitize[float32](NaN) = %v, want 0", got)
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
	if got := LinearPowerToDB(100); !NearlyEqual(got, 20, 1e-12) {
		t.Fatalf("LinearPowerToDB(100) = %v, want 20", got)
	}
}

func TestTimeConstant(t *testing.T) {
	got := TimeConstant(100, 48000)
	want := math.Exp(-1 / (0.1 * 48000))
	if got != want {
		t.Fatalf("TimeConstant(100, 48000) = %v, want %v", got, want)
	}
	if TimeConstant(0, 48000) != 0 {
		t.Fatal("expected zero coefficient for zero time")
	}
}

func TestMsToSamples(t *testing.T) {
	if got := MsToSamples(2, 48000); got != 96 {
		t.Fatalf("MsToSamples(2, 48000) = %d, want 96", got)
	}
	if got := MsToSamples(2, 44100); got != 88 {
		t.Fatalf("MsToSamples(2, 44100) = %d, want 88", got)
	}
}

func TestFlushDenormals(t *testing.T) {
	if FlushDenormals(1e-35) != 0 {
		t.Fatal("expected tiny value to flush to zero")
	}
	if FlushDenormals(1e-3) != 1e-3 {
		t.Fatal("expected normal value to pass")
	}
}
