package core

import "math"

const defaultEpsilon = 1e-12

// SampleLimit is the magnitude that non-finite or runaway samples are clamped
// to before they enter stateful processing.
const SampleLimit = 1000.0

// Float is the sample type constraint shared by all generic processors.
// The float32 and float64 instantiations are the two supported builds.
type Float interface {
	~float32 | ~float64
}

// Clamp limits value to the inclusive range [min, max].
func Clamp[T Float](value, min, max T) T {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Abs returns |x| without the float64 round trip of math.Abs.
func Abs[T Float](x T) T {
	if x < 0 {
		return -x
	}

	return x
}

// Sanitize maps NaN to zero and clamps everything else to ±SampleLimit.
func Sanitize[T Float](x T) T {
	if math.IsNaN(float64(x)) {
		return 0
	}

	return Clamp(x, -SampleLimit, SampleLimit)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals[T Float](x T) T {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}

// TimeConstant returns the one-pole smoothing coefficient exp(-1/(ms*fs/1000))
// for a time constant in milliseconds. Non-positive times yield 0 (no
// smoothing).
func TimeConstant(ms, sampleRate float64) float64 {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}

	return math.Exp(-1 / (ms * 0.001 * sampleRate))
}

// MsToSamples converts a duration in milliseconds to a rounded sample count.
func MsToSamples(ms, sampleRate float64) int {
	n := int(ms*0.001*sampleRate + 0.5)
	if n < 0 {
		return 0
	}

	return n
}
