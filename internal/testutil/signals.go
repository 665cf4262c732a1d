package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-polezero/dsp/core"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DeterministicBursts generates sparse random spikes. Each sample is
// non-zero with probability density, with a magnitude up to maxAmplitude.
func DeterministicBursts(seed int64, density, maxAmplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		if rng.Float64() < density {
			out[i] = (rng.Float64()*2 - 1) * maxAmplitude
		}
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Concat joins signals end to end.
func Concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Convert copies x into the processing precision T.
func Convert[T core.Float](x []float64) []T {
	out := make([]T, len(x))
	for i, v := range x {
		out[i] = T(v)
	}
	return out
}

// PlanarOf builds a planar block of precision T from per-channel signals.
func PlanarOf[T core.Float](channels ...[]float64) [][]T {
	out := make([][]T, len(channels))
	for ch, x := range channels {
		out[ch] = Convert[T](x)
	}
	return out
}
