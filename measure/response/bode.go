package response

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
)

// BodeConfig controls the frequency grid of a Bode diagram.
type BodeConfig struct {
	SampleRate float64
	// Points is the number of grid intervals; Points+1 frequencies are
	// evaluated.
	Points int
	// FullRange spans 0..fs instead of 0..fs/2.
	FullRange bool
}

// BodeOption mutates a BodeConfig.
type BodeOption func(*BodeConfig)

// DefaultBodeConfig returns 1000 intervals from DC to Nyquist at 48 kHz.
func DefaultBodeConfig() BodeConfig {
	return BodeConfig{
		SampleRate: 48000,
		Points:     1000,
	}
}

// WithSampleRate sets the sample rate the grid is scaled to.
func WithSampleRate(sampleRate float64) BodeOption {
	return func(cfg *BodeConfig) {
		if sampleRate > 0 && core.IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithPoints sets the number of grid intervals.
func WithPoints(points int) BodeOption {
	return func(cfg *BodeConfig) {
		if points > 0 {
			cfg.Points = points
		}
	}
}

// WithFullRange extends the grid to the sample rate.
func WithFullRange(full bool) BodeOption {
	return func(cfg *BodeConfig) {
		cfg.FullRange = full
	}
}

// Bode holds a magnitude and phase response on a frequency grid.
type Bode struct {
	Frequency   []float64 // Hz
	MagnitudeDB []float64 // 20*log10|H|
	PhaseDeg    []float64 // arg H in degrees, (-180, 180]
}

// ComputeBode evaluates the cascade response on the configured grid.
func ComputeBode(coeffs []biquad.Coefficients, opts ...BodeOption) Bode {
	cfg := DefaultBodeConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	span := cfg.SampleRate / 2
	if cfg.FullRange {
		span = cfg.SampleRate
	}

	n := cfg.Points + 1
	b := Bode{
		Frequency:   make([]float64, n),
		MagnitudeDB: make([]float64, n),
		PhaseDeg:    make([]float64, n),
	}

	step := span / float64(cfg.Points)
	for k := range n {
		f := float64(k) * step
		h := biquad.CascadeResponse(coeffs, f, cfg.SampleRate)

		b.Frequency[k] = f
		b.MagnitudeDB[k] = core.LinearToDB(cmplx.Abs(h))
		b.PhaseDeg[k] = cmplx.Phase(h) * 180 / math.Pi
	}

	return b
}
