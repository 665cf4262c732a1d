package response

import (
	"errors"
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
)

// ErrFFTSize is returned for FFT sizes that are not a power of two >= 2.
var ErrFFTSize = errors.New("response: FFT size must be a power of two >= 2")

// Analyzer computes spectra of cascade impulse responses with a reusable
// FFT plan. It is not safe for concurrent use.
type Analyzer struct {
	size int
	plan *algofft.Plan[complex128]

	in, out []complex128
	re, im  []float64
}

// NewAnalyzer creates an analyzer for the given FFT size.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	bins := size/2 + 1

	return &Analyzer{
		size: size,
		plan: plan,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
		re:   make([]float64, bins),
		im:   make([]float64, bins),
	}, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of non-negative frequency bins, Size/2+1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(a.size)
}

// Magnitude returns |H[k]| for bins 0..Size/2 of the cascade impulse
// response truncated to Size samples.
func (a *Analyzer) Magnitude(coeffs []biquad.Coefficients) ([]float64, error) {
	if err := a.transform(coeffs); err != nil {
		return nil, err
	}

	dst := make([]float64, a.Bins())
	vecmath.Magnitude(dst, a.re, a.im)

	return dst, nil
}

// Power returns |H[k]|² for bins 0..Size/2.
func (a *Analyzer) Power(coeffs []biquad.Coefficients) ([]float64, error) {
	if err := a.transform(coeffs); err != nil {
		return nil, err
	}

	dst := make([]float64, a.Bins())
	vecmath.Power(dst, a.re, a.im)

	return dst, nil
}

func (a *Analyzer) transform(coeffs []biquad.Coefficients) error {
	ir := biquad.ImpulseResponse(coeffs, a.size)
	for i, v := range ir {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("response: fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}

	return nil
}
