package biquad

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-polezero/dsp/core"
)

const (
	// DefaultCrossfadeSamples is the length of the coefficient cross-fade.
	DefaultCrossfadeSamples = 30
	// DefaultClipValue bounds each path's output when clipping is enabled.
	DefaultClipValue = 3.0
)

// ErrLengthMismatch is returned when input and output blocks differ in length.
var ErrLengthMismatch = errors.New("biquad: input and output length differ")

// Section is a single second-order IIR section with a linear cross-fade
// between the previous and the current coefficient set.
//
// Both coefficient paths read the same input history (x1, x2) but keep their
// own feedback history, so the outgoing path decays on its own state while
// the incoming path builds up from the state it inherited.
type Section[T core.Float] struct {
	cur, old coeffs[T]
	design   Coefficients

	// Shared input history.
	x1, x2 T
	// Feedback history of the current and the previous path.
	y1, y2   T
	oy1, oy2 T

	fading    bool
	fadeLen   int
	fadeCount int
	fadeGain  T
	fadeStep  T

	clip      bool
	clipValue T
}

// SectionOption configures a Section at construction.
type SectionOption func(*sectionConfig)

type sectionConfig struct {
	crossfade int
	clip      bool
	clipValue float64
}

// WithCrossfade sets the cross-fade length in samples. Values below 1 are
// ignored; 1 switches coefficients instantly.
func WithCrossfade(samples int) SectionOption {
	return func(cfg *sectionConfig) {
		if samples >= 1 {
			cfg.crossfade = samples
		}
	}
}

// WithClip enables or disables hard clipping at ±value.
func WithClip(enabled bool, value float64) SectionOption {
	return func(cfg *sectionConfig) {
		cfg.clip = enabled
		if value > 0 {
			cfg.clipValue = value
		}
	}
}

// NewSection returns a Section initialized with the given coefficients,
// zero state and no pending cross-fade.
func NewSection[T core.Float](c Coefficients, opts ...SectionOption) *Section[T] {
	s := &Section[T]{}
	s.init(c, opts...)

	return s
}

func (s *Section[T]) init(c Coefficients, opts ...SectionOption) {
	cfg := sectionConfig{
		crossfade: DefaultCrossfadeSamples,
		clip:      true,
		clipValue: DefaultClipValue,
	}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	s.design = c
	s.cur = toCoeffs[T](c)
	s.old = s.cur
	s.clip = cfg.clip
	s.clipValue = T(cfg.clipValue)
	s.setCrossfade(cfg.crossfade)
	s.Reset()
}

// SetCoefficients installs a new coefficient set and starts a cross-fade
// from the set currently in force. Called while a fade is still running, the
// in-flight set becomes the outgoing one.
func (s *Section[T]) SetCoefficients(c Coefficients) {
	s.old = s.cur
	s.oy1, s.oy2 = s.y1, s.y2

	s.design = c
	s.cur = toCoeffs[T](c)

	s.fadeCount = 0
	s.fadeGain = 0
	s.fading = s.fadeLen > 1
}

// Coefficients returns the coefficient set currently in force (the fade
// target while a cross-fade is pending).
func (s *Section[T]) Coefficients() Coefficients {
	return s.design
}

// Fading reports whether a coefficient cross-fade is pending.
func (s *Section[T]) Fading() bool {
	return s.fading
}

// SetCrossfadeSamples sets the cross-fade length. n == 1 switches instantly.
func (s *Section[T]) SetCrossfadeSamples(n int) error {
	if n < 1 {
		return fmt.Errorf("biquad: cross-fade length must be >= 1: %d", n)
	}

	s.setCrossfade(n)

	return nil
}

// CrossfadeSamples returns the cross-fade length in samples.
func (s *Section[T]) CrossfadeSamples() int {
	return s.fadeLen
}

func (s *Section[T]) setCrossfade(n int) {
	s.fadeLen = n
	s.fadeCount = 0
	s.fadeGain = 0
	s.fadeStep = 0
	if n > 1 {
		s.fadeStep = 1 / T(n-1)
	} else {
		s.fading = false
	}
}

// SetClip enables or disables hard clipping of each path at ±value.
func (s *Section[T]) SetClip(enabled bool, value T) {
	s.clip = enabled
	if value > 0 {
		s.clipValue = value
	}
}

// Reset clears all history registers. A pending cross-fade is dropped.
func (s *Section[T]) Reset() {
	s.x1, s.x2 = 0, 0
	s.y1, s.y2 = 0, 0
	s.oy1, s.oy2 = 0, 0
	s.old = s.cur
	s.fading = false
	s.fadeCount = 0
	s.fadeGain = 0
}

// ProcessSample filters one input sample and returns the output.
func (s *Section[T]) ProcessSample(x T) T {
	if s.fading {
		return s.fadeSample(x)
	}

	return s.steadySample(x)
}

// ProcessBlock filters in into out. Both slices must have the same length;
// they may alias. Zero-alloc.
func (s *Section[T]) ProcessBlock(in, out []T) error {
	if len(in) != len(out) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(in), len(out))
	}

	i := 0
	for ; s.fading && i < len(in); i++ {
		out[i] = s.fadeSample(in[i])
	}

	for ; i < len(in); i++ {
		out[i] = s.steadySample(in[i])
	}

	return nil
}

// ProcessInPlace filters buf in place. Zero-alloc.
func (s *Section[T]) ProcessInPlace(buf []T) {
	_ = s.ProcessBlock(buf, buf)
}

func (s *Section[T]) steadySample(x T) T {
	c := &s.cur
	y := c.b0*x + c.b1*s.x1 + c.b2*s.x2 - c.a1*s.y1 - c.a2*s.y2
	if s.clip {
		y = core.Clamp(y, -s.clipValue, s.clipValue)
	}

	s.y2, s.y1 = s.y1, y
	s.x2, s.x1 = s.x1, x

	return y
}

func (s *Section[T]) fadeSample(x T) T {
	c, o := &s.cur, &s.old
	ff := c.b0*x + c.b1*s.x1 + c.b2*s.x2
	off := o.b0*x + o.b1*s.x1 + o.b2*s.x2

	newOut := ff - (c.a1*s.y1 + c.a2*s.y2)
	oldOut := off - (o.a1*s.oy1 + o.a2*s.oy2)

	if s.clip {
		newOut = core.Clamp(newOut, -s.clipValue, s.clipValue)
		oldOut = core.Clamp(oldOut, -s.clipValue, s.clipValue)
	}

	s.y2, s.y1 = s.y1, newOut
	s.oy2, s.oy1 = s.oy1, oldOut
	s.x2, s.x1 = s.x1, x

	if s.fadeCount < s.fadeLen {
		out := (1-s.fadeGain)*oldOut + s.fadeGain*newOut
		s.fadeGain += s.fadeStep
		s.fadeCount++

		return out
	}

	s.fading = false

	return newOut
}

// State returns the current-path history [x1, x2, y1, y2].
func (s *Section[T]) State() [4]T {
	return [4]T{s.x1, s.x2, s.y1, s.y2}
}

// SetState restores a previously saved current-path history and drops any
// pending cross-fade.
func (s *Section[T]) SetState(state [4]T) {
	s.x1, s.x2, s.y1, s.y2 = state[0], state[1], state[2], state[3]
	s.fading = false
}
