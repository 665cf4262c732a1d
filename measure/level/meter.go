package level

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-polezero/dsp/core"
)

// Meter tracks a smoothed mean-square level and a held peak per channel.
//
// Analyze belongs to the audio goroutine. Snapshot and Levels may be called
// from any goroutine; they return the values published at the end of the
// last Analyze call.
type Meter[T core.Float] struct {
	cfg MeterConfig

	alphaAttack  float64
	alphaRelease float64
	holdSamples  int

	rms  []float64
	peak []float64
	hold []int

	pubRMS      []atomic.Uint64
	pubPeak     []atomic.Uint64
	pubChannels atomic.Int32
}

// NewMeter creates a meter with the given options applied to the defaults.
func NewMeter[T core.Float](opts ...MeterOption) *Meter[T] {
	cfg := ApplyMeterOptions(opts...)
	n := cfg.MaxChannels

	m := &Meter[T]{
		cfg:     cfg,
		rms:     make([]float64, n),
		peak:    make([]float64, n),
		hold:    make([]int, n),
		pubRMS:  make([]atomic.Uint64, n),
		pubPeak: make([]atomic.Uint64, n),
	}
	m.computeTimeConstants()
	m.Reset()

	return m
}

// Prepare sets a new sample rate and clears all readings.
func (m *Meter[T]) Prepare(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("level meter sample rate must be positive and finite: %f", sampleRate)
	}

	m.cfg.SampleRate = sampleRate
	m.computeTimeConstants()
	m.Reset()

	return nil
}

// Reset clears all readings.
func (m *Meter[T]) Reset() {
	for ch := range m.rms {
		m.rms[ch] = 0
		m.peak[ch] = 0
		m.hold[ch] = 0
	}

	m.publish(0)
}

// SampleRate returns the sample rate in Hz.
func (m *Meter[T]) SampleRate() float64 { return m.cfg.SampleRate }

// MaxChannels returns the channel capacity.
func (m *Meter[T]) MaxChannels() int { return m.cfg.MaxChannels }

// HoldSamples returns the peak hold length in samples.
func (m *Meter[T]) HoldSamples() int { return m.holdSamples }

// Analyze updates the readings from a planar block. The published channel
// count follows the number of channels in data.
func (m *Meter[T]) Analyze(data [][]T) error {
	if _, err := core.BlockLength(data, m.cfg.MaxChannels); err != nil {
		return fmt.Errorf("level meter: %w", err)
	}

	for ch, buf := range data {
		rms, peak, hold := m.rms[ch], m.peak[ch], m.hold[ch]

		for _, x := range buf {
			in := math.Abs(float64(x))
			if math.IsNaN(in) {
				in = 0
			}

			alpha := m.alphaRelease
			if in > rms {
				alpha = m.alphaAttack
			}
			rms = alpha*rms + (1-alpha)*in*in

			if in > peak {
				peak = in
				hold = m.holdSamples
			} else {
				hold--
				if hold < 0 {
					peak *= m.alphaRelease
				}
			}
		}

		m.rms[ch], m.peak[ch], m.hold[ch] = rms, peak, hold
	}

	m.publish(len(data))

	return nil
}

// Snapshot copies the published readings into rms and peak and returns the
// number of channels published. At most len(rms) and len(peak) values are
// written.
func (m *Meter[T]) Snapshot(rms, peak []float64) int {
	n := int(m.pubChannels.Load())

	for ch := 0; ch < n && ch < len(rms); ch++ {
		rms[ch] = math.Float64frombits(m.pubRMS[ch].Load())
	}

	for ch := 0; ch < n && ch < len(peak); ch++ {
		peak[ch] = math.Float64frombits(m.pubPeak[ch].Load())
	}

	return n
}

// Levels returns freshly allocated copies of the published readings.
func (m *Meter[T]) Levels() (rms, peak []float64) {
	n := int(m.pubChannels.Load())
	rms = make([]float64, n)
	peak = make([]float64, n)
	m.Snapshot(rms, peak)

	return rms, peak
}

func (m *Meter[T]) publish(channels int) {
	for ch := range channels {
		m.pubRMS[ch].Store(math.Float64bits(m.rms[ch]))
		m.pubPeak[ch].Store(math.Float64bits(m.peak[ch]))
	}

	m.pubChannels.Store(int32(channels))
}

func (m *Meter[T]) computeTimeConstants() {
	fs := m.cfg.SampleRate
	m.alphaAttack = core.TimeConstant(m.cfg.AttackMs, fs)
	m.alphaRelease = core.TimeConstant(m.cfg.ReleaseMs, fs)
	m.holdSamples = int(m.cfg.HoldMs * 0.001 * fs)
}
