package dynamics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/delay"
)

const (
	defaultBrickwallSampleRate = 48000.0
	defaultBrickwallChannels   = 2
	defaultBrickwallThreshold  = 1.0
	defaultBrickwallAttackMs   = 2.0
	defaultBrickwallReleaseMs  = 100.0

	minBrickwallThreshold = 1e-6
	maxBrickwallThreshold = core.SampleLimit
	minBrickwallAttackMs  = 0.0
	maxBrickwallAttackMs  = 200.0
	minBrickwallReleaseMs = 1.0
	maxBrickwallReleaseMs = 5000.0

	// releaseTarget sits above unity so the exponential release reaches 1
	// in finite time.
	releaseTarget = 1.01
)

// LimiterState is the phase of the brickwall gain computer.
type LimiterState int32

const (
	// LimiterOff means unity gain.
	LimiterOff LimiterState = iota
	// LimiterAttack means the gain is ramping down linearly.
	LimiterAttack
	// LimiterHold means the gain is frozen.
	LimiterHold
	// LimiterRelease means the gain recovers exponentially.
	LimiterRelease
)

func (s LimiterState) String() string {
	switch s {
	case LimiterOff:
		return "off"
	case LimiterAttack:
		return "attack"
	case LimiterHold:
		return "hold"
	case LimiterRelease:
		return "release"
	default:
		return fmt.Sprintf("LimiterState(%d)", int32(s))
	}
}

// BrickwallLimiter keeps every output sample at or below the threshold by
// delaying the program path by the attack time. One gain is shared by all
// channels.
//
// ProcessBlock belongs to the audio context. SetThreshold, SetReleaseTime
// and SetBypass may be called from any goroutine and take effect at the
// start of the next block. GainReductionDB, Gain and State report the values
// published at the end of the last block. Prepare, SetAttackTime and
// SetSampleRate rebuild the delay lines and must not run concurrently with
// ProcessBlock.
type BrickwallLimiter[T core.Float] struct {
	sampleRate float64
	channels   int
	attackMs   float64

	threshold float64
	releaseMs float64

	// Requested values, applied at block start.
	pendingThreshold atomic.Uint64
	pendingRelease   atomic.Uint64
	bypass           atomic.Bool

	// Published at block end.
	publishedGain  atomic.Uint64
	publishedState atomic.Int32

	delaySamples int
	lines        []*delay.Line[T]

	alpha float64
	// releasePow[k] is alpha^(k+1), the release decay after k+1 steps.
	releasePow []float64

	gain          float64
	state         LimiterState
	attackInc     float64
	attackTarget  float64
	attackCounter int
	holdCounter   int
}

// NewBrickwallLimiter creates a limiter with threshold 1.0, 2 ms attack and
// 100 ms release.
func NewBrickwallLimiter[T core.Float](sampleRate float64, channels int) (*BrickwallLimiter[T], error) {
	l := &BrickwallLimiter[T]{
		attackMs:  defaultBrickwallAttackMs,
		threshold: defaultBrickwallThreshold,
		releaseMs: defaultBrickwallReleaseMs,
	}
	l.pendingThreshold.Store(math.Float64bits(l.threshold))
	l.pendingRelease.Store(math.Float64bits(l.releaseMs))

	if err := l.Prepare(sampleRate, channels); err != nil {
		return nil, err
	}

	return l, nil
}

// Prepare sets the sample rate and channel count, rebuilds the delay lines
// and resets the gain computer.
func (l *BrickwallLimiter[T]) Prepare(sampleRate float64, channels int) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return fmt.Errorf("brickwall limiter %w", err)
	}

	if channels < 1 {
		return fmt.Errorf("brickwall limiter: %w: %d", core.ErrChannelCount, channels)
	}

	if attackSamples(l.attackMs, sampleRate) < 1 {
		return fmt.Errorf("brickwall limiter attack of %f ms is shorter than one sample at %f Hz",
			l.attackMs, sampleRate)
	}

	l.sampleRate = sampleRate
	l.channels = channels
	l.rebuild()

	return nil
}

// SetThreshold sets the linear output ceiling.
func (l *BrickwallLimiter[T]) SetThreshold(threshold float64) error {
	if threshold < minBrickwallThreshold || threshold > maxBrickwallThreshold || !isFinite(threshold) {
		return fmt.Errorf("brickwall limiter threshold must be in [%f, %f]: %f",
			minBrickwallThreshold, maxBrickwallThreshold, threshold)
	}

	l.pendingThreshold.Store(math.Float64bits(threshold))

	return nil
}

// SetReleaseTime sets the release time constant in milliseconds.
func (l *BrickwallLimiter[T]) SetReleaseTime(ms float64) error {
	if ms < minBrickwallReleaseMs || ms > maxBrickwallReleaseMs || !isFinite(ms) {
		return fmt.Errorf("brickwall limiter release must be in [%f, %f]: %f",
			minBrickwallReleaseMs, maxBrickwallReleaseMs, ms)
	}

	l.pendingRelease.Store(math.Float64bits(ms))

	return nil
}

// SetAttackTime sets the attack time, which is also the look-ahead delay.
// It rebuilds the delay lines and resets the limiter.
func (l *BrickwallLimiter[T]) SetAttackTime(ms float64) error {
	if ms < minBrickwallAttackMs || ms > maxBrickwallAttackMs || !isFinite(ms) {
		return fmt.Errorf("brickwall limiter attack must be in [%f, %f]: %f",
			minBrickwallAttackMs, maxBrickwallAttackMs, ms)
	}

	if attackSamples(ms, l.sampleRate) < 1 {
		return fmt.Errorf("brickwall limiter attack of %f ms is shorter than one sample at %f Hz",
			ms, l.sampleRate)
	}

	l.attackMs = ms
	l.rebuild()

	return nil
}

// SetSampleRate changes the sample rate, keeping the channel count.
func (l *BrickwallLimiter[T]) SetSampleRate(sampleRate float64) error {
	return l.Prepare(sampleRate, l.channels)
}

// SetBypass passes the delayed input through unchanged while the gain
// computer keeps running.
func (l *BrickwallLimiter[T]) SetBypass(bypass bool) {
	l.bypass.Store(bypass)
}

// Bypassed reports the requested bypass state.
func (l *BrickwallLimiter[T]) Bypassed() bool { return l.bypass.Load() }

// Threshold returns the ceiling in force.
func (l *BrickwallLimiter[T]) Threshold() float64 { return l.threshold }

// ReleaseTime returns the release time in force in milliseconds.
func (l *BrickwallLimiter[T]) ReleaseTime() float64 { return l.releaseMs }

// AttackTime returns the attack time in milliseconds.
func (l *BrickwallLimiter[T]) AttackTime() float64 { return l.attackMs }

// SampleRate returns the sample rate in Hz.
func (l *BrickwallLimiter[T]) SampleRate() float64 { return l.sampleRate }

// Channels returns the prepared channel count.
func (l *BrickwallLimiter[T]) Channels() int { return l.channels }

// DelaySamples returns the attack length in samples.
func (l *BrickwallLimiter[T]) DelaySamples() int { return l.delaySamples }

// Latency returns the delay of the program path in samples.
func (l *BrickwallLimiter[T]) Latency() int { return l.delaySamples - 1 }

// Gain returns the linear gain published after the last block.
func (l *BrickwallLimiter[T]) Gain() float64 {
	return math.Float64frombits(l.publishedGain.Load())
}

// State returns the gain computer phase published after the last block.
func (l *BrickwallLimiter[T]) State() LimiterState {
	return LimiterState(l.publishedState.Load())
}

// GainReductionDB returns the gain published after the last block in dB.
// It is 0 when the limiter is idle and negative while limiting.
func (l *BrickwallLimiter[T]) GainReductionDB() float64 {
	return 20 * math.Log10(l.Gain())
}

// Reset clears the delay lines and returns the gain to unity.
func (l *BrickwallLimiter[T]) Reset() {
	for _, d := range l.lines {
		d.Reset()
	}

	l.gain = 1
	l.state = LimiterOff
	l.attackInc = 0
	l.attackTarget = 1
	l.attackCounter = 0
	l.holdCounter = 0
	l.publish()
}

// ProcessBlock limits a planar block in place. Fewer channels than prepared
// are allowed. Inputs are clamped to ±1000 and NaN is replaced by 0.
func (l *BrickwallLimiter[T]) ProcessBlock(data [][]T) error {
	n, err := core.BlockLength(data, l.channels)
	if err != nil {
		return fmt.Errorf("brickwall limiter: %w", err)
	}

	l.applyPending()
	bypass := l.bypass.Load()

	for i := range n {
		peak := 0.0
		for ch := range data {
			x := core.Sanitize(data[ch][i])
			data[ch][i] = x

			if a := math.Abs(float64(x)); a > peak {
				peak = a
			}
		}

		l.step(peak)

		for ch := range data {
			x := l.lines[ch].Process(data[ch][i])
			if !bypass {
				x = T(float64(x) * l.gain)
			}
			data[ch][i] = x
		}
	}

	l.publish()

	return nil
}

// step advances the gain computer by one sample given the linked peak.
func (l *BrickwallLimiter[T]) step(peak float64) {
	d := l.delaySamples
	level := peak * l.gain

	if level > l.threshold {
		l.trigger(peak)
	} else if l.projectedRelease()*peak > l.threshold {
		l.state = LimiterHold
		l.holdCounter = d
	}

	switch l.state {
	case LimiterAttack:
		// The slope may be a whole step too steep; never pass the target.
		l.gain = max(l.gain+l.attackInc, l.attackTarget)
		l.attackCounter--
		if l.attackCounter <= 0 {
			l.state = LimiterHold
			l.holdCounter = d
			l.attackInc = 0
		}
	case LimiterHold:
		l.holdCounter--
		if l.holdCounter <= 0 {
			l.state = LimiterRelease
		}
	case LimiterRelease:
		l.gain = l.gain*l.alpha + (1-l.alpha)*releaseTarget
		if l.gain >= 1 {
			l.gain = 1
			l.state = LimiterOff
		}
	}
}

// trigger starts or steepens an attack so the gain reaches threshold/peak
// within the look-ahead window. An attack in flight is never relaxed: its
// target only moves down.
func (l *BrickwallLimiter[T]) trigger(peak float64) {
	d := l.delaySamples
	target := l.threshold / peak
	drop := l.gain - target
	inc := -drop / float64(d)

	if l.state == LimiterAttack {
		l.attackTarget = min(l.attackTarget, target)
	} else {
		l.attackTarget = target
		l.attackInc = 0
	}

	l.state = LimiterAttack

	if inc < l.attackInc {
		l.attackInc = inc
		l.attackCounter = d

		return
	}

	// The slope in flight is steeper. Keep it and extend the attack to the
	// whole number of steps that reaches the new target; the clamp in step
	// stops it there.
	steps := max(int(math.Ceil(drop / -l.attackInc)), 1)
	if steps > l.attackCounter {
		l.attackCounter = steps
	}
}

// projectedRelease returns the gain the release would reach by the time
// the newest sample leaves the delay line.
func (l *BrickwallLimiter[T]) projectedRelease() float64 {
	var steps int

	switch l.state {
	case LimiterHold:
		steps = l.delaySamples - l.holdCounter
	case LimiterRelease:
		steps = l.delaySamples
	default:
		return l.gain
	}

	return releaseTarget - (releaseTarget-l.gain)*l.releasePow[steps]
}

func (l *BrickwallLimiter[T]) applyPending() {
	if th := math.Float64frombits(l.pendingThreshold.Load()); th != l.threshold {
		l.threshold = th
	}

	if ms := math.Float64frombits(l.pendingRelease.Load()); ms != l.releaseMs {
		l.releaseMs = ms
		l.updateRelease()
	}
}

func (l *BrickwallLimiter[T]) updateRelease() {
	l.alpha = core.TimeConstant(l.releaseMs, l.sampleRate)

	p := 1.0
	for k := range l.releasePow {
		p *= l.alpha
		l.releasePow[k] = p
	}
}

func (l *BrickwallLimiter[T]) rebuild() {
	l.delaySamples = attackSamples(l.attackMs, l.sampleRate)
	l.lines = make([]*delay.Line[T], l.channels)
	for ch := range l.lines {
		// Length is never negative: delaySamples is at least 1.
		l.lines[ch], _ = delay.New[T](l.delaySamples - 1)
	}
	l.releasePow = make([]float64, l.delaySamples+1)
	l.threshold = math.Float64frombits(l.pendingThreshold.Load())
	l.releaseMs = math.Float64frombits(l.pendingRelease.Load())
	l.updateRelease()
	l.Reset()
}

func (l *BrickwallLimiter[T]) publish() {
	l.publishedGain.Store(math.Float64bits(l.gain))
	l.publishedState.Store(int32(l.state))
}

func attackSamples(ms, sampleRate float64) int {
	return core.MsToSamples(ms, sampleRate)
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

func isFinite(v float64) bool {
	return !(math.IsNaN(v) || math.IsInf(v, 0))
}
