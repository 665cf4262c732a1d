package plugin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/effects/dynamics"
	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
	"github.com/cwbudde/algo-polezero/dsp/filter/polezero"
	"github.com/cwbudde/algo-polezero/measure/level"
	"github.com/cwbudde/algo-polezero/param"
)

// ErrNotPrepared is returned by ProcessBlock before the first Prepare.
var ErrNotPrepared = errors.New("plugin: processor not prepared")

// Processor runs the cascade, the limiter and the meter on each block.
//
// ProcessBlock is the audio entry point; it reads every parameter once per
// block and takes no locks. Prepare must not run concurrently with
// ProcessBlock. StageStatus and Committed read audio-context state and are
// meant for use between blocks; the remaining methods are safe from control
// goroutines.
type Processor[T core.Float] struct {
	params param.Reader
	cfg    Config

	mu       sync.Mutex
	prepared atomic.Bool

	cascade *polezero.Cascade[T]
	limiter *dynamics.BrickwallLimiter[T]
	meter   *level.Meter[T]
}

// New creates a processor that reads its parameters from params.
func New[T core.Float](params param.Reader, opts ...Option) (*Processor[T], error) {
	if params == nil {
		return nil, errors.New("plugin: nil parameter reader")
	}

	cfg := ApplyOptions(opts...)

	cascade, err := polezero.NewCascade[T](cfg.Channels, cfg.Policy, biquad.WithCrossfade(cfg.CrossfadeSamples))
	if err != nil {
		return nil, fmt.Errorf("plugin: cascade: %w", err)
	}

	limiter, err := dynamics.NewBrickwallLimiter[T](cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("plugin: limiter: %w", err)
	}

	if err := limiter.SetAttackTime(cfg.LimiterAttackMs); err != nil {
		return nil, fmt.Errorf("plugin: limiter: %w", err)
	}

	return &Processor[T]{
		params:  params,
		cfg:     cfg,
		cascade: cascade,
		limiter: limiter,
		meter:   level.NewMeter[T](level.WithSampleRate(cfg.SampleRate)),
	}, nil
}

// Prepare sizes every component for the given stream layout and resets
// their state. The limiter release is reset to the configured value.
func (p *Processor[T]) Prepare(sampleRate float64, blockSize, channels int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	layout := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: blockSize, Channels: channels}
	if err := layout.Validate(p.meter.MaxChannels()); err != nil {
		return fmt.Errorf("plugin: %w", err)
	}

	if err := p.cascade.Prepare(channels); err != nil {
		return err
	}

	if err := p.limiter.SetReleaseTime(p.cfg.LimiterReleaseMs); err != nil {
		return err
	}

	if err := p.limiter.Prepare(sampleRate, channels); err != nil {
		return err
	}

	if err := p.meter.Prepare(sampleRate); err != nil {
		return err
	}

	p.cfg.ProcessorConfig = layout
	p.prepared.Store(true)

	return nil
}

// ProcessBlock filters, limits and meters a planar block in place. Blocks
// may carry fewer channels than prepared.
func (p *Processor[T]) ProcessBlock(data [][]T) error {
	if !p.prepared.Load() {
		return ErrNotPrepared
	}

	if _, err := core.BlockLength(data, p.cfg.Channels); err != nil {
		return fmt.Errorf("plugin: %w", err)
	}

	p.cascade.Update(polezero.ReadParams(p.params))
	p.limiter.SetBypass(p.params.Value(param.LimiterOn) <= 0.5)

	if err := p.cascade.Process(data); err != nil {
		return err
	}

	if err := p.limiter.ProcessBlock(data); err != nil {
		return err
	}

	return p.meter.Analyze(data)
}

// Config returns the configuration of the last Prepare.
func (p *Processor[T]) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cfg
}

// Prepared reports whether Prepare has succeeded.
func (p *Processor[T]) Prepared() bool { return p.prepared.Load() }

// Latency returns the processing delay in samples.
func (p *Processor[T]) Latency() int { return p.limiter.Latency() }

// TailLength returns the tail length in seconds reported to the host.
func (p *Processor[T]) TailLength() float64 { return 0 }

// GainReductionDB returns the limiter gain reduction of the last block.
func (p *Processor[T]) GainReductionDB() float64 { return p.limiter.GainReductionDB() }

// Levels returns the meter readings of the last block.
func (p *Processor[T]) Levels() (rms, peak []float64) { return p.meter.Levels() }

// MeterSnapshot copies the meter readings of the last block.
func (p *Processor[T]) MeterSnapshot(rms, peak []float64) int { return p.meter.Snapshot(rms, peak) }

// StageStatus returns the gate outcome of stage i for the last block.
func (p *Processor[T]) StageStatus(i int) polezero.StageStatus { return p.cascade.Status(i) }

// RejectedStages returns a bit per stage held back by the gate in the last
// block.
func (p *Processor[T]) RejectedStages() uint8 { return p.cascade.RejectedMask() }

// Committed returns the coefficients in force.
func (p *Processor[T]) Committed() [polezero.Stages]biquad.Coefficients { return p.cascade.Committed() }

// SetPoleProtection writes the protection switch to w, snapping stored
// poles onto the snap radius when switching on.
func (p *Processor[T]) SetPoleProtection(w param.Writer, on bool) error {
	p.mu.Lock()
	policy := p.cfg.Policy
	p.mu.Unlock()

	return polezero.SetProtection(w, on, policy)
}
