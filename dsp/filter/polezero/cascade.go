package polezero

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
)

// StageStatus reports the outcome of the last Update for one stage.
type StageStatus struct {
	// Derived is the coefficient set computed from the parameters.
	Derived biquad.Coefficients
	// Stable reports whether Derived passes the gate with protection on.
	Stable bool
	// Committed reports whether Derived is in force.
	Committed bool
	// Rejected reports that the gate blocked Derived and the previous
	// coefficients stay in force.
	Rejected bool
}

// Cascade runs Stages biquad sections per channel. All channels share the
// same coefficients.
//
// Update and Process belong to the audio context. Prepare reallocates and
// must not run concurrently with them.
type Cascade[T core.Float] struct {
	policy    Policy
	chains    []*biquad.Chain[T]
	opts      []biquad.SectionOption
	committed [Stages]biquad.Coefficients
	status    [Stages]StageStatus
	rejected  atomic.Uint32
}

// NewCascade creates a cascade for the given number of channels with every
// stage at passthrough. The section options apply to all stages.
func NewCascade[T core.Float](channels int, policy Policy, opts ...biquad.SectionOption) (*Cascade[T], error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	c := &Cascade[T]{
		policy: policy,
		opts:   opts,
	}

	for i := range c.committed {
		c.committed[i] = biquad.Passthrough()
		c.status[i] = StageStatus{Derived: c.committed[i], Stable: true, Committed: true}
	}

	if err := c.Prepare(channels); err != nil {
		return nil, err
	}

	return c, nil
}

// Prepare rebuilds the per-channel filters with zero state. Committed
// coefficients carry over without a cross-fade.
func (c *Cascade[T]) Prepare(channels int) error {
	if channels < 1 {
		return fmt.Errorf("polezero: %w: %d", core.ErrChannelCount, channels)
	}

	c.chains = make([]*biquad.Chain[T], channels)
	for ch := range c.chains {
		c.chains[ch] = biquad.NewChain[T](c.committed[:], c.opts...)
	}

	return nil
}

// Channels returns the prepared channel count.
func (c *Cascade[T]) Channels() int {
	return len(c.chains)
}

// Policy returns the gate configuration.
func (c *Cascade[T]) Policy() Policy {
	return c.policy
}

// SetPolicy replaces the gate radii. Protect is taken from each Update.
func (c *Cascade[T]) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	c.policy = p

	return nil
}

// Update derives every stage from p, gates it and commits admitted sets to
// all channels. A set equal to the one in force is not committed again, so
// a steady parameter state never restarts a cross-fade.
func (c *Cascade[T]) Update(p Params) {
	gate := c.policy
	gate.Protect = p.Protect

	var rejected uint32

	for i := range Stages {
		d := StageCoefficients(p.Poles[i], p.Zeros[i], i, p.GainDB)
		conj := p.Poles[i].Conjugate
		admit := gate.Admits(d, conj)

		c.status[i] = StageStatus{
			Derived:   d,
			Stable:    gate.Stable(d, conj),
			Committed: admit,
			Rejected:  !admit,
		}

		if !admit {
			rejected |= 1 << i
			continue
		}

		if d == c.committed[i] {
			continue
		}

		c.committed[i] = d
		for _, chain := range c.chains {
			chain.SetCoefficients(i, d)
		}
	}

	c.rejected.Store(rejected)
}

// Process filters a planar block in place, each channel through stages
// 0..Stages-1. Fewer channels than prepared are allowed.
func (c *Cascade[T]) Process(data [][]T) error {
	if _, err := core.BlockLength(data, len(c.chains)); err != nil {
		return fmt.Errorf("polezero: %w", err)
	}

	for ch, buf := range data {
		c.chains[ch].ProcessInPlace(buf)
	}

	return nil
}

// Status returns the result of the last Update for stage i. Like Committed
// it reads audio-context state and must not race with Update.
func (c *Cascade[T]) Status(i int) StageStatus {
	return c.status[i]
}

// RejectedMask returns a bit per stage whose last derived set was rejected,
// stage 0 in bit 0. It is safe to call from any goroutine.
func (c *Cascade[T]) RejectedMask() uint8 {
	return uint8(c.rejected.Load())
}

// Committed returns the coefficient sets in force, stage 0 first.
func (c *Cascade[T]) Committed() [Stages]biquad.Coefficients {
	return c.committed
}

// Fading reports whether any stage of any channel is mid cross-fade.
func (c *Cascade[T]) Fading() bool {
	for _, chain := range c.chains {
		for i := range chain.NumSections() {
			if chain.Section(i).Fading() {
				return true
			}
		}
	}

	return false
}

// Reset clears all filter state. Coefficients stay in force.
func (c *Cascade[T]) Reset() {
	for _, chain := range c.chains {
		chain.Reset()
	}
}
