package biquad

import "github.com/cwbudde/algo-polezero/dsp/core"

// Chain is an ordered series of sections processed one after another for a
// single channel. Section 0 runs first.
type Chain[T core.Float] struct {
	sections []Section[T]
}

// NewChain creates a chain with one section per coefficient set. The options
// apply to every section.
func NewChain[T core.Float](coeffs []Coefficients, opts ...SectionOption) *Chain[T] {
	c := &Chain[T]{sections: make([]Section[T], len(coeffs))}
	for i := range coeffs {
		c.sections[i].init(coeffs[i], opts...)
	}

	return c
}

// NewPassthroughChain creates n identity sections.
func NewPassthroughChain[T core.Float](n int, opts ...SectionOption) *Chain[T] {
	coeffs := make([]Coefficients, n)
	for i := range coeffs {
		coeffs[i] = Passthrough()
	}

	return NewChain[T](coeffs, opts...)
}

// ProcessSample cascades one sample through all sections in order.
func (c *Chain[T]) ProcessSample(x T) T {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessInPlace filters buf in place through the full chain. Zero-alloc.
func (c *Chain[T]) ProcessInPlace(buf []T) {
	for i := range c.sections {
		c.sections[i].ProcessInPlace(buf)
	}
}

// SetCoefficients starts a cross-fade of section i to the given set.
func (c *Chain[T]) SetCoefficients(i int, coeffs Coefficients) {
	c.sections[i].SetCoefficients(coeffs)
}

// Reset clears all section states.
func (c *Chain[T]) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// NumSections returns the number of sections.
func (c *Chain[T]) NumSections() int {
	return len(c.sections)
}

// Section returns a pointer to the i-th section for inspection.
func (c *Chain[T]) Section(i int) *Section[T] {
	return &c.sections[i]
}

// Coefficients returns the coefficient sets in force, in processing order.
func (c *Chain[T]) Coefficients() []Coefficients {
	out := make([]Coefficients, len(c.sections))
	for i := range c.sections {
		out[i] = c.sections[i].design
	}

	return out
}
