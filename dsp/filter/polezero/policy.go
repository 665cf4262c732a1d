package polezero

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
)

const (
	// DefaultThreshold is the pole radius at and beyond which a stage is
	// rejected while protection is on.
	DefaultThreshold = 0.99
	// DefaultSnapRadius is the radius poles are pulled onto when protection
	// is switched on.
	DefaultSnapRadius = 0.98
	// MaxThreshold bounds Threshold so admitted stages keep |a1| < 0.998.
	MaxThreshold = 0.998
)

// Policy decides which derived stages may reach the filters.
type Policy struct {
	Protect    bool
	Threshold  float64
	SnapRadius float64
}

// DefaultPolicy returns protection on with the default radii.
func DefaultPolicy() Policy {
	return Policy{
		Protect:    true,
		Threshold:  DefaultThreshold,
		SnapRadius: DefaultSnapRadius,
	}
}

// Validate checks 0 < SnapRadius < Threshold <= MaxThreshold.
func (p Policy) Validate() error {
	if p.Threshold <= 0 || p.Threshold > MaxThreshold {
		return fmt.Errorf("polezero: threshold must be in (0, %f]: %f", MaxThreshold, p.Threshold)
	}

	if p.SnapRadius <= 0 || p.SnapRadius >= p.Threshold {
		return fmt.Errorf("polezero: snap radius must be in (0, %f): %f", p.Threshold, p.SnapRadius)
	}

	return nil
}

// Admits reports whether c may be committed. With protection off everything
// passes. Otherwise a2 must be below 1 and the pole radius below Threshold:
// |a1| for a real pole, √a2 for a conjugated pair.
func (p Policy) Admits(c biquad.Coefficients, conjugate bool) bool {
	if !p.Protect {
		return true
	}

	if c.A2 >= 1 {
		return false
	}

	if conjugate {
		return math.Sqrt(c.A2) < p.Threshold
	}

	return math.Abs(c.A1) < p.Threshold
}

// Stable reports whether c passes the gate with protection on.
func (p Policy) Stable(c biquad.Coefficients, conjugate bool) bool {
	p.Protect = true
	return p.Admits(c, conjugate)
}
