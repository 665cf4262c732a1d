package polezero

import (
	"math"

	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
)

// Stages is the number of biquad stages in a Cascade.
const Stages = 4

// Root is one pole or zero slot in the z-plane.
type Root struct {
	Real      float64
	Imag      float64
	Active    bool
	Conjugate bool
}

// Radius returns the distance of the root from the origin. A root that is
// not conjugated is treated as real.
func (r Root) Radius() float64 {
	if !r.Conjugate {
		return math.Abs(r.Real)
	}

	return math.Hypot(r.Real, r.Imag)
}

// SnapToRadius pulls r onto the circle of the given radius when it lies
// outside it. Real and imaginary parts are scaled by the same factor.
func SnapToRadius(r Root, radius float64) Root {
	mag := math.Hypot(r.Real, r.Imag)
	if mag <= radius || mag == 0 {
		return r
	}

	scale := radius / mag
	r.Real *= scale
	r.Imag *= scale

	return r
}

// Params is the per-block snapshot that drives a Cascade.
type Params struct {
	Poles   [Stages]Root
	Zeros   [Stages]Root
	GainDB  float64
	Protect bool
}

// DefaultParams returns all slots inactive, 0 dB gain and protection on.
func DefaultParams() Params {
	return Params{Protect: true}
}

// StageCoefficients derives the biquad for one stage.
//
// An active real pole gives a1 = -re, a2 = 0. An active conjugated pole gives
// a1 = -2re, a2 = re²+im². Zeros map to b1, b2 the same way with b0 = 1.
// Inactive slots contribute nothing. Stage 0 is scaled by the linear gain.
func StageCoefficients(pole, zero Root, stage int, gainDB float64) biquad.Coefficients {
	c := biquad.Passthrough()

	c.A1, c.A2 = polynomial(pole)
	c.B1, c.B2 = polynomial(zero)

	if stage == 0 {
		g := math.Pow(10, gainDB/20)
		c.B0 *= g
		c.B1 *= g
		c.B2 *= g
	}

	return c
}

// polynomial returns the z^-1 and z^-2 terms of the monic polynomial that
// has r as its root (or root pair).
func polynomial(r Root) (float64, float64) {
	if !r.Active {
		return 0, 0
	}

	if r.Conjugate {
		return -2 * r.Real, r.Real*r.Real + r.Imag*r.Imag
	}

	return -r.Real, 0
}
