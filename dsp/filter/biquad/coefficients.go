package biquad

import "github.com/cwbudde/algo-polezero/dsp/core"

// Coefficients holds the transfer function coefficients for a single
// second-order section. a0 is normalized to 1 and not stored.
//
//	H(z) = (B0 + B1*z^-1 + B2*z^-2) / (1 + A1*z^-1 + A2*z^-2)
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Passthrough returns the identity section b=[1,0,0], a=[0,0].
func Passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// IsPassthrough reports whether c is exactly the identity section.
func (c Coefficients) IsPassthrough() bool {
	return c == Passthrough()
}

// coeffs is the processing-precision copy of a coefficient set.
type coeffs[T core.Float] struct {
	b0, b1, b2 T
	a1, a2     T
}

func toCoeffs[T core.Float](c Coefficients) coeffs[T] {
	return coeffs[T]{
		b0: T(c.B0), b1: T(c.B1), b2: T(c.B2),
		a1: T(c.A1), a2: T(c.A2),
	}
}
