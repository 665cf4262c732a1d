package biquad

import (
	"math"
	"math/cmplx"
)

// Poles returns the roots of z² + A1·z + A2. A first-order section has one
// pole at -A1 and one at the origin.
func (c Coefficients) Poles() [2]complex128 {
	return quadraticRoots(1, c.A1, c.A2)
}

// Zeros returns the roots of B0·z² + B1·z + B2. With B0 = 0 the section has
// fewer finite zeros; missing roots are reported at the origin.
func (c Coefficients) Zeros() [2]complex128 {
	return quadraticRoots(c.B0, c.B1, c.B2)
}

// MaxPoleRadius returns the largest pole magnitude. The section is stable
// when it is below 1.
func (c Coefficients) MaxPoleRadius() float64 {
	p := c.Poles()
	return math.Max(cmplx.Abs(p[0]), cmplx.Abs(p[1]))
}

func quadraticRoots(a, b, c float64) [2]complex128 {
	if a == 0 {
		if b == 0 {
			return [2]complex128{}
		}
		return [2]complex128{complex(-c/b, 0), 0}
	}

	d := cmplx.Sqrt(complex(b*b-4*a*c, 0))
	return [2]complex128{
		(complex(-b, 0) + d) / complex(2*a, 0),
		(complex(-b, 0) - d) / complex(2*a, 0),
	}
}
