package polezero

import (
	"errors"

	"github.com/cwbudde/algo-polezero/param"
)

// ReadParams takes a snapshot of the cascade parameters. Each parameter is
// read once.
func ReadParams(r param.Reader) Params {
	var p Params

	for i := range Stages {
		p.Poles[i] = Root{
			Real:      r.Value(param.PoleReal(i)),
			Imag:      r.Value(param.PoleImag(i)),
			Conjugate: r.Value(param.PoleConj(i)) > 0.5,
			Active:    r.Value(param.PoleActive(i)) > 0.5,
		}
		p.Zeros[i] = Root{
			Real:      r.Value(param.ZeroReal(i)),
			Imag:      r.Value(param.ZeroImag(i)),
			Conjugate: r.Value(param.ZeroConj(i)) > 0.5,
			Active:    r.Value(param.ZeroActive(i)) > 0.5,
		}
	}

	p.GainDB = r.Value(param.Gain)
	p.Protect = r.Value(param.PoleProtect) > 0.5

	return p
}

// SnapPoles pulls every stored pole onto the snap radius when it lies
// outside it. It returns the number of poles moved.
func SnapPoles(w param.Writer, radius float64) (int, error) {
	var (
		moved int
		errs  []error
	)

	for i := range Stages {
		r := Root{
			Real: w.Value(param.PoleReal(i)),
			Imag: w.Value(param.PoleImag(i)),
		}

		s := SnapToRadius(r, radius)
		if s == r {
			continue
		}

		moved++
		errs = append(errs,
			w.Set(param.PoleReal(i), s.Real),
			w.Set(param.PoleImag(i), s.Imag),
		)
	}

	return moved, errors.Join(errs...)
}

// SetProtection writes the pole protection switch. Turning protection on
// first snaps stored poles onto p.SnapRadius so the gate admits them.
func SetProtection(w param.Writer, on bool, p Policy) error {
	if on {
		if _, err := SnapPoles(w, p.SnapRadius); err != nil {
			return err
		}
	}

	v := 0.0
	if on {
		v = 1
	}

	return w.Set(param.PoleProtect, v)
}
