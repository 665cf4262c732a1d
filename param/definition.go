package param

import (
	"fmt"
	"math"
	"strconv"
)

// ID names a parameter. IDs are the keys of persisted state.
type ID string

// MaxRoots is the number of pole slots and of zero slots.
const MaxRoots = 4

// Kind distinguishes continuous from switch parameters.
type Kind int

const (
	// KindFloat is a continuous parameter.
	KindFloat Kind = iota
	// KindBool is a switch stored as 0 or 1.
	KindBool
)

const (
	// Gain is the overall gain in dB applied in stage 0.
	Gain ID = "Gain"
	// LimiterOn enables the output limiter (bypass when off).
	LimiterOn ID = "LimiterOn"
	// PoleProtect enables the pole radius gate.
	PoleProtect ID = "PoleProtect"
)

// ValueStep is the UI resolution of pole and zero coordinates.
const ValueStep = 0.001

// Definition describes one parameter.
type Definition struct {
	ID      ID
	Name    string
	Unit    string
	Kind    Kind
	Min     float64
	Max     float64
	Default float64
	Step    float64
}

// Clamp limits v to the parameter range. Switch values are mapped to 0 or 1.
func (d Definition) Clamp(v float64) float64 {
	if d.Kind == KindBool {
		if v > 0.5 {
			return 1
		}
		return 0
	}

	return math.Max(d.Min, math.Min(d.Max, v))
}

// Format renders v for display.
func (d Definition) Format(v float64) string {
	if d.Kind == KindBool {
		return strconv.FormatBool(v > 0.5)
	}

	switch d.Name {
	case "Real part":
		return "Re=" + strconv.FormatFloat(math.Trunc(v*1000)/1000, 'f', -1, 64)
	case "Imaginary part":
		return "Im=" + strconv.FormatFloat(math.Trunc(v*1000)/1000, 'f', -1, 64)
	}

	return strconv.FormatFloat(v, 'f', 1, 64) + d.Unit
}

// PoleReal returns the ID of the real part of pole slot i (0-based).
func PoleReal(i int) ID { return slotID("Pole", i, "Real") }

// PoleImag returns the ID of the imaginary part of pole slot i.
func PoleImag(i int) ID { return slotID("Pole", i, "Imag") }

// PoleConj returns the ID of the conjugate-pair switch of pole slot i.
func PoleConj(i int) ID { return slotID("Pole", i, "Conj") }

// PoleActive returns the ID of the activation switch of pole slot i.
func PoleActive(i int) ID { return slotID("Pole", i, "Active") }

// ZeroReal returns the ID of the real part of zero slot i.
func ZeroReal(i int) ID { return slotID("Zero", i, "Real") }

// ZeroImag returns the ID of the imaginary part of zero slot i.
func ZeroImag(i int) ID { return slotID("Zero", i, "Imag") }

// ZeroConj returns the ID of the conjugate-pair switch of zero slot i.
func ZeroConj(i int) ID { return slotID("Zero", i, "Conj") }

// ZeroActive returns the ID of the activation switch of zero slot i.
func ZeroActive(i int) ID { return slotID("Zero", i, "Active") }

// IDs are built once so hot-path lookups never format strings.
var slotIDs = func() map[string][MaxRoots]ID {
	m := make(map[string][MaxRoots]ID)
	for _, kind := range []string{"Pole", "Zero"} {
		for _, field := range []string{"Real", "Imag", "Conj", "Active"} {
			var ids [MaxRoots]ID
			for i := range ids {
				ids[i] = ID(fmt.Sprintf("%s%d%s", kind, i+1, field))
			}
			m[kind+field] = ids
		}
	}
	return m
}()

func slotID(kind string, i int, field string) ID {
	return slotIDs[kind+field][i]
}

// Definitions returns the full parameter layout: real, imaginary,
// conjugate and activation parameters for every pole and zero slot, the
// stage-0 gain, and the two protection switches.
func Definitions() []Definition {
	defs := make([]Definition, 0, 4*2*MaxRoots+3)

	roots := []struct {
		real, imag, conj, active func(int) ID
	}{
		{PoleReal, PoleImag, PoleConj, PoleActive},
		{ZeroReal, ZeroImag, ZeroConj, ZeroActive},
	}

	for _, r := range roots {
		for i := range MaxRoots {
			defs = append(defs,
				Definition{ID: r.real(i), Name: "Real part", Kind: KindFloat, Min: -1.5, Max: 1.5, Step: ValueStep},
				Definition{ID: r.imag(i), Name: "Imaginary part", Kind: KindFloat, Min: 0, Max: 1.5, Step: ValueStep},
				Definition{ID: r.conj(i), Name: "is conjugated", Kind: KindBool, Max: 1, Step: 1},
				Definition{ID: r.active(i), Name: "is activated", Kind: KindBool, Max: 1, Step: 1},
			)
		}
	}

	defs = append(defs,
		Definition{ID: Gain, Name: "g", Unit: " dB", Kind: KindFloat, Min: -90, Max: 20, Step: 0.1},
		Definition{ID: LimiterOn, Name: "Limiter", Kind: KindBool, Max: 1, Default: 1, Step: 1},
		Definition{ID: PoleProtect, Name: "Pole protection", Kind: KindBool, Max: 1, Default: 1, Step: 1},
	)

	return defs
}
