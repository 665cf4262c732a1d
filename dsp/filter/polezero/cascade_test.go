package polezero

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
	"github.com/cwbudde/algo-polezero/internal/testutil"
	"github.com/cwbudde/algo-polezero/param"
)

func newTestCascade(t *testing.T, channels int, opts ...biquad.SectionOption) *Cascade[float64] {
	t.Helper()

	c, err := NewCascade[float64](channels, DefaultPolicy(), opts...)
	if err != nil {
		t.Fatalf("NewCascade: %v", err)
	}

	return c
}

func TestRealPoleAtThreshold(t *testing.T) {
	c := newTestCascade(t, 2)

	p := DefaultParams()
	p.Poles[0] = Root{Real: 0.99, Active: true}
	c.Update(p)

	if got := c.Committed()[0]; got != biquad.Passthrough() {
		t.Fatalf("protected stage 0 = %+v, want passthrough", got)
	}

	st := c.Status(0)
	if st.Stable || st.Committed || !st.Rejected {
		t.Fatalf("status = %+v, want rejected", st)
	}
	if c.RejectedMask() != 1 {
		t.Fatalf("RejectedMask() = %04b, want 0001", c.RejectedMask())
	}

	p.Protect = false
	c.Update(p)

	got := c.Committed()[0]
	if got.A1 != -0.99 || got.A2 != 0 || got.B0 != 1 {
		t.Fatalf("unprotected stage 0 = %+v, want a1=-0.99 a2=0", got)
	}

	st = c.Status(0)
	if st.Stable || !st.Committed || st.Rejected {
		t.Fatalf("status = %+v, want committed but not stable", st)
	}
	if c.RejectedMask() != 0 {
		t.Fatalf("RejectedMask() = %04b, want 0", c.RejectedMask())
	}
}

// A gain change on a constant input ramps over the cross-fade instead of
// jumping.
func TestGainChangeIsSmooth(t *testing.T) {
	for _, tt := range []struct {
		name    string
		fade    int
		maxStep float64
		minStep float64
	}{
		{name: "default fade", fade: biquad.DefaultCrossfadeSamples, maxStep: 0.05},
		{name: "instant", fade: 1, maxStep: 1, minStep: 0.85},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCascade(t, 1, biquad.WithCrossfade(tt.fade))

			before := testutil.DC(1.0, 64)
			if err := c.Process([][]float64{before}); err != nil {
				t.Fatal(err)
			}

			p := DefaultParams()
			p.GainDB = -20
			c.Update(p)

			after := testutil.DC(1.0, 128)
			if err := c.Process([][]float64{after}); err != nil {
				t.Fatal(err)
			}

			out := testutil.Concat(before, after)
			step := testutil.MaxStep(out)

			if step > tt.maxStep || step < tt.minStep {
				t.Fatalf("max step = %f, want in [%f, %f]", step, tt.minStep, tt.maxStep)
			}

			if math.Abs(out[len(out)-1]-0.1) > 1e-12 {
				t.Fatalf("settled output = %f, want 0.1", out[len(out)-1])
			}
		})
	}
}

func TestRejectedStageKeepsPrevious(t *testing.T) {
	c := newTestCascade(t, 1)

	p := DefaultParams()
	p.Poles[2] = Root{Real: 0.5, Active: true}
	c.Update(p)

	want := c.Committed()[2]
	if want.A1 != -0.5 {
		t.Fatalf("stage 2 = %+v", want)
	}

	p.Poles[2] = Root{Real: 1.2, Imag: 0.3, Active: true, Conjugate: true}
	c.Update(p)

	if got := c.Committed()[2]; got != want {
		t.Fatalf("rejected update changed stage 2: %+v", got)
	}
	if !c.Status(2).Rejected {
		t.Fatal("stage 2 not reported rejected")
	}
	if c.Status(2).Derived == want {
		t.Fatal("status should report the derived set, not the committed one")
	}
}

func TestStatusMatchesGate(t *testing.T) {
	c := newTestCascade(t, 1)
	pol := DefaultPolicy()

	for _, protect := range []bool{true, false} {
		for re := -1.5; re <= 1.5; re += 0.05 {
			for im := 0.0; im <= 1.5; im += 0.05 {
				p := Params{Protect: protect}
				for i := range Stages {
					p.Poles[i] = Root{Real: re, Imag: im, Active: true, Conjugate: i%2 == 1}
				}
				c.Update(p)

				gate := pol
				gate.Protect = protect
				for i := range Stages {
					st := c.Status(i)
					conj := p.Poles[i].Conjugate
					if st.Committed != gate.Admits(st.Derived, conj) {
						t.Fatalf("re=%f im=%f stage %d: committed=%v disagrees with gate", re, im, i, st.Committed)
					}
					if st.Stable != pol.Stable(st.Derived, conj) {
						t.Fatalf("re=%f im=%f stage %d: stable=%v disagrees with gate", re, im, i, st.Stable)
					}
					if st.Rejected == st.Committed {
						t.Fatalf("rejected and committed both %v", st.Committed)
					}
				}
			}
		}
	}
}

func TestUnchangedParamsDoNotRestartFade(t *testing.T) {
	c := newTestCascade(t, 2)

	p := DefaultParams()
	p.Poles[1] = Root{Real: 0.3, Imag: 0.4, Active: true, Conjugate: true}
	c.Update(p)

	if !c.Fading() {
		t.Fatal("new coefficients should start a cross-fade")
	}

	data := core.Planar[float64](2, 64)
	if err := c.Process(data); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if c.Fading() {
		t.Fatal("cross-fade should have finished")
	}

	c.Update(p)
	if c.Fading() {
		t.Fatal("unchanged parameters restarted the cross-fade")
	}
}

func TestCascadeImpulse(t *testing.T) {
	c := newTestCascade(t, 2, biquad.WithCrossfade(1))

	p := DefaultParams()
	p.Poles[1] = Root{Real: 0.5, Active: true}
	p.GainDB = 20 * math.Log10(0.5)
	c.Update(p)

	data := core.Planar[float64](2, 8)
	data[0][0] = 1
	data[1][0] = 1

	if err := c.Process(data); err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := 0.5
	for n := range 8 {
		for ch := range 2 {
			if math.Abs(data[ch][n]-want) > 1e-12 {
				t.Fatalf("ch %d n %d: got %g, want %g", ch, n, data[ch][n], want)
			}
		}
		want *= 0.5
	}
}

func TestCascadeFewerChannels(t *testing.T) {
	c := newTestCascade(t, 2)

	if err := c.Process([][]float64{make([]float64, 16)}); err != nil {
		t.Fatalf("mono block on stereo cascade: %v", err)
	}
}

func TestCascadeErrors(t *testing.T) {
	c := newTestCascade(t, 2)

	if err := c.Process(core.Planar[float64](3, 4)); !errors.Is(err, core.ErrChannelCount) {
		t.Fatalf("3 channels: err = %v", err)
	}
	if err := c.Process(nil); !errors.Is(err, core.ErrChannelCount) {
		t.Fatalf("no channels: err = %v", err)
	}
	if err := c.Process([][]float64{make([]float64, 4), make([]float64, 5)}); !errors.Is(err, core.ErrBlockLength) {
		t.Fatalf("ragged block: err = %v", err)
	}
	if _, err := NewCascade[float64](0, DefaultPolicy()); !errors.Is(err, core.ErrChannelCount) {
		t.Fatalf("zero channels: err = %v", err)
	}
	if _, err := NewCascade[float64](1, Policy{Threshold: 2}); err == nil {
		t.Fatal("invalid policy accepted")
	}
}

func TestPrepareKeepsCoefficients(t *testing.T) {
	c := newTestCascade(t, 1)

	p := DefaultParams()
	p.Zeros[3] = Root{Real: -1, Active: true}
	c.Update(p)

	if err := c.Prepare(4); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if c.Channels() != 4 {
		t.Fatalf("Channels() = %d", c.Channels())
	}
	if c.Fading() {
		t.Fatal("Prepare should install coefficients without a fade")
	}
	if got := c.Committed()[3]; got.B1 != 1 {
		t.Fatalf("stage 3 = %+v", got)
	}
}

func TestReadParams(t *testing.T) {
	s := param.NewStore()
	_ = s.Set(param.PoleReal(2), 0.25)
	_ = s.Set(param.PoleImag(2), 0.5)
	_ = s.SetBool(param.PoleConj(2), true)
	_ = s.SetBool(param.PoleActive(2), true)
	_ = s.Set(param.ZeroReal(0), -0.75)
	_ = s.SetBool(param.ZeroActive(0), true)
	_ = s.Set(param.Gain, -12)
	_ = s.SetBool(param.PoleProtect, false)

	p := ReadParams(s)

	want := Root{Real: 0.25, Imag: 0.5, Conjugate: true, Active: true}
	if p.Poles[2] != want {
		t.Fatalf("pole 2 = %+v, want %+v", p.Poles[2], want)
	}
	if p.Zeros[0] != (Root{Real: -0.75, Active: true}) {
		t.Fatalf("zero 0 = %+v", p.Zeros[0])
	}
	if p.GainDB != -12 || p.Protect {
		t.Fatalf("gain=%f protect=%v", p.GainDB, p.Protect)
	}
}

func TestSetProtectionSnapsPoles(t *testing.T) {
	s := param.NewStore()
	_ = s.SetBool(param.PoleProtect, false)
	_ = s.Set(param.PoleReal(0), 1.2)
	_ = s.Set(param.PoleReal(1), 0.6)
	_ = s.Set(param.PoleImag(1), 0.8)
	_ = s.Set(param.PoleReal(2), 0.3)

	pol := DefaultPolicy()
	if err := SetProtection(s, true, pol); err != nil {
		t.Fatalf("SetProtection: %v", err)
	}

	if !s.Bool(param.PoleProtect) {
		t.Fatal("protection not switched on")
	}
	if got := s.Value(param.PoleReal(0)); math.Abs(got-0.98) > 1e-12 {
		t.Fatalf("pole 1 real = %f, want 0.98", got)
	}
	if r := math.Hypot(s.Value(param.PoleReal(1)), s.Value(param.PoleImag(1))); math.Abs(r-0.98) > 1e-12 {
		t.Fatalf("pole 2 radius = %f, want 0.98", r)
	}
	if got := s.Value(param.PoleReal(2)); got != 0.3 {
		t.Fatalf("pole 3 moved to %f", got)
	}

	_ = s.Set(param.PoleReal(0), 1.2)
	if err := SetProtection(s, false, pol); err != nil {
		t.Fatalf("SetProtection(off): %v", err)
	}
	if s.Value(param.PoleReal(0)) != 1.2 || s.Bool(param.PoleProtect) {
		t.Fatal("switching protection off must not move poles")
	}
}
