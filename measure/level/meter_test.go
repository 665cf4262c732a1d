package level

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/internal/testutil"
)

func TestMeterDefaults(t *testing.T) {
	m := NewMeter[float32]()

	if m.SampleRate() != 44100 || m.MaxChannels() != 8 {
		t.Fatalf("fs=%f channels=%d", m.SampleRate(), m.MaxChannels())
	}
	if m.HoldSamples() != 132300 {
		t.Fatalf("hold = %d samples, want 132300", m.HoldSamples())
	}

	rms, peak := m.Levels()
	if len(rms) != 0 || len(peak) != 0 {
		t.Fatalf("fresh meter published %d channels", len(rms))
	}
}

func TestMeterOptions(t *testing.T) {
	m := NewMeter[float64](
		WithSampleRate(1000),
		WithTimeConstants(5, 50),
		WithHoldTime(20),
		WithMaxChannels(2),
		WithSampleRate(-1),
		nil,
	)

	if m.SampleRate() != 1000 || m.MaxChannels() != 2 || m.HoldSamples() != 20 {
		t.Fatalf("fs=%f channels=%d hold=%d", m.SampleRate(), m.MaxChannels(), m.HoldSamples())
	}
}

func TestMeterRMSConvergesToPower(t *testing.T) {
	m := NewMeter[float64]()

	data := testutil.PlanarOf[float64](testutil.DC(0.5, 44100), testutil.DC(-0.25, 44100))
	if err := m.Analyze(data); err != nil {
		t.Fatal(err)
	}

	rms, _ := m.Levels()
	if len(rms) != 2 {
		t.Fatalf("published %d channels, want 2", len(rms))
	}
	if math.Abs(rms[0]-0.25) > 1e-9 || math.Abs(rms[1]-0.0625) > 1e-9 {
		t.Fatalf("rms = %v, want [0.25 0.0625]", rms)
	}
}

func TestMeterRMSRelease(t *testing.T) {
	const fs = 1000.0
	m := NewMeter[float64](WithSampleRate(fs))

	if err := m.Analyze([][]float64{testutil.DC(1, 2000)}); err != nil {
		t.Fatal(err)
	}

	alpha := core.TimeConstant(300, fs)
	prev, _ := m.Levels()

	for range 50 {
		if err := m.Analyze([][]float64{{0}}); err != nil {
			t.Fatal(err)
		}
		cur, _ := m.Levels()
		if math.Abs(cur[0]-prev[0]*alpha) > 1e-15 {
			t.Fatalf("release step %g -> %g, want factor %g", prev[0], cur[0], alpha)
		}
		prev = cur
	}
}

// A peak is held for the hold time and then decays monotonically.
func TestMeterPeakHold(t *testing.T) {
	const fs = 1000.0
	m := NewMeter[float64](WithSampleRate(fs), WithHoldTime(50))
	h := m.HoldSamples()

	if err := m.Analyze([][]float64{{0.8}}); err != nil {
		t.Fatal(err)
	}

	peak := make([]float64, 1)
	rms := make([]float64, 1)

	for i := 1; i <= h; i++ {
		if err := m.Analyze([][]float64{{0.1}}); err != nil {
			t.Fatal(err)
		}
		m.Snapshot(rms, peak)
		if peak[0] != 0.8 {
			t.Fatalf("sample %d of hold: peak %f, want 0.8", i, peak[0])
		}
	}

	last := peak[0]
	for i := range 200 {
		if err := m.Analyze([][]float64{{0}}); err != nil {
			t.Fatal(err)
		}
		m.Snapshot(rms, peak)
		if peak[0] >= last {
			t.Fatalf("decay step %d: peak %f not below %f", i, peak[0], last)
		}
		last = peak[0]
	}
}

func TestMeterNewPeakRestartsHold(t *testing.T) {
	m := NewMeter[float32](WithSampleRate(1000), WithHoldTime(10))

	block := [][]float32{make([]float32, 8)}
	block[0][0] = 0.5
	block[0][7] = 0.9
	if err := m.Analyze(block); err != nil {
		t.Fatal(err)
	}

	if err := m.Analyze([][]float32{make([]float32, 10)}); err != nil {
		t.Fatal(err)
	}

	_, peak := m.Levels()
	if math.Abs(peak[0]-0.9) > 1e-7 {
		t.Fatalf("peak = %f, want held 0.9", peak[0])
	}
}

func TestMeterChannelCountFollowsInput(t *testing.T) {
	m := NewMeter[float64]()

	if err := m.Analyze(core.Planar[float64](4, 16)); err != nil {
		t.Fatal(err)
	}
	if rms, _ := m.Levels(); len(rms) != 4 {
		t.Fatalf("published %d channels, want 4", len(rms))
	}

	if err := m.Analyze(core.Planar[float64](1, 16)); err != nil {
		t.Fatal(err)
	}
	if rms, _ := m.Levels(); len(rms) != 1 {
		t.Fatalf("published %d channels, want 1", len(rms))
	}

	short := make([]float64, 0)
	if n := m.Snapshot(short, short); n != 1 {
		t.Fatalf("Snapshot returned %d, want 1", n)
	}
}

func TestMeterErrors(t *testing.T) {
	m := NewMeter[float64](WithMaxChannels(2))

	if err := m.Analyze(core.Planar[float64](3, 4)); !errors.Is(err, core.ErrChannelCount) {
		t.Fatalf("3 channels: err = %v", err)
	}
	if err := m.Analyze([][]float64{{1, 2}, {1}}); !errors.Is(err, core.ErrBlockLength) {
		t.Fatalf("ragged: err = %v", err)
	}
	if err := m.Prepare(0); err == nil {
		t.Fatal("expected sample rate error")
	}
}

func TestMeterPrepareResets(t *testing.T) {
	m := NewMeter[float64]()
	_ = m.Analyze([][]float64{testutil.DC(1, 100)})

	if err := m.Prepare(48000); err != nil {
		t.Fatal(err)
	}

	rms, peak := m.Levels()
	if len(rms) != 0 || len(peak) != 0 {
		t.Fatal("Prepare should clear published readings")
	}
	if m.HoldSamples() != 144000 {
		t.Fatalf("hold = %d, want 144000", m.HoldSamples())
	}
}

func TestMeterIgnoresNaN(t *testing.T) {
	m := NewMeter[float64]()
	if err := m.Analyze([][]float64{{math.NaN(), 0.5, math.NaN()}}); err != nil {
		t.Fatal(err)
	}

	rms, peak := m.Levels()
	testutil.RequireFinite(t, rms)
	if peak[0] != 0.5 {
		t.Fatalf("peak = %f, want 0.5", peak[0])
	}
}

func TestMeterConcurrentSnapshot(t *testing.T) {
	m := NewMeter[float32]()
	block := testutil.PlanarOf[float32](
		testutil.DeterministicNoise(1, 1, 256),
		testutil.DeterministicNoise(2, 1, 256),
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for range 500 {
			_ = m.Analyze(block)
		}
	}()

	go func() {
		defer wg.Done()
		rms := make([]float64, 8)
		peak := make([]float64, 8)
		for range 500 {
			n := m.Snapshot(rms, peak)
			for ch := range n {
				if rms[ch] < 0 || rms[ch] > 1 || peak[ch] < 0 || peak[ch] > 1 {
					t.Errorf("ch%d: rms=%f peak=%f out of range", ch, rms[ch], peak[ch])
					return
				}
			}
		}
	}()

	wg.Wait()
}

func BenchmarkMeterAnalyze(b *testing.B) {
	m := NewMeter[float32]()
	block := testutil.PlanarOf[float32](
		testutil.DeterministicNoise(1, 1, 512),
		testutil.DeterministicNoise(2, 1, 512),
	)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		_ = m.Analyze(block)
	}
}
