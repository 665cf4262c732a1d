package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestInterleaveRoundTrip(t *testing.T) {
	planar := [][]float32{{1, 2, 3}, {-1, -2, -3}}

	inter := interleave(planar)
	want := []float32{1, -1, 2, -2, 3, -3}

	for i := range want {
		if inter[i] != want[i] {
			t.Fatalf("interleave[%d]=%v, want %v", i, inter[i], want[i])
		}
	}

	back := deinterleave(inter, 2)
	for ch := range planar {
		for i := range planar[ch] {
			if back[ch][i] != planar[ch][i] {
				t.Fatalf("deinterleave[%d][%d]=%v, want %v", ch, i, back[ch][i], planar[ch][i])
			}
		}
	}
}

func TestInterleaveShortestChannel(t *testing.T) {
	got := interleave([][]float32{{1, 2, 3}, {4}})
	if len(got) != 2 {
		t.Fatalf("len=%d, want 2", len(got))
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	in := [][]float32{make([]float32, 256), make([]float32, 256)}
	for i := range in[0] {
		in[0][i] = float32(0.5 * math.Sin(2*math.Pi*float64(i)/32))
		in[1][i] = -in[0][i] / 2
	}

	if err := writeWAV(path, in, 44100, 16); err != nil {
		t.Fatalf("writeWAV: %v", err)
	}

	out, fs, err := readWAV(path)
	if err != nil {
		t.Fatalf("readWAV: %v", err)
	}

	if fs != 44100 {
		t.Fatalf("sample rate=%d, want 44100", fs)
	}

	if len(out) != 2 || len(out[0]) != 256 {
		t.Fatalf("shape=%dx%d, want 2x256", len(out), len(out[0]))
	}

	for ch := range in {
		for i := range in[ch] {
			if d := math.Abs(float64(out[ch][i] - in[ch][i])); d > 1e-3 {
				t.Fatalf("ch%d[%d]=%v, want %v", ch, i, out[ch][i], in[ch][i])
			}
		}
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := readWAV(path); !errors.Is(err, errInvalidWAV) {
		t.Fatalf("err=%v, want errInvalidWAV", err)
	}
}

func TestWriteWAVNoChannels(t *testing.T) {
	if err := writeWAV(filepath.Join(t.TempDir(), "x.wav"), nil, 48000, 16); err == nil {
		t.Fatal("expected error for empty channel list")
	}
}
