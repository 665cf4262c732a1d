package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

var errInvalidWAV = errors.New("invalid wav file")

// readWAV decodes a PCM WAV file into planar float32 channels.
func readWAV(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", errInvalidWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("%w: %s has no channels", errInvalidWAV, path)
	}

	return deinterleave(buf.Data, buf.Format.NumChannels), buf.Format.SampleRate, nil
}

// writeWAV encodes planar channels as PCM at the given bit depth.
func writeWAV(path string, channels [][]float32, sampleRate, bitDepth int) error {
	if len(channels) == 0 {
		return fmt.Errorf("write %s: no channels", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, len(channels), 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			NumChannels: len(channels),
			SampleRate:  sampleRate,
		},
		Data:           interleave(channels),
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	return f.Close()
}

func deinterleave(data []float32, numChannels int) [][]float32 {
	frames := len(data) / numChannels
	out := make([][]float32, numChannels)

	for ch := range out {
		out[ch] = make([]float32, frames)
		for i := range frames {
			out[ch][i] = data[i*numChannels+ch]
		}
	}

	return out
}

func interleave(channels [][]float32) []float32 {
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	out := make([]float32, frames*len(channels))
	for i := range frames {
		for ch := range channels {
			out[i*len(channels)+ch] = channels[ch][i]
		}
	}

	return out
}
