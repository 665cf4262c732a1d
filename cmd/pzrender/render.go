package main

import (
	"fmt"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
	"github.com/cwbudde/algo-polezero/dsp/filter/polezero"
	"github.com/cwbudde/algo-polezero/param"
	"github.com/cwbudde/algo-polezero/plugin"
)

type renderOptions struct {
	BlockSize  int
	Compensate bool
	Config     []plugin.Option
	// Progress, if set, is called after every block.
	Progress func(frames, total int, gainReductionDB float64)
}

type renderResult struct {
	Output        [][]float32
	Latency       int
	GainReduction float64
	MinGainDB     float64
	Levels        []meterLevel
	Status        [polezero.Stages]polezero.StageStatus
	Committed     [polezero.Stages]biquad.Coefficients
}

type meterLevel struct {
	RMS  float64
	Peak float64
}

// render runs the planar input through a processor at precision T. With
// Compensate set, the limiter latency is flushed and trimmed so the output
// aligns with the input.
func render[T core.Float](in [][]float32, sampleRate int, params *param.Store, opts renderOptions) (renderResult, error) {
	var res renderResult

	channels := len(in)
	if channels == 0 {
		return res, fmt.Errorf("render: %w: 0", core.ErrChannelCount)
	}

	frames := len(in[0])

	proc, err := plugin.New[T](params, opts.Config...)
	if err != nil {
		return res, err
	}

	if err := proc.Prepare(float64(sampleRate), opts.BlockSize, channels); err != nil {
		return res, err
	}

	latency := proc.Latency()
	total := frames
	if opts.Compensate {
		total += latency
	}

	work := core.Planar[T](channels, total)
	for ch := range in {
		for i := range frames {
			work[ch][i] = T(in[ch][i])
		}
	}

	block := make([][]T, channels)

	for start := 0; start < total; start += opts.BlockSize {
		end := min(start+opts.BlockSize, total)
		for ch := range block {
			block[ch] = work[ch][start:end]
		}

		if err := proc.ProcessBlock(block); err != nil {
			return res, fmt.Errorf("render: block at %d: %w", start, err)
		}

		gr := proc.GainReductionDB()
		res.MinGainDB = min(res.MinGainDB, gr)

		if opts.Progress != nil {
			opts.Progress(end, total, gr)
		}
	}

	offset := 0
	if opts.Compensate {
		offset = latency
	}

	res.Output = make([][]float32, channels)
	for ch := range res.Output {
		res.Output[ch] = make([]float32, frames)
		for i := range frames {
			res.Output[ch][i] = float32(work[ch][i+offset])
		}
	}

	rms := make([]float64, channels)
	peak := make([]float64, channels)
	n := proc.MeterSnapshot(rms, peak)

	res.Levels = make([]meterLevel, n)
	for ch := range n {
		res.Levels[ch] = meterLevel{RMS: rms[ch], Peak: peak[ch]}
	}

	res.Latency = latency
	res.GainReduction = proc.GainReductionDB()
	res.Committed = proc.Committed()

	for i := range polezero.Stages {
		res.Status[i] = proc.StageStatus(i)
	}

	return res, nil
}
