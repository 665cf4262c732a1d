package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
	"github.com/cwbudde/algo-polezero/dsp/filter/polezero"
	"github.com/cwbudde/algo-polezero/internal/cli"
	"github.com/cwbudde/algo-polezero/measure/response"
)

// printSummary writes the render statistics in the styled key/value layout.
func printSummary(w io.Writer, res renderResult, sampleRate int, precision string) {
	fmt.Fprintln(w, cli.TitleStyle.Render("Render summary"))

	frames := 0
	if len(res.Output) > 0 {
		frames = len(res.Output[0])
	}

	cli.PrintKV(w, "Sample rate", fmt.Sprintf("%d Hz", sampleRate))
	cli.PrintKV(w, "Channels", len(res.Output))
	cli.PrintKV(w, "Frames", frames)
	cli.PrintKV(w, "Precision", precision)
	cli.PrintKV(w, "Latency", fmt.Sprintf("%d samples", res.Latency))
	cli.PrintKV(w, "Max gain reduction", fmt.Sprintf("%.2f dB", res.MinGainDB))

	for i, st := range res.Status {
		c := res.Committed[i]
		state := "stable"

		switch {
		case st.Rejected:
			state = "rejected"
		case !st.Stable:
			state = "unstable"
		case c.IsPassthrough():
			state = "bypass"
		}

		cli.PrintKV(w, fmt.Sprintf("Stage %d", i+1),
			fmt.Sprintf("%-8s r=%.3f b=[%.4g %.4g %.4g] a=[%.4g %.4g]",
				state, c.MaxPoleRadius(), c.B0, c.B1, c.B2, c.A1, c.A2))
	}

	for ch, lv := range res.Levels {
		cli.PrintKV(w, fmt.Sprintf("Channel %d", ch),
			fmt.Sprintf("rms %.1f dB, peak %.1f dB", core.LinearPowerToDB(lv.RMS), core.LinearToDB(lv.Peak)))
	}
}

// writeBode writes frequency, magnitude and phase of the committed cascade
// as CSV.
func writeBode(path string, coeffs [polezero.Stages]biquad.Coefficients, sampleRate float64, points int) error {
	b := response.ComputeBode(coeffs[:], response.WithSampleRate(sampleRate), response.WithPoints(points))

	return writeCSV(path, "frequency_hz,magnitude_db,phase_deg", len(b.Frequency), func(w io.Writer, k int) {
		fmt.Fprintf(w, "%.6f,%.6f,%.6f\n", b.Frequency[k], b.MagnitudeDB[k], b.PhaseDeg[k])
	})
}

// writeSpectrum writes the FFT magnitude of the truncated cascade impulse
// response as CSV.
func writeSpectrum(path string, coeffs [polezero.Stages]biquad.Coefficients, sampleRate float64, size int) error {
	an, err := response.NewAnalyzer(size)
	if err != nil {
		return err
	}

	mag, err := an.Magnitude(coeffs[:])
	if err != nil {
		return err
	}

	return writeCSV(path, "frequency_hz,magnitude_db", len(mag), func(w io.Writer, k int) {
		fmt.Fprintf(w, "%.6f,%.6f\n", an.BinFrequency(k, sampleRate), core.LinearToDB(mag[k]))
	})
}

func writeCSV(path, header string, rows int, row func(io.Writer, int)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, header)

	for k := range rows {
		row(w, k)
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
