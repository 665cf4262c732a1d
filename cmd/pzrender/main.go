// Command pzrender runs a WAV file through the pole-zero processor and
// writes the filtered, limited result.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-polezero/dsp/filter/polezero"
	"github.com/cwbudde/algo-polezero/internal/cli"
	"github.com/cwbudde/algo-polezero/internal/ui"
	"github.com/cwbudde/algo-polezero/param"
	"github.com/cwbudde/algo-polezero/plugin"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version versionFlag `short:"v" help:"Show version information"`

	Input  string `arg:"" name:"input" help:"Input WAV file" type:"existingfile"`
	Output string `arg:"" name:"output" help:"Output WAV file" type:"path"`

	Params     string             `short:"p" type:"existingfile" placeholder:"file" help:"JSON object of parameter values"`
	Set        map[string]float64 `short:"s" placeholder:"id=value" help:"Override a parameter, e.g. Gain=-6"`
	SaveParams string             `type:"path" placeholder:"file" help:"Write the effective parameters as JSON"`

	Precision    string  `enum:"float32,float64" default:"float64" help:"Processing precision"`
	BlockSize    int     `default:"512" placeholder:"n" help:"Processing block size"`
	BitDepth     int     `default:"16" placeholder:"bits" help:"Output bit depth (16, 24 or 32)"`
	Threshold    float64 `default:"0.99" placeholder:"r" help:"Pole protection radius threshold"`
	Crossfade    int     `default:"30" placeholder:"n" help:"Coefficient cross-fade length in samples"`
	AttackMs     float64 `default:"2" placeholder:"ms" help:"Limiter look-ahead"`
	ReleaseMs    float64 `default:"2000" placeholder:"ms" help:"Limiter release"`
	NoCompensate bool    `help:"Keep the limiter latency in the output"`

	Bode     string `type:"path" placeholder:"file" help:"Write the Bode diagram of the final filter as CSV"`
	Spectrum string `type:"path" placeholder:"file" help:"Write the FFT magnitude of the final filter as CSV"`
	FFTSize  int    `default:"4096" placeholder:"n" help:"FFT size for --spectrum"`

	Progress bool `help:"Show an interactive progress view"`
	Quiet    bool `short:"q" help:"Suppress the summary"`
}

// versionFlag prints the version before required arguments are checked.
type versionFlag bool

func (versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(app.Model.Name, vars["version"])
	app.Exit(0)

	return nil
}

const description = "Pole-zero IIR filter renderer with brickwall limiting"

func main() {
	cliArgs := &CLI{}
	_ = kong.Parse(cliArgs,
		kong.Name("pzrender"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter("pzrender", description)),
	)

	if err := run(cliArgs); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(c *CLI) error {
	if err := c.validate(); err != nil {
		return err
	}

	store := param.NewStore()

	if c.Params != "" {
		if err := loadParams(store, c.Params); err != nil {
			return err
		}
	}

	if err := applyParams(store, c.Set); err != nil {
		return err
	}

	in, sampleRate, err := readWAV(c.Input)
	if err != nil {
		return err
	}

	opts := c.renderOptions()

	var res renderResult
	if c.Progress {
		res, err = renderWithProgress(c, in, sampleRate, store, opts)
	} else {
		res, err = c.render(in, sampleRate, store, opts)
	}

	if err != nil {
		return err
	}

	if err := writeWAV(c.Output, res.Output, sampleRate, c.BitDepth); err != nil {
		return err
	}

	if c.SaveParams != "" {
		if err := saveParams(store, c.SaveParams); err != nil {
			return err
		}
	}

	if c.Bode != "" {
		if err := writeBode(c.Bode, res.Committed, float64(sampleRate), 1000); err != nil {
			return err
		}
	}

	if c.Spectrum != "" {
		if err := writeSpectrum(c.Spectrum, res.Committed, float64(sampleRate), c.FFTSize); err != nil {
			return err
		}
	}

	if !c.Quiet {
		printSummary(os.Stdout, res, sampleRate, c.Precision)

		for _, line := range describeParams(store) {
			cli.PrintKV(os.Stdout, "Parameter", line)
		}
	}

	for i, st := range res.Status {
		if st.Rejected {
			cli.PrintWarning(fmt.Sprintf("stage %d was rejected by pole protection", i+1))
		}
	}

	return nil
}

var errUsage = errors.New("invalid option")

func (c *CLI) validate() error {
	if !slices.Contains([]int{16, 24, 32}, c.BitDepth) {
		return fmt.Errorf("%w: bit depth must be 16, 24 or 32: %d", errUsage, c.BitDepth)
	}

	if c.BlockSize < 1 {
		return fmt.Errorf("%w: block size must be positive: %d", errUsage, c.BlockSize)
	}

	if err := c.policy().Validate(); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if sameFile(c.Input, c.Output) {
		return fmt.Errorf("%w: output would overwrite input %s", errUsage, c.Input)
	}

	return nil
}

// policy keeps the default ratio between snap radius and threshold.
func (c *CLI) policy() polezero.Policy {
	p := polezero.DefaultPolicy()
	p.Threshold = c.Threshold
	p.SnapRadius = c.Threshold * polezero.DefaultSnapRadius / polezero.DefaultThreshold

	return p
}

func (c *CLI) renderOptions() renderOptions {
	return renderOptions{
		BlockSize:  c.BlockSize,
		Compensate: !c.NoCompensate,
		Config: []plugin.Option{
			plugin.WithPolicy(c.policy()),
			plugin.WithCrossfade(c.Crossfade),
			plugin.WithLimiterAttack(c.AttackMs),
			plugin.WithLimiterRelease(c.ReleaseMs),
		},
	}
}

func (c *CLI) render(in [][]float32, sampleRate int, store *param.Store, opts renderOptions) (renderResult, error) {
	if c.Precision == "float32" {
		return render[float32](in, sampleRate, store, opts)
	}

	return render[float64](in, sampleRate, store, opts)
}

// renderWithProgress runs the render in the background and drives the
// progress view from its block callback.
func renderWithProgress(c *CLI, in [][]float32, sampleRate int, store *param.Store, opts renderOptions) (renderResult, error) {
	model := ui.NewModel(filepath.Base(c.Input))
	p := tea.NewProgram(model)

	opts.Progress = func(frames, total int, gr float64) {
		p.Send(ui.ProgressMsg{Frames: frames, Total: total, GainReductionDB: gr})
	}

	var (
		res renderResult
		err error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err = c.render(in, sampleRate, store, opts)
		p.Send(ui.DoneMsg{Err: err})
	}()

	if _, runErr := p.Run(); runErr != nil {
		<-done
		return res, errors.Join(err, runErr)
	}

	<-done

	return res, err
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}

	bi, err := os.Stat(b)
	if err != nil {
		return false
	}

	return os.SameFile(ai, bi)
}
