package level

import "github.com/cwbudde/algo-polezero/dsp/core"

// MeterConfig defines configuration for the level meter.
type MeterConfig struct {
	core.ProcessorConfig

	// MaxChannels bounds the channel count Analyze accepts.
	MaxChannels int
	// AttackMs and ReleaseMs are the RMS smoothing time constants. The
	// release constant also sets the peak decay after the hold time.
	AttackMs  float64
	ReleaseMs float64
	// HoldMs is how long a peak is held before it decays.
	HoldMs float64
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns 44.1 kHz, 8 channels, 10 ms attack, 300 ms
// release and 3 s peak hold.
func DefaultMeterConfig() MeterConfig {
	cfg := MeterConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		MaxChannels:     8,
		AttackMs:        10,
		ReleaseMs:       300,
		HoldMs:          3000,
	}
	cfg.SampleRate = 44100

	return cfg
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) MeterOption {
	return func(cfg *MeterConfig) {
		if sampleRate > 0 && core.IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithTimeConstants sets the RMS attack and release time constants.
func WithTimeConstants(attackMs, releaseMs float64) MeterOption {
	return func(cfg *MeterConfig) {
		if attackMs > 0 {
			cfg.AttackMs = attackMs
		}
		if releaseMs > 0 {
			cfg.ReleaseMs = releaseMs
		}
	}
}

// WithHoldTime sets the peak hold time. Zero disables holding.
func WithHoldTime(ms float64) MeterOption {
	return func(cfg *MeterConfig) {
		if ms >= 0 {
			cfg.HoldMs = ms
		}
	}
}

// WithMaxChannels sets the number of channels the meter can track.
func WithMaxChannels(channels int) MeterOption {
	return func(cfg *MeterConfig) {
		if channels > 0 {
			cfg.MaxChannels = channels
		}
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
