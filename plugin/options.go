package plugin

import (
	"github.com/cwbudde/algo-polezero/dsp/core"
	"github.com/cwbudde/algo-polezero/dsp/filter/biquad"
	"github.com/cwbudde/algo-polezero/dsp/filter/polezero"
)

// DefaultLimiterReleaseMs is the limiter release installed on Prepare.
const DefaultLimiterReleaseMs = 2000.0

// Config holds the processor configuration.
type Config struct {
	core.ProcessorConfig

	Policy           polezero.Policy
	CrossfadeSamples int
	LimiterReleaseMs float64
	LimiterAttackMs  float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns stereo 48 kHz processing with the default gate,
// a 30-sample cross-fade and a 2 s limiter release.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig:  core.DefaultProcessorConfig(),
		Policy:           polezero.DefaultPolicy(),
		CrossfadeSamples: biquad.DefaultCrossfadeSamples,
		LimiterReleaseMs: DefaultLimiterReleaseMs,
		LimiterAttackMs:  2,
	}
}

// WithProcessorOptions applies core processor options.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *Config) {
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.ProcessorConfig)
			}
		}
	}
}

// WithPolicy sets the gate radii.
func WithPolicy(p polezero.Policy) Option {
	return func(cfg *Config) {
		cfg.Policy = p
	}
}

// WithCrossfade sets the coefficient cross-fade length in samples.
func WithCrossfade(samples int) Option {
	return func(cfg *Config) {
		if samples >= 1 {
			cfg.CrossfadeSamples = samples
		}
	}
}

// WithLimiterRelease sets the limiter release time installed on Prepare.
func WithLimiterRelease(ms float64) Option {
	return func(cfg *Config) {
		if ms > 0 {
			cfg.LimiterReleaseMs = ms
		}
	}
}

// WithLimiterAttack sets the limiter attack and look-ahead time.
func WithLimiterAttack(ms float64) Option {
	return func(cfg *Config) {
		if ms > 0 {
			cfg.LimiterAttackMs = ms
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
