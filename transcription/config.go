package transcription

import (
	"fmt"
	"time"
)

// Config configures the transcription core and the engines.
type Config struct {
	// Engine selects the registered engine ("whispercpp" or "sidecar").
	Engine       string `yaml:"engine" mapstructure:"engine" validate:"required"`
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
	// Timeout bounds a single inference call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// LoadTimeout bounds a single model load; zero means unbounded.
	LoadTimeout time.Duration `yaml:"load_timeout" mapstructure:"load_timeout" validate:"gte=0"`
	// MaxConcurrent caps simultaneous inferences; QueueWait is how long a
	// request waits for a slot (negative waits until the client goes away).
	MaxConcurrent  int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=0"`
	QueueWait      time.Duration `yaml:"queue_wait" mapstructure:"queue_wait"`
	WordTimestamps bool          `yaml:"word_timestamps" mapstructure:"word_timestamps"`
	// Preload lists models loaded at startup.
	Preload []string `yaml:"preload" mapstructure:"preload"`

	WhisperCpp WhisperCppConfig `yaml:"whispercpp" mapstructure:"whispercpp"`
	Sidecar    SidecarConfig    `yaml:"sidecar" mapstructure:"sidecar"`
}

// WhisperCppConfig configures the whisper.cpp CLI engine.
type WhisperCppConfig struct {
	Binary  string `yaml:"binary" mapstructure:"binary"`
	FFmpeg  string `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	Threads int    `yaml:"threads" mapstructure:"threads" validate:"gte=0"`
	// WorkDir holds converted audio and JSON output; defaults to the OS temp dir.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
}

// SidecarConfig configures the faster-whisper HTTP sidecar engine.
type SidecarConfig struct {
	URL         string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ComputeType string        `yaml:"compute_type" mapstructure:"compute_type"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Engine == "" {
		c.Engine = "whispercpp"
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "base"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Minute
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 2
	}
	if c.QueueWait == 0 {
		c.QueueWait = 30 * time.Second
	}
	if c.WhisperCpp.Binary == "" {
		c.WhisperCpp.Binary = "whisper-cli"
	}
	if c.WhisperCpp.FFmpeg == "" {
		c.WhisperCpp.FFmpeg = "ffmpeg"
	}
	if c.Sidecar.URL == "" {
		c.Sidecar.URL = "http://localhost:8387"
	}
	if c.Sidecar.Timeout == 0 {
		c.Sidecar.Timeout = c.Timeout
	}
}

// Validate checks cross-field constraints against catalog.
func (c *Config) Validate(catalog *Catalog) error {
	if !catalog.IsKnown(c.DefaultModel) {
		return fmt.Errorf("transcription.default_model %q is not one of %v", c.DefaultModel, catalog.IDs())
	}
	for _, id := range c.Preload {
		if !catalog.IsKnown(id) {
			return fmt.Errorf("transcription.preload: unknown model %q", id)
		}
	}
	if !Engines.Has(c.Engine) {
		return fmt.Errorf("transcription.engine %q is not registered (available: %v)", c.Engine, Engines.List())
	}
	return nil
}
