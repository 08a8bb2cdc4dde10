package app

import (
	"fmt"
	"time"

	"github.com/kbukum/whisperdesk/config"
	"github.com/kbukum/whisperdesk/events"
	"github.com/kbukum/whisperdesk/labeling"
	"github.com/kbukum/whisperdesk/observability"
	"github.com/kbukum/whisperdesk/server"
	"github.com/kbukum/whisperdesk/session"
	"github.com/kbukum/whisperdesk/storage"
	"github.com/kbukum/whisperdesk/transcription"
	"github.com/kbukum/whisperdesk/transcription/weights"
	"github.com/kbukum/whisperdesk/validation"
)

// ServiceName names the service in logs, traces and config lookup.
const ServiceName = "whisperdesk"

// Config is the complete service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config              `yaml:"server" mapstructure:"server"`
	Transcription transcription.Config       `yaml:"transcription" mapstructure:"transcription"`
	Weights       weights.Config             `yaml:"weights" mapstructure:"weights"`
	Storage       storage.Config             `yaml:"storage" mapstructure:"storage"`
	Labeling      labeling.Config            `yaml:"labeling" mapstructure:"labeling"`
	Session       session.Config             `yaml:"session" mapstructure:"session"`
	Events        events.Config              `yaml:"events" mapstructure:"events"`
	Tracing       observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`

	// UploadDir holds uploaded audio until the pipeline removes it.
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LoadConfig reads the configuration from file, .env and environment, then
// applies defaults and validates it. path may be empty.
func LoadConfig(path string) (*Config, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &Config{}
	if err := config.LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields of every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Weights.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Labeling.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Events.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	c.Tracing.ServiceName = c.Name
	c.Tracing.ServiceVersion = c.Version
	c.Tracing.Environment = c.Environment
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 15 * time.Second
	}
}

// Validate checks every section against the default catalog.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Transcription.Validate(transcription.DefaultCatalog()); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Labeling.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}

	sections := []struct {
		name string
		cfg  any
	}{
		{"transcription", &c.Transcription},
		{"labeling", &c.Labeling},
		{"session", &c.Session},
	}
	for _, s := range sections {
		if err := validation.ValidateConfig(s.name, s.cfg); err != nil {
			return err
		}
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}
	return nil
}
