package storage

import (
	"errors"
	"fmt"
)

const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "./data"
	DefaultRegion   = "us-east-1"
)

// Config selects and configures the storage backend.
type Config struct {
	Enabled  bool        `yaml:"enabled" mapstructure:"enabled"`
	Provider string      `yaml:"provider" mapstructure:"provider"`
	Local    LocalConfig `yaml:"local" mapstructure:"local"`
	S3       S3Config    `yaml:"s3" mapstructure:"s3"`
}

// LocalConfig configures the filesystem backend.
type LocalConfig struct {
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket         string `yaml:"bucket" mapstructure:"bucket"`
	Region         string `yaml:"region" mapstructure:"region"`
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey      string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey      string `yaml:"secret_key" mapstructure:"secret_key"`
	Prefix         string `yaml:"prefix" mapstructure:"prefix"`
	ForcePathStyle bool   `yaml:"force_path_style" mapstructure:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Local.BasePath == "" {
		c.Local.BasePath = DefaultBasePath
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
}

// Validate checks the settings of the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.Local.BasePath == "" {
			return errors.New("storage: local.base_path is required")
		}
	case ProviderS3:
		var errs []error
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("storage: s3.bucket is required"))
		}
		if c.S3.Region == "" {
			errs = append(errs, errors.New("storage: s3.region is required"))
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, errors.New("storage: s3.access_key and s3.secret_key must be set together"))
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
