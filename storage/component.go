package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/whisperdesk/component"
	"github.com/kbukum/whisperdesk/logger"
)

// Component wraps a Storage backend for the component registry.
type Component struct {
	cfg     Config
	storage Storage
	log     *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a storage component; the backend is built on Start.
func NewComponent(cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: logger.Get("storage")}
}

// Storage returns the backend, or nil before Start.
func (c *Component) Storage() Storage { return c.storage }

func (c *Component) Name() string { return "storage" }

func (c *Component) Start(ctx context.Context) error {
	s, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

func (c *Component) Stop(context.Context) error { return nil }

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.storage == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if _, err := c.storage.Exists(ctx, ".health"); err != nil {
		h.Status = component.StatusDegraded
		h.Message = err.Error()
	}
	return h
}

func (c *Component) Describe() component.Description {
	details := c.cfg.Local.BasePath
	if c.cfg.Provider == ProviderS3 {
		details = "s3://" + c.cfg.S3.Bucket + "/" + c.cfg.S3.Prefix
	}
	return component.Description{Name: "Storage", Type: c.cfg.Provider, Details: details}
}
