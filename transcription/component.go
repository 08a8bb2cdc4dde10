package transcription

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/whisperdesk/component"
)

// RegistryComponent ties a Registry to the service lifecycle: it preloads
// configured models on start and releases every handle on stop.
type RegistryComponent struct {
	registry *Registry
	preload  []string
}

var (
	_ component.Component   = (*RegistryComponent)(nil)
	_ component.Describable = (*RegistryComponent)(nil)
)

// NewRegistryComponent wraps r; preload lists model ids to warm on start.
func NewRegistryComponent(r *Registry, preload []string) *RegistryComponent {
	return &RegistryComponent{registry: r, preload: preload}
}

func (c *RegistryComponent) Name() string { return "model-registry" }

func (c *RegistryComponent) Start(ctx context.Context) error {
	if len(c.preload) > 0 {
		c.registry.Preload(ctx, c.preload...)
	}
	return nil
}

func (c *RegistryComponent) Stop(context.Context) error {
	return c.registry.Reset()
}

// Health is degraded while the engine reports itself unavailable, since
// cached models may still serve.
func (c *RegistryComponent) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	loaded := c.registry.loadedStrings()
	if len(loaded) > 0 {
		h.Message = "loaded: " + strings.Join(loaded, ",")
	}
	if !c.registry.loader.IsAvailable(ctx) {
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("engine %s unavailable", c.registry.loader.Name())
	}
	return h
}

func (c *RegistryComponent) Describe() component.Description {
	return component.Description{
		Name:    "Model Registry",
		Type:    "engine",
		Details: fmt.Sprintf("%s, %d models", c.registry.loader.Name(), len(c.registry.catalog.models)),
	}
}
