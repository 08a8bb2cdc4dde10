package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/whisperdesk/component"
)

// TracerComponent installs the tracer provider on Start and flushes it on
// Stop. Disabled configs leave the global no-op provider in place.
type TracerComponent struct {
	cfg TracerConfig
	tp  *sdktrace.TracerProvider
}

var _ component.Component = (*TracerComponent)(nil)

// NewTracerComponent creates a tracer component.
func NewTracerComponent(cfg TracerConfig) *TracerComponent {
	cfg.ApplyDefaults()
	return &TracerComponent{cfg: cfg}
}

func (c *TracerComponent) Name() string { return "tracing" }

func (c *TracerComponent) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}
	tp, err := InitTracer(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.tp = tp
	return nil
}

func (c *TracerComponent) Stop(ctx context.Context) error {
	if c.tp == nil {
		return nil
	}
	return c.tp.Shutdown(ctx)
}

func (c *TracerComponent) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.cfg.Enabled {
		h.Message = "disabled"
	}
	return h
}
