package events

import (
	"context"
	"strings"

	"github.com/kbukum/whisperdesk/component"
)

// Component adapts a KafkaPublisher to the component lifecycle so the
// writer is flushed on shutdown.
type Component struct {
	publisher *KafkaPublisher
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps p.
func NewComponent(p *KafkaPublisher) *Component {
	return &Component{publisher: p}
}

func (c *Component) Name() string                { return "events" }
func (c *Component) Start(context.Context) error { return nil }
func (c *Component) Stop(context.Context) error  { return c.publisher.Close() }

func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.publisher.Enabled() {
		h.Message = "log-only"
	}
	return h
}

func (c *Component) Describe() component.Description {
	details := "log-only"
	if c.publisher.Enabled() {
		details = strings.Join(c.publisher.cfg.Brokers, ",")
	}
	return component.Description{Name: "Events", Type: "kafka", Details: details}
}
