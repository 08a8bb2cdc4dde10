package server

import (
	"context"

	"github.com/kbukum/whisperdesk/component"
)

var (
	_ component.Component   = (*ServerComponent)(nil)
	_ component.Describable = (*ServerComponent)(nil)
)

// ServerComponent adapts Server to the component lifecycle. It is
// registered last so it starts after everything it serves.
type ServerComponent struct {
	server *Server
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

func (sc *ServerComponent) Name() string { return "http-server" }

func (sc *ServerComponent) Start(ctx context.Context) error { return sc.server.Start(ctx) }

func (sc *ServerComponent) Stop(ctx context.Context) error { return sc.server.Stop(ctx) }

func (sc *ServerComponent) Health(context.Context) component.Health {
	if sc.server.listener == nil {
		return component.Health{Name: sc.Name(), Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: sc.Name(), Status: component.StatusHealthy}
}

func (sc *ServerComponent) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: sc.server.Addr(),
	}
}
