package app

import (
	"context"
	"time"

	"github.com/kbukum/whisperdesk/component"
	"github.com/kbukum/whisperdesk/logger"
)

// logSummary logs one line per component health and a closing line with
// the startup time and overall status.
func (a *App) logSummary(ctx context.Context, took time.Duration) {
	healths := a.Components.HealthAll(ctx)
	healthy := 0
	for _, h := range healths {
		fields := logger.Fields(logger.FieldComponent, h.Name, "status", string(h.Status))
		if h.Message != "" {
			fields["message"] = h.Message
		}
		a.Logger.Info("component status", fields)
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}
	fields := logger.DurationFields("startup", took)
	fields["name"] = a.Name
	fields["version"] = a.Version
	fields["addr"] = a.Server.Addr()
	fields["healthy"] = healthy
	fields["components"] = len(healths)
	fields["status"] = string(component.Overall(healths))
	a.Logger.Info("application ready", fields)
}
