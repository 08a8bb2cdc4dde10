package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/whisperdesk/annotation"
	"github.com/kbukum/whisperdesk/api"
	"github.com/kbukum/whisperdesk/component"
	"github.com/kbukum/whisperdesk/events"
	"github.com/kbukum/whisperdesk/labeling"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
	"github.com/kbukum/whisperdesk/observability"
	"github.com/kbukum/whisperdesk/server"
	"github.com/kbukum/whisperdesk/server/endpoint"
	"github.com/kbukum/whisperdesk/session"
	"github.com/kbukum/whisperdesk/storage"
	"github.com/kbukum/whisperdesk/transcription"
	"github.com/kbukum/whisperdesk/transcription/weights"

	// Engines and storage backends register themselves.
	_ "github.com/kbukum/whisperdesk/storage/local"
	_ "github.com/kbukum/whisperdesk/storage/s3"
	_ "github.com/kbukum/whisperdesk/transcription/sidecar"
	_ "github.com/kbukum/whisperdesk/transcription/whispercpp"
)

// App is the wired service: every collaborator built from Config, and the
// component registry that starts and stops them.
type App struct {
	Name       string
	Version    string
	Cfg        *Config
	Components *component.Registry
	Logger     *logger.Logger
	Metrics    *metrics.Metrics

	Catalog  *transcription.Catalog
	Weights  *weights.Cache
	Models   *transcription.Registry
	Pipeline *transcription.Pipeline
	Server   *server.Server

	onReady []Hook
	onStop  []Hook
}

// New applies defaults, validates cfg and wires the service. Nothing is
// started until Run.
func New(cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	log := o.logger
	if log == nil {
		logger.Init(cfg.Logging)
		logger.RegisterDefaults("config", "component", "http", "storage", "tracing")
		log = logger.GetGlobalLogger()
	}

	a := &App{
		Name:       cfg.Name,
		Version:    cfg.Version,
		Cfg:        cfg,
		Components: component.NewRegistry(),
		Logger:     log,
		Metrics:    metrics.New(),
		Catalog:    transcription.DefaultCatalog(),
	}
	if err := a.wire(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg, log, m := a.Cfg, a.Logger, a.Metrics

	wc, err := weights.New(cfg.Weights, m, log)
	if err != nil {
		return fmt.Errorf("weights cache: %w", err)
	}
	a.Weights = wc

	loader, err := transcription.Engines.Create(cfg.Transcription.Engine, transcription.EngineDeps{
		Config:  cfg.Transcription,
		Weights: wc,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("transcription engine: %w", err)
	}
	a.Models = transcription.NewRegistry(a.Catalog, loader,
		transcription.WithLoadTimeout(cfg.Transcription.LoadTimeout),
		transcription.WithRegistryMetrics(m),
		transcription.WithRegistryLogger(log),
	)
	a.Pipeline = transcription.NewPipeline(a.Models, cfg.Transcription, m, log)

	store := storage.NewComponent(cfg.Storage)
	annotations := annotation.NewStore(store.Storage, m, log)

	labelingClient, err := labeling.New(cfg.Labeling, m, log)
	if err != nil {
		return fmt.Errorf("labeling client: %w", err)
	}
	sessions, err := session.NewManager(cfg.Session)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}
	publisher, err := events.NewPublisher(cfg.Events, m, log)
	if err != nil {
		return fmt.Errorf("events publisher: %w", err)
	}

	a.Server = server.New(cfg.Server, log)
	handler, err := api.New(api.Deps{
		Catalog:      a.Catalog,
		Pipeline:     a.Pipeline,
		Weights:      wc,
		Annotations:  annotations,
		Labeling:     labelingClient,
		Sessions:     sessions,
		Events:       publisher,
		UploadDir:    cfg.UploadDir,
		DefaultModel: cfg.Transcription.DefaultModel,
		Log:          log,
	})
	if err != nil {
		return err
	}

	engine := a.Server.GinEngine()
	handler.Register(engine)
	engine.GET("/health", endpoint.Health(a.Name, a.Components.HealthAll))
	engine.GET("/info", endpoint.Info(a.Name, a.info))
	a.Server.Handle("/metrics", m.Handler())

	// Start order: tracing first so later components are traced, the server
	// last so no request arrives before its dependencies.
	for _, c := range []component.Component{
		observability.NewTracerComponent(cfg.Tracing),
		store,
		transcription.NewRegistryComponent(a.Models, cfg.Transcription.Preload),
		events.NewComponent(publisher),
		server.NewComponent(a.Server),
	} {
		if err := a.Components.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) info() map[string]any {
	loaded := []string{}
	for _, id := range a.Models.Loaded() {
		loaded = append(loaded, string(id))
	}
	return map[string]any{
		"environment":   a.Cfg.Environment,
		"engine":        a.Cfg.Transcription.Engine,
		"default_model": a.Cfg.Transcription.DefaultModel,
		"loaded_models": loaded,
		"storage":       a.Cfg.Storage.Provider,
		"labeling_mode": a.Cfg.Labeling.Mode,
	}
}

// Run starts every component, blocks until SIGINT, SIGTERM or ctx ends,
// and shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}
	a.WaitForSignal(ctx)
	return a.stop()
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.logSummary(ctx, time.Since(start))
	return nil
}

// ReadyCheck reports every component that is not healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// WaitForSignal blocks until an interrupt or terminate signal, or ctx ends.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

func (a *App) stop() error {
	a.Logger.Info("shutting down application", logger.Fields("timeout", a.Cfg.ShutdownTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.ErrorFields("shutdown", err))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", logger.ErrorFields("shutdown", err))
		shutdownErr = err
	}
	a.Logger.Info("application shutdown complete")
	return shutdownErr
}
