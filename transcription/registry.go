package transcription

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
	"github.com/kbukum/whisperdesk/observability"
)

// Registry hands out model handles, loading each at most once at a time and
// caching it for the life of the process.
type Registry struct {
	catalog     *Catalog
	loader      Loader
	loadTimeout time.Duration
	metrics     *metrics.Metrics
	log         *logger.Logger

	mu     sync.RWMutex
	models map[ModelID]Model
	group  singleflight.Group
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLoadTimeout bounds each load. Zero leaves loads unbounded.
func WithLoadTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.loadTimeout = d }
}

// WithRegistryMetrics records loads on m.
func WithRegistryMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates a registry over catalog that loads through loader.
func NewRegistry(catalog *Catalog, loader Loader, opts ...RegistryOption) *Registry {
	r := &Registry{
		catalog: catalog,
		loader:  loader,
		models:  make(map[ModelID]Model),
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = logger.Get("registry")
	}
	return r
}

// Catalog returns the catalog the registry validates against.
func (r *Registry) Catalog() *Catalog { return r.catalog }

// Loader returns the engine.
func (r *Registry) Loader() Loader { return r.loader }

// Get returns the model for id, loading it on first use. Unknown ids fail
// with *InvalidModelError before any I/O. Concurrent first calls share one
// load. Load failures come back as *ModelLoadError and are not cached.
//
// The shared load is detached from ctx: a caller that gives up gets
// ctx.Err() inside a *ModelLoadError while the load runs on and is cached.
func (r *Registry) Get(ctx context.Context, id ModelID) (Model, error) {
	info, ok := r.catalog.Lookup(id)
	if !ok {
		return nil, &InvalidModelError{Model: id, Known: r.catalog.IDs()}
	}

	if m, ok := r.cached(id); ok {
		return m, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(string(id), func() (any, error) {
		return r.load(loadCtx, info)
	})

	select {
	case <-ctx.Done():
		return nil, &ModelLoadError{Model: id, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Model), nil
	}
}

func (r *Registry) cached(id ModelID) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	return m, ok
}

func (r *Registry) load(ctx context.Context, info ModelInfo) (Model, error) {
	// A load that finished between the cache check and DoChan.
	if m, ok := r.cached(info.ID); ok {
		return m, nil
	}

	if r.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.loadTimeout)
		defer cancel()
	}
	ctx, span := observability.StartSpan(ctx, "transcription.load_model",
		observability.AttrModel.String(string(info.ID)),
		observability.AttrEngine.String(r.loader.Name()),
	)

	fields := logger.Fields(logger.FieldModel, info.ID, logger.FieldEngine, r.loader.Name())
	r.log.WithContext(ctx).Info("loading model", fields)

	start := time.Now()
	m, err := r.loader.Load(ctx, info)
	if err == nil && m == nil {
		err = stderrors.New("engine returned a nil model")
	}
	elapsed := time.Since(start)
	r.metrics.RecordModelLoad(string(info.ID), elapsed.Seconds(), err)
	observability.EndSpan(span, err)

	if err != nil {
		r.log.WithContext(ctx).Error("model load failed", logger.MergeWithError(
			logger.Fields(logger.FieldModel, info.ID, logger.FieldDuration, elapsed.Milliseconds()), err))
		return nil, &ModelLoadError{Model: info.ID, Err: err}
	}

	r.mu.Lock()
	r.models[info.ID] = m
	n := len(r.models)
	r.mu.Unlock()
	r.metrics.SetModelsLoaded(n)

	r.log.WithContext(ctx).Info("model loaded", logger.Fields(
		logger.FieldModel, info.ID, logger.FieldDuration, elapsed.Milliseconds()))
	return m, nil
}

// Loaded returns the ids of cached models in catalog order.
func (r *Registry) Loaded() []ModelID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModelID, 0, len(r.models))
	for _, info := range r.catalog.Models() {
		if _, ok := r.models[info.ID]; ok {
			out = append(out, info.ID)
		}
	}
	return out
}

// Evict drops the cached handle for id, closing it if it is an io.Closer.
// The next Get loads it again.
func (r *Registry) Evict(id ModelID) error {
	r.mu.Lock()
	m, ok := r.models[id]
	delete(r.models, id)
	n := len(r.models)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	r.metrics.SetModelsLoaded(n)
	return closeModel(id, m)
}

// Reset drops every cached handle.
func (r *Registry) Reset() error {
	r.mu.Lock()
	models := r.models
	r.models = make(map[ModelID]Model)
	r.mu.Unlock()
	r.metrics.SetModelsLoaded(0)

	var errs []error
	for id, m := range models {
		if err := closeModel(id, m); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Preload loads ids, logging failures without returning them.
func (r *Registry) Preload(ctx context.Context, ids ...string) {
	for _, id := range ids {
		if _, err := r.Get(ctx, ModelID(id)); err != nil {
			r.log.Warn("model preload failed", logger.MergeWithError(logger.Fields(logger.FieldModel, id), err))
		}
	}
}

func closeModel(id ModelID, m Model) error {
	c, ok := m.(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("close model %q: %w", id, err)
	}
	return nil
}

// IsLoaded reports whether id is cached.
func (r *Registry) IsLoaded(id ModelID) bool {
	_, ok := r.cached(id)
	return ok
}

// loadedStrings is Loaded as plain strings for logs and JSON.
func (r *Registry) loadedStrings() []string {
	ids := r.Loaded()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return slices.Clip(out)
}
