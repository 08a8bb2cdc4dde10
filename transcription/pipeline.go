package transcription

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
	"github.com/kbukum/whisperdesk/observability"
	"github.com/kbukum/whisperdesk/resilience"
)

// Request is one transcription call. The pipeline owns AudioPath: the file
// is removed before Transcribe returns.
type Request struct {
	AudioPath string
	// Language is an ISO code, an English language name or "auto".
	Language string
	Model    ModelID
}

// ModelSource resolves model ids to handles. *Registry implements it.
type ModelSource interface {
	Get(ctx context.Context, id ModelID) (Model, error)
}

// Pipeline runs the transcription request lifecycle.
type Pipeline struct {
	models   ModelSource
	cfg      Config
	bulkhead *resilience.Bulkhead
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewPipeline creates a pipeline. cfg supplies the timeout, concurrency
// and word timestamp settings.
func NewPipeline(models ModelSource, cfg Config, m *metrics.Metrics, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Pipeline{
		models: models,
		cfg:    cfg,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "inference",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.QueueWait,
		}),
		metrics: m,
		log:     log.WithComponent("pipeline"),
	}
}

// Transcribe validates req, resolves the model, runs inference and returns
// the normalized result. The artifact is deleted on every path.
//
// Errors: a missing artifact satisfies errors.Is(err, fs.ErrNotExist);
// *InvalidLanguageError, *InvalidModelError and *ModelLoadError pass through;
// inference and normalization failures are *TranscriptionError; ErrBusy
// when no inference slot frees up within the queue wait.
func (p *Pipeline) Transcribe(ctx context.Context, req Request) (res *Result, err error) {
	ctx, span := observability.StartSpan(ctx, "transcription.transcribe",
		observability.AttrModel.String(string(req.Model)),
		observability.AttrLanguage.String(req.Language),
	)
	defer func() { observability.EndSpan(span, err) }()
	defer p.removeArtifact(ctx, req.AudioPath)

	log := p.log.WithContext(ctx)
	start := time.Now()
	defer func() {
		category := ""
		var txErr *TranscriptionError
		if stderrors.As(err, &txErr) {
			category = string(txErr.Category)
			span.SetAttributes(observability.AttrCategory.String(category))
		}
		segments := 0
		if res != nil {
			segments = len(res.Segments)
		}
		p.metrics.RecordTranscription(string(req.Model), category, segments, time.Since(start).Seconds(), err)
	}()

	info, err := os.Stat(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("audio artifact: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("audio artifact %s: %w", req.AudioPath, fs.ErrNotExist)
	}
	p.metrics.RecordArtifact(info.Size())

	lang, err := ResolveLanguage(req.Language)
	if err != nil {
		return nil, err
	}

	model, err := p.models.Get(ctx, req.Model)
	if err != nil {
		return nil, err
	}
	if r, ok := model.(MemoryReleaser); ok {
		defer r.ReleaseMemory()
	}

	raw, err := p.infer(ctx, model, req.AudioPath, lang)
	if err != nil {
		if stderrors.Is(err, ErrBusy) {
			return nil, err
		}
		txErr := NewTranscriptionError(err)
		log.Error("inference failed", logger.MergeWithError(logger.Fields(
			logger.FieldModel, req.Model,
			logger.FieldCategory, txErr.Category,
		), err))
		return nil, txErr
	}

	res, err = Normalize(raw)
	if err != nil {
		return nil, NewTranscriptionError(err)
	}

	log.Info("transcription completed", logger.Fields(
		logger.FieldModel, req.Model,
		logger.FieldLanguage, res.DetectedLanguage,
		"segments", len(res.Segments),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	span.SetAttributes(observability.AttrSegments.Int(len(res.Segments)))
	return res, nil
}

func (p *Pipeline) infer(ctx context.Context, model Model, path, lang string) (*RawOutput, error) {
	var raw *RawOutput
	err := p.bulkhead.Execute(ctx, func() error {
		done := p.metrics.InferenceStarted()
		defer done()

		ictx := ctx
		if p.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ictx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
			defer cancel()
		}
		var err error
		raw, err = model.Transcribe(ictx, path, Options{
			Task:           "transcribe",
			Language:       lang,
			WordTimestamps: p.cfg.WordTimestamps,
		})
		return err
	})
	if stderrors.Is(err, resilience.ErrBulkheadFull) || stderrors.Is(err, resilience.ErrBulkheadTimeout) {
		return nil, fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return raw, err
}

// removeArtifact deletes path once; a file that is already gone is fine.
func (p *Pipeline) removeArtifact(ctx context.Context, path string) {
	err := os.Remove(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	p.metrics.RecordArtifactCleanup(err)
	if err != nil {
		p.log.WithContext(ctx).Warn("artifact cleanup failed", logger.MergeWithError(
			logger.Fields(logger.FieldArtifact, path), err))
	}
}
