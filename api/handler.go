// Package api holds the gin handlers of the whisperdesk HTTP API.
package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperdesk/annotation"
	"github.com/kbukum/whisperdesk/events"
	"github.com/kbukum/whisperdesk/labeling"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/session"
	"github.com/kbukum/whisperdesk/transcription"
	"github.com/kbukum/whisperdesk/validation"
)

// EventSource is the source field of published events.
const EventSource = "whisperdesk"

// UI locales, in display order.
var uiLanguages = []string{"en", "zh"}

var uiLanguageNames = map[string]string{
	"en": "English",
	"zh": "中文",
}

const defaultLocale = "en"

// Transcriber runs the transcription pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error)
}

// AnnotationStore persists annotation documents.
type AnnotationStore interface {
	Save(ctx context.Context, doc map[string]any) (string, error)
	Get(ctx context.Context, id string) (map[string]any, error)
	List(ctx context.Context) ([]annotation.Summary, error)
}

// LabelingClient talks to the labeling platform.
type LabelingClient interface {
	Mock() bool
	ValidateToken(ctx context.Context, token string) bool
	Submit(ctx context.Context, token string, s labeling.Submission) (map[string]any, error)
	FormatSubmission(taskID, audioData, transcription, language, model string) labeling.Submission
}

// WeightsLister reports which models have weights on disk.
type WeightsLister interface {
	Downloaded(catalog *transcription.Catalog) []transcription.ModelInfo
}

// Deps are the collaborators of the handlers. Weights and Events may be nil.
type Deps struct {
	Catalog      *transcription.Catalog
	Pipeline     Transcriber
	Weights      WeightsLister
	Annotations  AnnotationStore
	Labeling     LabelingClient
	Sessions     *session.Manager
	Events       events.Publisher
	UploadDir    string
	DefaultModel string
	Log          *logger.Logger
}

// Handler serves the API routes.
type Handler struct {
	deps Deps
	log  *logger.Logger
}

var registerRules sync.Once

// New checks deps and registers the request validation rules.
func New(deps Deps) (*Handler, error) {
	switch {
	case deps.Catalog == nil:
		return nil, fmt.Errorf("api: catalog is required")
	case deps.Pipeline == nil:
		return nil, fmt.Errorf("api: pipeline is required")
	case deps.Annotations == nil:
		return nil, fmt.Errorf("api: annotation store is required")
	case deps.Labeling == nil:
		return nil, fmt.Errorf("api: labeling client is required")
	case deps.Sessions == nil:
		return nil, fmt.Errorf("api: session manager is required")
	case deps.UploadDir == "":
		return nil, fmt.Errorf("api: upload dir is required")
	}
	if deps.DefaultModel == "" {
		deps.DefaultModel = "base"
	}
	if deps.Log == nil {
		deps.Log = logger.GetGlobalLogger()
	}

	catalog := deps.Catalog
	var err error
	registerRules.Do(func() {
		if err = validation.RegisterRule("whisper_model", catalog.IsKnown); err != nil {
			return
		}
		err = validation.RegisterRule("whisper_language", transcription.IsValidLanguageHint)
	})
	if err != nil {
		return nil, fmt.Errorf("api: register validation rules: %w", err)
	}

	return &Handler{deps: deps, log: deps.Log.WithComponent("api")}, nil
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.index)
	r.GET("/set_language/:lang", h.setLanguage)
	r.GET("/languages", h.languages)
	r.GET("/models", h.models)

	r.POST("/transcribe", h.transcribe)

	r.POST("/save-annotation", h.saveAnnotation)
	r.GET("/annotations", h.listAnnotations)
	r.GET("/annotations/:id", h.getAnnotation)

	r.GET("/asr/task", h.asrTask)
	r.POST("/api/submit_annotation", h.submitAnnotation)
}

func (h *Handler) publish(ctx context.Context, topic, subject string, data any) {
	if h.deps.Events == nil {
		return
	}
	events.PublishAsync(ctx, h.deps.Events, topic, events.NewEvent(topic, EventSource, subject, data))
}
