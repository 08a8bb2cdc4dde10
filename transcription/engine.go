package transcription

import (
	"context"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/provider"
)

// Options are the per-call inference parameters.
type Options struct {
	// Task is always "transcribe".
	Task string
	// Language is the resolved hint; empty asks the model to detect it.
	Language       string
	WordTimestamps bool
}

// RawWord is a word timing as reported by an engine.
type RawWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// RawSegment is a segment as reported by an engine, before normalization.
type RawSegment struct {
	ID    int       `json:"id"`
	Text  string    `json:"text"`
	Start float64   `json:"start"`
	End   float64   `json:"end"`
	Words []RawWord `json:"words,omitempty"`
}

// RawOutput is an engine's inference result.
type RawOutput struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []RawSegment `json:"segments"`
}

// Model is a loaded model handle.
type Model interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (*RawOutput, error)
}

// MemoryReleaser is implemented by models that hold accelerator memory
// which can be returned after each inference.
type MemoryReleaser interface {
	ReleaseMemory()
}

// Loader turns a catalog entry into a Model. Implementations are the
// engines.
type Loader interface {
	provider.Provider
	Load(ctx context.Context, info ModelInfo) (Model, error)
}

// WeightsSource resolves a model's weights to a local file, downloading
// it when needed.
type WeightsSource interface {
	Ensure(ctx context.Context, info ModelInfo) (string, error)
}

// EngineDeps is what an engine factory receives.
type EngineDeps struct {
	Config  Config
	Weights WeightsSource
	Log     *logger.Logger
}

// Engines holds the engine factories, registered by the engine packages.
var Engines = provider.NewRegistry[Loader, EngineDeps]()
