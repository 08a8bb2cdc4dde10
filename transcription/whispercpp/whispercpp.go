// Package whispercpp is the transcription engine that drives the whisper.cpp
// command line tool. Input audio is converted with ffmpeg first, and the
// engine reads the tool's full JSON output file.
package whispercpp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/media"
	"github.com/kbukum/whisperdesk/process"
	"github.com/kbukum/whisperdesk/transcription"
)

// EngineName is the name the engine registers under.
const EngineName = "whispercpp"

func init() {
	transcription.Engines.RegisterFactory(EngineName, Factory)
}

// Factory builds the engine from the shared engine dependencies.
func Factory(deps transcription.EngineDeps) (transcription.Loader, error) {
	if deps.Weights == nil {
		return nil, fmt.Errorf("%s: a weights source is required", EngineName)
	}
	return NewLoader(deps.Config.WhisperCpp, deps.Weights, deps.Log), nil
}

// Loader resolves weights and hands out CLI-backed models.
type Loader struct {
	cfg       transcription.WhisperCppConfig
	weights   transcription.WeightsSource
	converter *media.Converter
	log       *logger.Logger
}

// NewLoader creates the engine.
func NewLoader(cfg transcription.WhisperCppConfig, weights transcription.WeightsSource, log *logger.Logger) *Loader {
	if cfg.Binary == "" {
		cfg.Binary = "whisper-cli"
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Loader{
		cfg:       cfg,
		weights:   weights,
		converter: media.NewConverter(cfg.FFmpeg),
		log:       log.WithComponent(EngineName),
	}
}

func (l *Loader) Name() string { return EngineName }

// IsAvailable reports whether both whisper-cli and ffmpeg resolve.
func (l *Loader) IsAvailable(context.Context) bool {
	_, err := process.LookPath(l.cfg.Binary)
	return err == nil && l.converter.Available()
}

// Load checks the binary and makes sure the weights are on disk. The
// returned model holds no process state; each call runs the CLI afresh.
func (l *Loader) Load(ctx context.Context, info transcription.ModelInfo) (transcription.Model, error) {
	bin, err := process.LookPath(l.cfg.Binary)
	if err != nil {
		return nil, err
	}
	path, err := l.weights.Ensure(ctx, info)
	if err != nil {
		return nil, err
	}
	return &model{id: info.ID, binary: bin, weights: path, loader: l}, nil
}

type model struct {
	id      transcription.ModelID
	binary  string
	weights string
	loader  *Loader
}

func (m *model) Transcribe(ctx context.Context, audioPath string, opts transcription.Options) (*transcription.RawOutput, error) {
	cfg := m.loader.cfg
	work, err := os.MkdirTemp(cfg.WorkDir, "whisperdesk-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(work) }()

	wav, err := m.loader.converter.ToWAV(ctx, audioPath, work)
	if err != nil {
		return nil, err
	}

	prefix := filepath.Join(work, "out")
	res, err := process.Run(ctx, process.Command{
		Binary: m.binary,
		Args:   buildArgs(m.weights, wav, prefix, opts.Language, cfg.Threads),
	})
	if err != nil {
		return nil, fmt.Errorf("whisper-cli: %w", err)
	}
	m.loader.log.WithContext(ctx).Debug("whisper-cli finished", logger.Fields(
		logger.FieldModel, m.id, logger.FieldDuration, res.Duration.Milliseconds()))

	data, err := os.ReadFile(prefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper-cli output: %w", err)
	}
	return parseOutput(data, opts.WordTimestamps)
}

func buildArgs(weights, wav, prefix, lang string, threads int) []string {
	if lang == "" {
		lang = transcription.AutoLanguage
	}
	args := []string{
		"-m", weights,
		"-f", wav,
		"-l", lang,
		"-ojf",
		"-of", prefix,
		"-np",
	}
	if threads > 0 {
		args = append(args, "-t", strconv.Itoa(threads))
	}
	return args
}
