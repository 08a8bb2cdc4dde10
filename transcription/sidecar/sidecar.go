// Package sidecar is the transcription engine backed by a faster-whisper
// HTTP sidecar. The sidecar owns the models; this engine uploads audio and
// decodes the verbose JSON it returns.
package sidecar

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kbukum/whisperdesk/httpclient"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/transcription"
)

// EngineName is the name the engine registers under.
const EngineName = "sidecar"

func init() {
	transcription.Engines.RegisterFactory(EngineName, Factory)
}

// Factory builds the engine from the shared engine dependencies.
func Factory(deps transcription.EngineDeps) (transcription.Loader, error) {
	return NewLoader(deps.Config.Sidecar, deps.Log)
}

// Loader checks the sidecar and hands out per-model handles.
type Loader struct {
	cfg    transcription.SidecarConfig
	client *httpclient.Client
	log    *logger.Logger
}

// NewLoader creates the engine for the sidecar at cfg.URL.
func NewLoader(cfg transcription.SidecarConfig, log *logger.Logger) (*Loader, error) {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8387"
	}
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EngineName, err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Loader{cfg: cfg, client: client, log: log.WithComponent(EngineName)}, nil
}

func (l *Loader) Name() string { return EngineName }

// IsAvailable checks if the sidecar is reachable.
func (l *Loader) IsAvailable(ctx context.Context) bool {
	resp, err := l.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.StatusCode == http.StatusOK
}

// Load verifies the sidecar answers its health check. The sidecar loads
// the model itself on first use.
func (l *Loader) Load(ctx context.Context, info transcription.ModelInfo) (transcription.Model, error) {
	resp, err := l.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	if err != nil {
		return nil, fmt.Errorf("sidecar health check: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sidecar health check: HTTP %d", resp.StatusCode)
	}
	return &model{id: info.ID, loader: l}, nil
}

type model struct {
	id     transcription.ModelID
	loader *Loader
}

// Transcribe sends the audio file to the sidecar and returns its output.
func (m *model) Transcribe(ctx context.Context, audioPath string, opts transcription.Options) (*transcription.RawOutput, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := m.loader.cfg
	fields := map[string]string{
		"model":           string(m.id),
		"task":            opts.Task,
		"word_timestamps": strconv.FormatBool(opts.WordTimestamps),
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if cfg.Device != "" {
		fields["device"] = cfg.Device
	}
	if cfg.ComputeType != "" {
		fields["compute_type"] = cfg.ComputeType
	}

	resp, err := m.loader.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName: "audio",
				FileName:  filepath.Base(audioPath),
				Reader:    f,
			}},
		},
	})
	if err != nil {
		if resp != nil && len(resp.Body) > 0 {
			return nil, fmt.Errorf("whisper sidecar: %w: %s", err, resp.Body)
		}
		return nil, fmt.Errorf("whisper sidecar: %w", err)
	}

	var out transcription.RawOutput
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
