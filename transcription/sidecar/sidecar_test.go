package sidecar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/whisperdesk/transcription"
)

const sidecarResponse = `{
  "text": " Hola mundo.",
  "language": "es",
  "segments": [
    {"id": 0, "start": 0.0, "end": 1.4, "text": " Hola mundo.",
     "words": [{"word": " Hola", "start": 0.0, "end": 0.5, "probability": 0.97},
               {"word": " mundo.", "start": 0.5, "end": 1.4, "probability": 0.93}]}
  ]
}`

func newSidecar(t *testing.T, transcribe http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /transcribe", transcribe)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func loadModel(t *testing.T, url string, cfg transcription.SidecarConfig) transcription.Model {
	t.Helper()
	cfg.URL = url
	l, err := NewLoader(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsAvailable(context.Background()) {
		t.Fatal("sidecar should be available")
	}
	m, err := l.Load(context.Background(), transcription.ModelInfo{ID: "small"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func audioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF-audio"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribe(t *testing.T) {
	srv := newSidecar(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		for field, want := range map[string]string{
			"model": "small", "task": "transcribe", "language": "es",
			"word_timestamps": "true", "device": "cuda",
		} {
			if got := r.FormValue(field); got != want {
				t.Errorf("%s = %q, want %q", field, got, want)
			}
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("audio part: %v", err)
			return
		}
		data, _ := io.ReadAll(file)
		if header.Filename != "clip.wav" || string(data) != "RIFF-audio" {
			t.Errorf("audio part = %s %q", header.Filename, data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sidecarResponse))
	})

	m := loadModel(t, srv.URL, transcription.SidecarConfig{Device: "cuda"})
	out, err := m.Transcribe(context.Background(), audioFile(t), transcription.Options{
		Task: "transcribe", Language: "es", WordTimestamps: true,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if out.Language != "es" || len(out.Segments) != 1 || len(out.Segments[0].Words) != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if w := out.Segments[0].Words[1]; w.Word != " mundo." || w.Probability != 0.93 {
		t.Errorf("word = %+v", w)
	}
}

func TestTranscribeOmitsAutoLanguage(t *testing.T) {
	srv := newSidecar(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("language must be omitted for detection")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "", "language": "en", "segments": []any{}})
	})
	m := loadModel(t, srv.URL, transcription.SidecarConfig{})
	if _, err := m.Transcribe(context.Background(), audioFile(t), transcription.Options{Task: "transcribe"}); err != nil {
		t.Fatal(err)
	}
}

func TestTranscribeErrorCarriesBody(t *testing.T) {
	srv := newSidecar(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "RuntimeError: CUDA out of memory", http.StatusInternalServerError)
	})
	m := loadModel(t, srv.URL, transcription.SidecarConfig{})
	_, err := m.Transcribe(context.Background(), audioFile(t), transcription.Options{Task: "transcribe"})
	if err == nil || !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("error should carry the sidecar body, got %v", err)
	}
	if category, _ := transcription.Classify(err); category != transcription.CategoryGPUMemory {
		t.Errorf("category = %s", category)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	srv := newSidecar(t, func(http.ResponseWriter, *http.Request) {})
	m := loadModel(t, srv.URL, transcription.SidecarConfig{})
	_, err := m.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), transcription.Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist, got %v", err)
	}
}

func TestLoadUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	l, err := NewLoader(transcription.SidecarConfig{URL: url, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.IsAvailable(context.Background()) {
		t.Error("closed server reported available")
	}
	_, err = l.Load(context.Background(), transcription.ModelInfo{ID: "base"})
	if err == nil {
		t.Fatal("expected a load error")
	}
	if category, _ := transcription.Classify(err); category != transcription.CategoryNetwork {
		t.Errorf("unreachable sidecar should classify as network, got %s", category)
	}
}

func TestRegistered(t *testing.T) {
	if !transcription.Engines.Has(EngineName) {
		t.Fatal("engine not registered")
	}
}
