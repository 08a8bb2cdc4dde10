// Package annotation stores user-edited transcripts as JSON documents in
// object storage under annotations/<id>.json.
package annotation

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/whisperdesk/errors"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
	"github.com/kbukum/whisperdesk/storage"
)

// Prefix is the storage directory of annotation documents.
const Prefix = "annotations"

// SegmentsKey must be present in every saved document.
const SegmentsKey = "segments"

// Summary describes a stored annotation.
type Summary struct {
	ID      string    `json:"id"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"saved_at"`
}

// Store saves and reads annotation documents.
type Store struct {
	backend func() storage.Storage
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewStore creates a store over the storage returned by backend. The
// backend is resolved per call so a storage component may start later.
func NewStore(backend func() storage.Storage, m *metrics.Metrics, log *logger.Logger) *Store {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Store{backend: backend, metrics: m, log: log.WithComponent("annotations")}
}

func (s *Store) storage() (storage.Storage, error) {
	st := s.backend()
	if st == nil {
		return nil, errors.ServiceUnavailable("annotation storage")
	}
	return st, nil
}

func objectPath(id string) string { return path.Join(Prefix, id+".json") }

// Save validates doc, assigns it a new id and writes it as indented JSON.
// A document without a segments key is rejected with INVALID_INPUT.
func (s *Store) Save(ctx context.Context, doc map[string]any) (string, error) {
	if _, ok := doc[SegmentsKey]; !ok {
		return "", errors.Validation("Annotation must contain segments.").WithDetail("field", SegmentsKey)
	}
	st, err := s.storage()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Validation("Annotation is not valid JSON.").WithCause(err)
	}

	id := uuid.NewString()
	if err := st.Upload(ctx, objectPath(id), bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("save annotation %s: %w", id, err)
	}
	s.metrics.RecordAnnotationSaved()
	s.log.WithContext(ctx).Info("annotation saved", logger.Fields(
		logger.FieldAnnotation, id, "bytes", len(data)))
	return id, nil
}

// Get reads the annotation stored under id.
func (s *Store) Get(ctx context.Context, id string) (map[string]any, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("annotation", id)
	}
	st, err := s.storage()
	if err != nil {
		return nil, err
	}

	rc, err := st.Download(ctx, objectPath(id))
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NotFound("annotation", id).WithCause(err)
		}
		return nil, fmt.Errorf("read annotation %s: %w", id, err)
	}
	defer func() { _ = rc.Close() }()

	var doc map[string]any
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode annotation %s: %w", id, err)
	}
	return doc, nil
}

// List returns every stored annotation, ordered by id.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	st, err := s.storage()
	if err != nil {
		return nil, err
	}
	files, err := st.List(ctx, Prefix+"/")
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	out := make([]Summary, 0, len(files))
	for _, f := range files {
		name := path.Base(f.Path)
		id, ok := strings.CutSuffix(name, ".json")
		if !ok {
			continue
		}
		out = append(out, Summary{ID: id, Size: f.Size, SavedAt: f.LastModified})
	}
	return out, nil
}
