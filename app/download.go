package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/transcription"
)

// DownloadResult is the outcome of prefetching one model.
type DownloadResult struct {
	Model transcription.ModelID
	Path  string
	Err   error
}

// ParseModelList splits a comma separated list of model ids. An empty list
// selects every catalog model.
func ParseModelList(catalog *transcription.Catalog, list string) ([]transcription.ModelID, error) {
	if strings.TrimSpace(list) == "" {
		ids := make([]transcription.ModelID, 0)
		for _, m := range catalog.Models() {
			ids = append(ids, m.ID)
		}
		return ids, nil
	}
	var ids []transcription.ModelID
	for _, part := range strings.Split(list, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if !catalog.IsKnown(id) {
			return nil, fmt.Errorf("unknown model %q (known: %s)", id, strings.Join(catalog.IDs(), ", "))
		}
		ids = append(ids, transcription.ModelID(id))
	}
	return ids, nil
}

// Download fetches the weights of ids into the cache, one after another,
// and reports every outcome. It keeps going after a failure.
func (a *App) Download(ctx context.Context, ids []transcription.ModelID) []DownloadResult {
	results := make([]DownloadResult, 0, len(ids))
	for _, id := range ids {
		info, ok := a.Catalog.Lookup(id)
		if !ok {
			results = append(results, DownloadResult{Model: id, Err: fmt.Errorf("unknown model %q", id)})
			continue
		}
		if a.Weights.IsDownloaded(info) {
			a.Logger.Info("model already downloaded", logger.Fields(logger.FieldModel, string(id)))
		}
		path, err := a.Weights.Ensure(ctx, info)
		if err != nil {
			a.Logger.Error("model download failed", logger.MergeWithError(logger.Fields(logger.FieldModel, string(id)), err))
		} else {
			a.Logger.Info("model ready", logger.Fields(logger.FieldModel, string(id), "path", path))
		}
		results = append(results, DownloadResult{Model: id, Path: path, Err: err})
	}
	return results
}
