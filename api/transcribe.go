package api

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/whisperdesk/errors"
	"github.com/kbukum/whisperdesk/events"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/server"
	"github.com/kbukum/whisperdesk/transcription"
)

// transcribe saves the uploaded audio under a fresh id and runs the
// pipeline on it. The pipeline removes the file.
func (h *Handler) transcribe(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			server.RespondWithError(c, err)
			return
		}
		server.RespondWithError(c, errors.MissingField("audio"))
		return
	}

	language := c.DefaultPostForm("language", transcription.AutoLanguage)
	model := c.DefaultPostForm("model", h.deps.DefaultModel)

	if err := os.MkdirAll(h.deps.UploadDir, 0o750); err != nil {
		server.RespondWithError(c, fmt.Errorf("create upload dir: %w", err))
		return
	}
	artifactID := uuid.NewString()
	path := filepath.Join(h.deps.UploadDir, artifactID+".wav")
	if err := c.SaveUploadedFile(file, path); err != nil {
		_ = os.Remove(path)
		server.RespondWithError(c, fmt.Errorf("save upload: %w", err))
		return
	}

	ctx := c.Request.Context()
	h.log.WithContext(ctx).Info("transcription requested", logger.Fields(
		logger.FieldArtifact, artifactID,
		logger.FieldModel, model,
		logger.FieldLanguage, language,
		"bytes", file.Size,
	))

	start := time.Now()
	res, err := h.deps.Pipeline.Transcribe(ctx, transcription.Request{
		AudioPath: path,
		Language:  language,
		Model:     transcription.ModelID(model),
	})
	if err != nil {
		server.RespondWithError(c, transcription.ToAppError(err))
		return
	}

	h.publish(ctx, events.TopicTranscriptionCompleted, artifactID, events.TranscriptionCompleted{
		Model:            model,
		Language:         language,
		DetectedLanguage: res.DetectedLanguage,
		Segments:         len(res.Segments),
		DurationSeconds:  time.Since(start).Seconds(),
	})
	server.RespondOK(c, res)
}
