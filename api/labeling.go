package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperdesk/errors"
	"github.com/kbukum/whisperdesk/events"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/server"
	"github.com/kbukum/whisperdesk/util"
	"github.com/kbukum/whisperdesk/validation"
)

// asrTask accepts the hand-over from the labeling platform: the token and
// task id are validated and kept in the session.
func (h *Handler) asrTask(c *gin.Context) {
	token := c.Query("token")
	taskID := c.Query("task_id")
	if verr := validation.New().Required("token", token).Required("task_id", taskID).Validate(); verr != nil {
		server.RespondWithError(c, verr)
		return
	}

	ctx := c.Request.Context()
	if !h.deps.Labeling.ValidateToken(ctx, token) {
		h.log.WithContext(ctx).Warn("labeling token rejected", logger.Fields(
			logger.FieldTaskID, taskID, "token", util.MaskSecret(token, 5)))
		server.RespondWithError(c, errors.InvalidToken())
		return
	}

	sess := h.deps.Sessions.Load(c)
	sess.LabelingToken = token
	sess.LabelingTaskID = taskID
	if err := h.deps.Sessions.Save(c, sess); err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

type submitRequest struct {
	AudioData     string `json:"audio_data" validate:"required"`
	Transcription string `json:"transcription" validate:"required"`
	Language      string `json:"language" validate:"omitempty,whisper_language"`
	Model         string `json:"model" validate:"omitempty,whisper_model"`
}

// submitAnnotation forwards a finished transcript to the labeling platform
// for the task held in the session.
func (h *Handler) submitAnnotation(c *gin.Context) {
	sess := h.deps.Sessions.Load(c)
	if !sess.HasLabeling() {
		server.RespondWithError(c, errors.Unauthorized("No active labeling session."))
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, bindError(err))
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	sub := h.deps.Labeling.FormatSubmission(sess.LabelingTaskID, req.AudioData, req.Transcription, req.Language, req.Model)
	res, err := h.deps.Labeling.Submit(ctx, sess.LabelingToken, sub)
	if err != nil {
		server.RespondWithError(c, errors.ExternalServiceError("labeling", err))
		return
	}

	annotationID, _ := res["annotation_id"].(string)
	h.log.WithContext(ctx).Info("annotation submitted", logger.Fields(
		logger.FieldTaskID, sess.LabelingTaskID, logger.FieldAnnotation, annotationID))
	h.publish(ctx, events.TopicAnnotationSubmitted, sess.LabelingTaskID, events.AnnotationSubmitted{
		TaskID:       sess.LabelingTaskID,
		Model:        req.Model,
		Language:     req.Language,
		AnnotationID: annotationID,
		Mock:         h.deps.Labeling.Mock(),
	})
	server.RespondOK(c, res)
}
