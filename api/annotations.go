package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperdesk/annotation"
	"github.com/kbukum/whisperdesk/errors"
	"github.com/kbukum/whisperdesk/events"
	"github.com/kbukum/whisperdesk/server"
	"github.com/kbukum/whisperdesk/validation"
)

func (h *Handler) saveAnnotation(c *gin.Context) {
	var doc map[string]any
	if err := c.ShouldBindJSON(&doc); err != nil {
		server.RespondWithError(c, bindError(err))
		return
	}
	if verr := validation.New().HasKey(doc, annotation.SegmentsKey).Validate(); verr != nil {
		server.RespondWithError(c, verr)
		return
	}

	id, err := h.deps.Annotations.Save(c.Request.Context(), doc)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	segments, _ := doc[annotation.SegmentsKey].([]any)
	h.publish(c.Request.Context(), events.TopicAnnotationSaved, id, events.AnnotationSaved{
		Key:      annotation.Prefix + "/" + id + ".json",
		Segments: len(segments),
	})
	server.RespondOK(c, gin.H{"success": true, "annotation_id": id})
}

func (h *Handler) getAnnotation(c *gin.Context) {
	id := c.Param("id")
	if verr := validation.New().RequiredUUID("id", id).Validate(); verr != nil {
		server.RespondWithError(c, verr)
		return
	}
	doc, err := h.deps.Annotations.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, doc)
}

func (h *Handler) listAnnotations(c *gin.Context) {
	list, err := h.deps.Annotations.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"annotations": list})
}

// bindError turns a body decode failure into a 400, leaving size-limit
// failures for RespondWithError to report as 413.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return err
	}
	return errors.Validation("Invalid data format.").WithCause(err)
}
