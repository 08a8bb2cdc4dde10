package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperdesk/server"
	"github.com/kbukum/whisperdesk/transcription"
	"github.com/kbukum/whisperdesk/util"
	"github.com/kbukum/whisperdesk/validation"
)

type modelView struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

func (h *Handler) modelViews() map[string]modelView {
	out := make(map[string]modelView)
	for _, m := range h.deps.Catalog.Models() {
		out[string(m.ID)] = modelView{Name: m.Name, Size: m.Size}
	}
	return out
}

func (h *Handler) downloadedModels() []string {
	ids := []string{}
	if h.deps.Weights == nil {
		return ids
	}
	for _, m := range h.deps.Weights.Downloaded(h.deps.Catalog) {
		ids = append(ids, string(m.ID))
	}
	return ids
}

// index returns the data the upload page renders.
func (h *Handler) index(c *gin.Context) {
	sess := h.deps.Sessions.Load(c)
	locale := util.Coalesce(sess.Lang, defaultLocale)
	server.RespondOK(c, gin.H{
		"locale":                  locale,
		"languages":               uiLanguageNames,
		"models":                  h.modelViews(),
		"model_order":             h.deps.Catalog.IDs(),
		"default_model":           h.deps.DefaultModel,
		"downloaded_models":       h.downloadedModels(),
		"transcription_languages": transcription.Languages(),
		"labeling": gin.H{
			"active":  sess.HasLabeling(),
			"task_id": sess.LabelingTaskID,
			"mock":    h.deps.Labeling.Mock(),
		},
	})
}

// setLanguage stores the UI locale and sends the browser back.
func (h *Handler) setLanguage(c *gin.Context) {
	lang := c.Param("lang")
	if verr := validation.New().OneOf("lang", lang, uiLanguages).Validate(); verr != nil {
		server.RespondWithError(c, verr)
		return
	}
	sess := h.deps.Sessions.Load(c)
	sess.Lang = lang
	if err := h.deps.Sessions.Save(c, sess); err != nil {
		server.RespondWithError(c, err)
		return
	}

	c.Redirect(http.StatusFound, util.Coalesce(c.GetHeader("Referer"), "/"))
}

func (h *Handler) languages(c *gin.Context) {
	server.RespondOK(c, uiLanguages)
}

func (h *Handler) models(c *gin.Context) {
	server.RespondOK(c, h.modelViews())
}
