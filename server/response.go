package server

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperdesk/errors"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/util"
)

// RespondWithError writes err as the standard error body. AppErrors keep
// their status; anything else becomes a 500. Request bodies cut off by the
// size limit become 413. Server-side failures are logged with the request id.
func RespondWithError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	var appErr *errors.AppError
	if stderrors.As(err, &maxErr) {
		appErr = errors.PayloadTooLarge(util.FormatSize(maxErr.Limit))
	} else {
		appErr = errors.Wrap(err)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Get("http").WithContext(c.Request.Context()).Error("request failed", logger.Fields(
			"path", c.FullPath(),
			"code", string(appErr.Code),
			logger.FieldError, err.Error(),
		))
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends data as a 200 JSON response.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

