package middleware

import (
	"net/http"

	"github.com/kbukum/whisperdesk/errors"
	"github.com/kbukum/whisperdesk/util"
)

const defaultMaxBodySize = 16 * 1024 * 1024

// BodySizeLimit caps the request body at maxSize ("16MB", "512KB"). Reads
// past the limit fail with *http.MaxBytesError.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				writeJSON(w, http.StatusRequestEntityTooLarge, errors.PayloadTooLarge(maxSize).ToResponse())
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
