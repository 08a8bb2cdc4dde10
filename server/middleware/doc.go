// Package middleware provides the net/http middleware the server wraps
// around every route: panic recovery, request ids, CORS, body size limits
// and request logging.
package middleware
