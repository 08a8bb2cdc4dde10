// Package errors provides the application error type used across whisperdesk.
//
// An AppError carries a machine-readable code, a user-facing message, the HTTP
// status the API layer responds with, and an optional cause. The JSON body
// produced by ToResponse is the error shape of every HTTP route.
package errors
