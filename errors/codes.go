package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeModelLoadFailed    ErrorCode = "MODEL_LOAD_FAILED"
)

// Resource errors
const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeArtifactNotFound ErrorCode = "ARTIFACT_NOT_FOUND"
)

// Validation errors
const (
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField    ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidModel    ErrorCode = "INVALID_MODEL"
	ErrCodeInvalidLanguage ErrorCode = "INVALID_LANGUAGE"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Authentication errors
const (
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Internal errors
const (
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeExternalService     ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeModelLoadFailed:    true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode reports whether the code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
