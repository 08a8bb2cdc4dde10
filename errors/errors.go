package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithDetail sets a single detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError with retryable derived from the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Wrap converts err into an AppError. AppErrors anywhere in the chain are
// returned as is; anything else becomes Internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// --- common constructors ---

func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{"field": field},
	}
}

func PayloadTooLarge(limit string) *AppError {
	return &AppError{
		Code: ErrCodePayloadTooLarge, Message: fmt.Sprintf("Upload exceeds the %s limit.", limit),
		HTTPStatus: http.StatusRequestEntityTooLarge,
		Details: map[string]any{"limit": limit},
	}
}

func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func InvalidToken() *AppError {
	return &AppError{
		Code: ErrCodeInvalidToken, Message: "Invalid or expired token.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// --- transcription constructors ---

// InvalidModel reports a model identifier outside the known catalog.
func InvalidModel(model string, known []string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidModel, Message: fmt.Sprintf("Unknown model %q.", model),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{"model": model, "supported": known},
	}
}

// InvalidLanguage reports a language hint that is neither "auto" nor supported.
func InvalidLanguage(language string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidLanguage, Message: fmt.Sprintf("Unsupported language %q.", language),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{"language": language},
	}
}

// ModelLoadFailed reports that a model could not be instantiated.
func ModelLoadFailed(model string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeModelLoadFailed, Message: fmt.Sprintf("Model %q could not be loaded. Please try again.", model),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"model": model}, Cause: cause,
	}
}

// ArtifactNotFound reports that the uploaded audio was missing at inference time.
func ArtifactNotFound(cause error) *AppError {
	return &AppError{
		Code: ErrCodeArtifactNotFound, Message: "The uploaded audio could not be found. Please upload it again.",
		HTTPStatus: http.StatusBadRequest, Cause: cause,
	}
}

// TranscriptionFailed carries the translated, user-facing message of a failed
// inference together with its category.
func TranscriptionFailed(category, message string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: message,
		HTTPStatus: http.StatusInternalServerError,
		Details: map[string]any{"category": category}, Cause: cause,
	}
}
