package transcription

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/kbukum/whisperdesk/errors"
)

// ErrBusy is returned when no inference slot frees up in time.
var ErrBusy = stderrors.New("transcription capacity exhausted")

// ErrorCategory classifies inference failures.
type ErrorCategory string

const (
	CategoryNetwork      ErrorCategory = "network"
	CategoryGPUMemory    ErrorCategory = "gpu_memory"
	CategorySystemMemory ErrorCategory = "system_memory"
	CategoryTimeout      ErrorCategory = "timeout"
	CategoryUnclassified ErrorCategory = "unclassified"
)

// InvalidModelError reports a model id outside the catalog.
type InvalidModelError struct {
	Model ModelID
	Known []string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("unsupported model %q (known: %s)", e.Model, strings.Join(e.Known, ", "))
}

// InvalidLanguageError reports a language hint that is neither "auto" nor
// recognized.
type InvalidLanguageError struct {
	Language string
}

func (e *InvalidLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q", e.Language)
}

// ModelLoadError reports that a model could not be loaded.
type ModelLoadError struct {
	Model ModelID
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model %q: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// TranscriptionError is a classified inference failure. Message is safe to
// show to users.
type TranscriptionError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed (%s): %s", e.Category, e.Message)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// ToAppError maps the errors this package returns to AppErrors for the
// HTTP layer. Unknown errors pass through errors.Wrap.
func ToAppError(err error) *errors.AppError {
	var (
		invalidModel *InvalidModelError
		invalidLang  *InvalidLanguageError
		loadErr      *ModelLoadError
		txErr        *TranscriptionError
	)
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &invalidModel):
		return errors.InvalidModel(string(invalidModel.Model), invalidModel.Known).WithCause(err)
	case stderrors.As(err, &invalidLang):
		return errors.InvalidLanguage(invalidLang.Language).WithCause(err)
	case stderrors.As(err, &loadErr):
		return errors.ModelLoadFailed(string(loadErr.Model), err)
	case stderrors.As(err, &txErr):
		return errors.TranscriptionFailed(string(txErr.Category), txErr.Message, err)
	case stderrors.Is(err, ErrBusy):
		return errors.ServiceUnavailable("transcription service").WithCause(err)
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.ArtifactNotFound(err)
	default:
		return errors.Wrap(err)
	}
}
