package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound || err.Message != "not found" || err.HTTPStatus != http.StatusNotFound {
		t.Errorf("unexpected error: %+v", err)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
	if !New(ErrCodeTimeout, "t", http.StatusGatewayTimeout).Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotFound(t *testing.T) {
	err := NotFound("annotation", "123")
	if err.Details["resource"] != "annotation" || err.Details["id"] != "123" {
		t.Errorf("details = %v", err.Details)
	}
	if _, ok := NotFound("annotation", "").Details["id"]; ok {
		t.Error("expected no id key when id is empty")
	}
}

func TestAppError_WithCause(t *testing.T) {
	root := stderrors.New("disk full")
	err := Internal(nil).WithCause(root)
	if !stderrors.Is(err, root) {
		t.Error("cause should be reachable through errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := Validation("bad").WithDetail("a", 1).WithDetails(map[string]any{"b": 2})
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("details = %v", err.Details)
	}
}

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("engine"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("transcribe"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"MissingField", MissingField("segments"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"PayloadTooLarge", PayloadTooLarge("16MB"), ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge, false},
		{"Unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized, false},
		{"InvalidToken", InvalidToken(), ErrCodeInvalidToken, http.StatusUnauthorized, false},
		{"ExternalServiceError", ExternalServiceError("labeling", nil), ErrCodeExternalService, http.StatusBadGateway, true},
		{"InvalidModel", InvalidModel("huge", []string{"base"}), ErrCodeInvalidModel, http.StatusBadRequest, false},
		{"InvalidLanguage", InvalidLanguage("xx"), ErrCodeInvalidLanguage, http.StatusBadRequest, false},
		{"ModelLoadFailed", ModelLoadFailed("base", nil), ErrCodeModelLoadFailed, http.StatusServiceUnavailable, true},
		{"ArtifactNotFound", ArtifactNotFound(nil), ErrCodeArtifactNotFound, http.StatusBadRequest, false},
		{"TranscriptionFailed", TranscriptionFailed("gpu_memory", "msg", nil), ErrCodeTranscriptionFailed, http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_ToResponse(t *testing.T) {
	resp := TranscriptionFailed("network", "retry please", nil).ToResponse()
	if resp.Error.Code != ErrCodeTranscriptionFailed || resp.Error.Message != "retry please" {
		t.Errorf("unexpected body: %+v", resp.Error)
	}
	if resp.Error.Details["category"] != "network" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Internal(nil)
	got, ok := AsAppError(fmt.Errorf("wrap: %w", appErr))
	if !ok || got != appErr {
		t.Fatal("expected AsAppError to find the wrapped AppError")
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected false for plain error")
	}
	if IsAppError(stderrors.New("plain")) {
		t.Error("IsAppError should be false for plain error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("item", "1")
	if Wrap(fmt.Errorf("outer: %w", orig)) != orig {
		t.Error("Wrap should return the wrapped AppError")
	}

	plain := stderrors.New("boom")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || !stderrors.Is(got, plain) {
		t.Errorf("Wrap(plain) = %+v", got)
	}
}
