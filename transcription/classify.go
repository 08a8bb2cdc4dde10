package transcription

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	stderrors "errors"
	"net"
	"strings"
)

// User-facing messages for classified failures.
const (
	MessageNetwork      = "Network connection is unstable, please retry. If the problem persists, please check network settings."
	MessageGPUMemory    = "GPU memory is insufficient, please try using a smaller model or using CPU mode."
	MessageSystemMemory = "System memory is insufficient, please try using a smaller model."
	MessageTimeout      = "Transcription took too long, please try a shorter recording or a smaller model."
)

type classRule struct {
	category ErrorCategory
	message  string
	typed    func(error) bool
	// markers are matched against the error text; lower-case markers match
	// case-insensitively, the rest exactly.
	markers []string
}

// Order matters: the first matching rule wins.
var classRules = []classRule{
	{
		category: CategoryTimeout,
		message:  MessageTimeout,
		typed:    func(err error) bool { return stderrors.Is(err, context.DeadlineExceeded) },
	},
	{
		category: CategoryNetwork,
		message:  MessageNetwork,
		typed:    isNetworkError,
		markers:  []string{"SSL", "TLS", "certificate", "connection reset", "connection refused"},
	},
	{
		category: CategoryGPUMemory,
		message:  MessageGPUMemory,
		markers:  []string{"CUDA", "cudaMalloc", "ggml_cuda", "VRAM", "MTLBuffer", "ggml_metal", "failed to allocate buffer for kv cache"},
	},
	{
		category: CategorySystemMemory,
		message:  MessageSystemMemory,
		markers:  []string{"memory", "cannot allocate", "bad_alloc"},
	},
}

// Classify picks the category and user-facing message for an inference
// failure. Unmatched errors keep their own text.
func Classify(err error) (ErrorCategory, string) {
	if err == nil {
		return CategoryUnclassified, ""
	}
	text := err.Error()
	lower := strings.ToLower(text)
	for _, rule := range classRules {
		if rule.typed != nil && rule.typed(err) {
			return rule.category, rule.message
		}
		for _, m := range rule.markers {
			if m == strings.ToLower(m) {
				if strings.Contains(lower, m) {
					return rule.category, rule.message
				}
			} else if strings.Contains(text, m) {
				return rule.category, rule.message
			}
		}
	}
	return CategoryUnclassified, text
}

// NewTranscriptionError classifies err and wraps it.
func NewTranscriptionError(err error) *TranscriptionError {
	category, message := Classify(err)
	return &TranscriptionError{Category: category, Message: message, Err: err}
}

func isNetworkError(err error) bool {
	var (
		netErr     net.Error
		recordErr  tls.RecordHeaderError
		certErr    *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	return stderrors.As(err, &netErr) ||
		stderrors.As(err, &recordErr) ||
		stderrors.As(err, &certErr) ||
		stderrors.As(err, &unknownCA) ||
		stderrors.As(err, &hostErr) ||
		stderrors.As(err, &invalidErr)
}
