// Package labeling is the client of the external data-labeling API that
// receives finished transcripts. In mock mode no request leaves the
// process: tokens prefixed with "mock_" validate and submissions return a
// canned success.
package labeling

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/whisperdesk/httpclient"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
)

const (
	ModeMock = "mock"
	ModeLive = "live"

	DefaultBaseURL = "https://api.codatta.com/v1"
	// MockTokenPrefix marks tokens accepted in mock mode.
	MockTokenPrefix = "mock_"
)

// Config configures the labeling client.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// Mode is "mock" (default) or "live".
	Mode string `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=mock live"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Mode == "" {
		c.Mode = ModeMock
	}
}

// Validate checks the mode.
func (c *Config) Validate() error {
	if c.Mode != ModeMock && c.Mode != ModeLive {
		return fmt.Errorf("labeling.mode must be %q or %q, got %q", ModeMock, ModeLive, c.Mode)
	}
	return nil
}

// Submission is the payload sent for one annotated task.
type Submission struct {
	TaskID        string `json:"task_id"`
	AudioData     string `json:"audio_data"`
	Transcription string `json:"transcription"`
	Language      string `json:"language"`
	Model         string `json:"model"`
	// Timestamp is UTC ISO-8601.
	Timestamp string `json:"timestamp"`
}

// mockSubmitResponse is returned by Submit in mock mode.
func mockSubmitResponse() map[string]any {
	return map[string]any{"status": "success", "annotation_id": "mock_annotation_123"}
}

// Client talks to the labeling API.
type Client struct {
	cfg     Config
	http    *httpclient.Client
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// New creates a client.
func New(cfg Config, m *metrics.Metrics, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hc, err := httpclient.New(httpclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Client{cfg: cfg, http: hc, metrics: m, log: log.WithComponent("labeling"), now: time.Now}, nil
}

// Mock reports whether the client runs in mock mode.
func (c *Client) Mock() bool { return c.cfg.Mode == ModeMock }

// ValidateToken reports whether the labeling API accepts token. Transport
// failures count as invalid.
func (c *Client) ValidateToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	if c.Mock() {
		return strings.HasPrefix(token, MockTokenPrefix)
	}
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/validate-token",
		Auth:   httpclient.BearerAuth(token),
	})
	if err != nil {
		if !httpclient.IsAuth(err) {
			c.log.WithContext(ctx).Warn("token validation failed", logger.MergeWithError(nil, err))
		}
		return false
	}
	return resp.StatusCode == http.StatusOK
}

// Submit sends s with token and returns the decoded API response.
func (c *Client) Submit(ctx context.Context, token string, s Submission) (map[string]any, error) {
	start := time.Now()
	mode := c.cfg.Mode
	if c.Mock() {
		c.metrics.RecordLabelingSubmit(mode, time.Since(start).Seconds(), nil)
		return mockSubmitResponse(), nil
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/annotations",
		Auth:   httpclient.BearerAuth(token),
		Body:   s,
	})
	var out map[string]any
	if err == nil {
		err = resp.DecodeJSON(&out)
	}
	c.metrics.RecordLabelingSubmit(mode, time.Since(start).Seconds(), err)
	if err != nil {
		c.log.WithContext(ctx).Error("annotation submit failed", logger.MergeWithError(
			logger.Fields(logger.FieldTaskID, s.TaskID), err))
		return nil, fmt.Errorf("submit annotation: %w", err)
	}
	return out, nil
}

// FormatSubmission builds a submission stamped with the current UTC time.
func (c *Client) FormatSubmission(taskID, audioData, transcription, language, model string) Submission {
	return Submission{
		TaskID:        taskID,
		AudioData:     audioData,
		Transcription: transcription,
		Language:      language,
		Model:         model,
		Timestamp:     c.now().UTC().Format(time.RFC3339Nano),
	}
}
