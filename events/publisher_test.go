package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, buf, "test")
}

func TestPublishWritesMessage(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(Config{Enabled: true, TopicPrefix: "dev."}, w, metrics.New(), nil)

	ev := NewEvent("annotation.saved", "whisperdesk", "abc-123", AnnotationSaved{Key: "annotations/abc-123.json", Segments: 2})
	if err := p.Publish(context.Background(), TopicAnnotationSaved, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != "dev.annotation.saved" {
		t.Errorf("topic = %q", msg.Topic)
	}
	if string(msg.Key) != "abc-123" {
		t.Errorf("key = %q", msg.Key)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["type"] != "annotation.saved" || decoded["subject"] != "abc-123" {
		t.Errorf("unexpected envelope: %v", decoded)
	}
}

func TestPublishWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker not available")}
	m := metrics.New()
	p := NewPublisherWithWriter(Config{Enabled: true}, w, m, nil)

	err := p.Publish(context.Background(), TopicTranscriptionCompleted, NewEvent("t", "s", "k", nil))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLogOnlyPublisher(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPublisher(Config{Enabled: false}, nil, testLogger(&buf))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if p.Enabled() {
		t.Fatal("disabled config should not create a writer")
	}
	if err := p.Publish(context.Background(), TopicAnnotationSubmitted, NewEvent("annotation.submitted", "s", "id-1", nil)); err != nil {
		t.Fatalf("log-only publish failed: %v", err)
	}
	if !strings.Contains(buf.String(), "event (log-only)") {
		t.Errorf("expected event to be logged, got %s", buf.String())
	}
}

func TestEnabledWithoutBrokersFailsValidation(t *testing.T) {
	if _, err := NewPublisher(Config{Enabled: true}, nil, nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(Config{Enabled: true}, w, nil, nil)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !w.closed {
		t.Error("writer not closed")
	}
	if err := p.Publish(context.Background(), "x", NewEvent("x", "s", "k", nil)); err == nil {
		t.Error("publish after close should fail")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"enabled", Config{Enabled: true, Brokers: []string{"k:9092"}}, false},
		{"bad compression", Config{Enabled: true, Brokers: []string{"k:9092"}, Compression: "brotli"}, true},
		{"sasl without user", Config{Enabled: true, Brokers: []string{"k:9092"}, EnableSASL: true}, true},
		{"bad sasl", Config{Enabled: true, Brokers: []string{"k:9092"}, EnableSASL: true, SASLMechanism: "GSSAPI", Username: "u"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestResolveCompression(t *testing.T) {
	if resolveCompression("gzip") != kafkago.Gzip {
		t.Error("gzip")
	}
	if resolveCompression("none") != 0 {
		t.Error("none")
	}
}
