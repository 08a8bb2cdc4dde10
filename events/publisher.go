package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
)

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes events to Kafka, or only logs them when disabled.
type KafkaPublisher struct {
	cfg     Config
	writer  MessageWriter
	metrics *metrics.Metrics
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewPublisher creates a publisher. Disabled configs, or configs without
// brokers, produce a log-only publisher.
func NewPublisher(cfg Config, m *metrics.Metrics, log *logger.Logger) (*KafkaPublisher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("events config: %w", err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	p := &KafkaPublisher{cfg: cfg, metrics: m, log: log.WithComponent("events")}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		p.log.Info("kafka disabled, using log-only mode")
		return p, nil
	}

	w, err := newWriter(&cfg)
	if err != nil {
		return nil, err
	}
	p.writer = w
	p.log.Info("kafka publisher initialized", logger.Fields(
		"brokers", cfg.Brokers,
		"compression", cfg.Compression,
		"topic_prefix", cfg.TopicPrefix,
	))
	return p, nil
}

// NewPublisherWithWriter creates a publisher over an existing writer.
func NewPublisherWithWriter(cfg Config, w MessageWriter, m *metrics.Metrics, log *logger.Logger) *KafkaPublisher {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &KafkaPublisher{cfg: cfg, writer: w, metrics: m, log: log.WithComponent("events")}
}

// Enabled reports whether events reach Kafka.
func (p *KafkaPublisher) Enabled() bool { return p.writer != nil }

// Publish writes event to topic keyed by its subject.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event Event) error {
	full := p.cfg.Topic(topic)

	payload, err := json.Marshal(event)
	if err != nil {
		p.metrics.RecordEvent(full, err)
		return fmt.Errorf("marshal event: %w", err)
	}

	fields := logger.Fields(logger.FieldTopic, full, "key", event.Subject, "event_id", event.ID)
	if p.writer == nil {
		p.log.WithContext(ctx).Debug("event (log-only): "+string(payload), fields)
		p.metrics.RecordEvent(full, nil)
		return nil
	}

	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return fmt.Errorf("publisher is closed")
	}

	msg := kafkago.Message{
		Topic: full,
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.WithContext(ctx).Error("failed to write event", logger.MergeWithError(fields, err))
		p.metrics.RecordEvent(full, err)
		return err
	}
	p.metrics.RecordEvent(full, nil)
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.writer == nil {
		return nil
	}
	p.log.Info("kafka publisher closing")
	return p.writer.Close()
}

// PublishAsync publishes in the background so the caller's response is not
// delayed. Failures are logged by Publish.
func PublishAsync(ctx context.Context, p Publisher, topic string, event Event) {
	if p == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		_ = p.Publish(ctx, topic, event)
	}()
}
