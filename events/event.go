package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope written to Kafka for every domain event.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// NewEvent builds an event with a fresh id and a UTC timestamp. subject is
// the artifact or annotation id and doubles as the message key.
func NewEvent(eventType, source, subject string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// TranscriptionCompleted is the payload of transcription.completed.
type TranscriptionCompleted struct {
	Model            string  `json:"model"`
	Language         string  `json:"language"`
	DetectedLanguage string  `json:"detected_language"`
	Segments         int     `json:"segments"`
	DurationSeconds  float64 `json:"duration_seconds"`
}

// AnnotationSaved is the payload of annotation.saved.
type AnnotationSaved struct {
	Key      string `json:"key"`
	Segments int    `json:"segments"`
}

// AnnotationSubmitted is the payload of annotation.submitted.
type AnnotationSubmitted struct {
	TaskID       string `json:"task_id"`
	Model        string `json:"model"`
	Language     string `json:"language"`
	AnnotationID string `json:"annotation_id"`
	Mock         bool   `json:"mock"`
}
