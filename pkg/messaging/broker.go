package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by the console when an exam's extraction
// lifecycle reaches a terminal state.
const (
	EventExamCompleted = "EXAM_COMPLETED"
	EventExamFailed    = "EXAM_FAILED"
	EventValueAlert    = "VALUE_ALERT"
)

// Event is the envelope published to the broker.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent builds an event with a fresh ID, marshalling payload to JSON.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Broker publishes console lifecycle events to interested consumers.
type Broker interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// NoopBroker discards all events. Used when no broker is configured.
type NoopBroker struct{}

func NewNoopBroker() *NoopBroker { return &NoopBroker{} }

func (NoopBroker) Publish(ctx context.Context, topic string, event *Event) error { return nil }

func (NoopBroker) Close() error { return nil }
