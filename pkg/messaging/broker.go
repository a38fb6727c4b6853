package messaging

import (
	"context"
	"time"
)

// Broker publishes JSON-encoded messages to a named topic.
type Broker interface {
	Publish(ctx context.Context, topic string, message interface{}) error
	Close() error
}

// Message is the envelope every published event is wrapped in.
type Message struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

func NewMessage(eventType string, payload interface{}) Message {
	return Message{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type noopBroker struct{}

// NewNoopBroker returns a Broker that drops every message.
func NewNoopBroker() Broker {
	return noopBroker{}
}

func (noopBroker) Publish(context.Context, string, interface{}) error { return nil }

func (noopBroker) Close() error { return nil }
