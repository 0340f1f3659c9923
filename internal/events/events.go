package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/avorobev/authd/internal/logger"
)

// Event types published on account lifecycle transitions.
const (
	TypeUserRegistered  = "user.registered"
	TypeUserValidated   = "user.validated"
	TypePasswordChanged = "user.password_changed"
)

// Event is the JSON payload written to the auth-events topic.
type Event struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher emits account lifecycle events to Kafka. A nil *Publisher is a
// valid no-op, so callers never need to branch on whether eventing is
// configured. Publishing is best effort: failures are logged, never surfaced.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher writing to the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish emits one event keyed by user id.
func (p *Publisher) Publish(ctx context.Context, eventType string, userID uuid.UUID, email string) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(Event{
		Type:   eventType,
		UserID: userID,
		Email:  email,
		At:     time.Now().UTC(),
	})
	if err != nil {
		logger.Log.Errorw("failed to marshal event", "type", eventType, "err", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(userID.String()),
		Value: payload,
	})
	if err != nil {
		logger.Log.Errorw("failed to publish event", "type", eventType, "err", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
