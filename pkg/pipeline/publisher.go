package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MessageSink publishes a payload to a named topic. It is satisfied by
// *pubsub.Client.
type MessageSink interface {
	Publish(ctx context.Context, topic string, message []byte) error
}

// Publisher is a direct, non-batching publisher bound to a single topic.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// TopicPublisher implements Publisher on top of a MessageSink.
type TopicPublisher struct {
	sink   MessageSink
	topic  string
	logger zerolog.Logger
}

// NewTopicPublisher creates a publisher bound to topic.
func NewTopicPublisher(sink MessageSink, topic string, logger zerolog.Logger) (*TopicPublisher, error) {
	if sink == nil {
		return nil, fmt.Errorf("message sink cannot be nil")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	return &TopicPublisher{
		sink:   sink,
		topic:  topic,
		logger: logger.With().Str("component", "TopicPublisher").Str("topic", topic).Logger(),
	}, nil
}

// Publish sends a single payload. Errors are surfaced to the caller; there
// is no buffering or retry.
func (p *TopicPublisher) Publish(ctx context.Context, payload []byte) error {
	if err := p.sink.Publish(ctx, p.topic, payload); err != nil {
		return fmt.Errorf("failed to publish to topic '%s': %w", p.topic, err)
	}
	p.logger.Debug().Int("bytes", len(payload)).Msg("Message published.")
	return nil
}
