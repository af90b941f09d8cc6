package pubsub

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog"
)

// --- Client Facade ---

// Client is a thin facade over a remote pub/sub broker. It holds an
// authenticated service handle and a project identifier and exposes the
// topic/subscription lifecycle plus publish and pull-with-acknowledge.
//
// The client keeps no local state beyond the handle and project id: every
// operation recomputes fully-scoped resource names and performs one or two
// remote calls. It is safe for concurrent use as long as the underlying
// service handle is.
type Client struct {
	service   PubSubService
	projectID string
	logger    zerolog.Logger
}

// New wraps an existing service handle. Most callers should use NewClient,
// which can also construct the handle from credentials.
func New(service PubSubService, projectID string, logger zerolog.Logger) (*Client, error) {
	if service == nil {
		return nil, fmt.Errorf("pubsub service (PubSubService interface) cannot be nil")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project ID cannot be empty")
	}
	return &Client{
		service:   service,
		projectID: projectID,
		logger:    logger.With().Str("component", "PubSubClient").Str("project_id", projectID).Logger(),
	}, nil
}

// ProjectID returns the project this client is scoped to.
func (c *Client) ProjectID() string { return c.projectID }

// TopicName returns the fully-scoped name for a topic in the client's project.
func (c *Client) TopicName(name string) string {
	return fmt.Sprintf("/topics/%s/%s", c.projectID, name)
}

// SubscriptionName returns the fully-scoped name for a subscription in the
// client's project.
func (c *Client) SubscriptionName(name string) string {
	return fmt.Sprintf("/subscriptions/%s/%s", c.projectID, name)
}

// CreateTopic creates a topic if it doesn't exist. This is idempotent: when
// the topic is already present the call is a no-op. Any failure other than
// the topic being absent on lookup is surfaced.
func (c *Client) CreateTopic(ctx context.Context, name string) error {
	full := c.TopicName(name)
	_, err := c.service.GetTopic(ctx, full)
	if err == nil {
		c.logger.Debug().Str("topic", full).Msg("Topic already exists, nothing to do")
		return nil
	}
	if !IsNotFound(err) {
		return fmt.Errorf("failed to check existence of topic '%s': %w", name, err)
	}
	c.logger.Info().Str("topic", full).Msg("Creating topic...")
	if _, err := c.service.CreateTopic(ctx, Topic{Name: full}); err != nil {
		return fmt.Errorf("failed to create topic '%s': %w", name, err)
	}
	return nil
}

// DeleteTopic deletes a topic. A topic that is already absent is treated as
// success; any other failure is surfaced.
func (c *Client) DeleteTopic(ctx context.Context, name string) error {
	full := c.TopicName(name)
	err := c.service.DeleteTopic(ctx, full)
	if err == nil {
		c.logger.Info().Str("topic", full).Msg("Topic deleted")
		return nil
	}
	if IsNotFound(err) {
		c.logger.Debug().Str("topic", full).Msg("Topic not found, nothing to do")
		return nil
	}
	return fmt.Errorf("failed to delete topic '%s': %w", name, err)
}

// TopicExists performs a live lookup for a topic.
func (c *Client) TopicExists(ctx context.Context, name string) (bool, error) {
	_, err := c.service.GetTopic(ctx, c.TopicName(name))
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence of topic '%s': %w", name, err)
}

// Subscribe creates a subscription to a topic if it doesn't exist. The topic
// is a short name rescoped to the client's project. The endpoint, which may
// be empty for pull-only delivery, is carried verbatim into the
// subscription's push configuration; push configuration is set at creation
// time only and never updated afterwards.
func (c *Client) Subscribe(ctx context.Context, name, topic, endpoint string) error {
	full := c.SubscriptionName(name)
	_, err := c.service.GetSubscription(ctx, full)
	if err == nil {
		c.logger.Debug().Str("subscription", full).Msg("Subscription already exists, nothing to do")
		return nil
	}
	if !IsNotFound(err) {
		return fmt.Errorf("failed to check existence of subscription '%s': %w", name, err)
	}
	sub := Subscription{
		Name:       full,
		Topic:      c.TopicName(topic),
		PushConfig: PushConfig{PushEndpoint: endpoint},
	}
	c.logger.Info().Str("subscription", full).Str("topic", sub.Topic).Msg("Creating subscription...")
	if _, err := c.service.CreateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to create subscription '%s' for topic '%s': %w", name, topic, err)
	}
	return nil
}

// Unsubscribe deletes a subscription. A subscription that is already absent
// is treated as success; any other failure is surfaced.
func (c *Client) Unsubscribe(ctx context.Context, name string) error {
	full := c.SubscriptionName(name)
	err := c.service.DeleteSubscription(ctx, full)
	if err == nil {
		c.logger.Info().Str("subscription", full).Msg("Subscription deleted")
		return nil
	}
	if IsNotFound(err) {
		c.logger.Debug().Str("subscription", full).Msg("Subscription not found, nothing to do")
		return nil
	}
	return fmt.Errorf("failed to delete subscription '%s': %w", name, err)
}

// SubscriptionExists performs a live lookup for a subscription.
func (c *Client) SubscriptionExists(ctx context.Context, name string) (bool, error) {
	_, err := c.service.GetSubscription(ctx, c.SubscriptionName(name))
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence of subscription '%s': %w", name, err)
}

// Publish sends a single message to a topic. The payload may be arbitrary
// bytes; it is base64-encoded for the wire. There is no local retry or
// batching.
func (c *Client) Publish(ctx context.Context, topic string, message []byte) error {
	req := PublishRequest{
		Topic:   c.TopicName(topic),
		Message: PubsubMessage{Data: base64.StdEncoding.EncodeToString(message)},
	}
	if err := c.service.Publish(ctx, req); err != nil {
		return fmt.Errorf("failed to publish to topic '%s': %w", topic, err)
	}
	c.logger.Debug().Str("topic", req.Topic).Int("bytes", len(message)).Msg("Message published")
	return nil
}

// Pull retrieves a single message from a subscription. With block set the
// broker long-polls until a message is available; otherwise it responds
// immediately. A (nil, nil) return means no message was available.
//
// A retrieved message is acknowledged before its payload is returned, so a
// nil error means the broker will not redeliver. When the acknowledgement
// itself fails that error is surfaced and the payload withheld; the broker's
// redelivery policy decides what happens to the message. Callers needing
// at-least-once semantics must treat any Pull error as "message state
// unknown".
func (c *Client) Pull(ctx context.Context, subscription string, block bool) ([]byte, error) {
	full := c.SubscriptionName(subscription)
	resp, err := c.service.Pull(ctx, PullRequest{Subscription: full, ReturnImmediately: !block})
	if err != nil {
		return nil, fmt.Errorf("failed to pull from subscription '%s': %w", subscription, err)
	}
	msg := resp.PubsubEvent.Message
	if msg == nil {
		c.logger.Debug().Str("subscription", full).Msg("No message available")
		return nil, nil
	}
	payload, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message payload from subscription '%s': %w", subscription, err)
	}
	ack := AcknowledgeRequest{Subscription: full, AckIDs: []string{resp.AckID}}
	if err := c.service.Acknowledge(ctx, ack); err != nil {
		return nil, fmt.Errorf("failed to acknowledge message on subscription '%s': %w", subscription, err)
	}
	c.logger.Debug().Str("subscription", full).Str("ack_id", resp.AckID).Msg("Message pulled and acknowledged")
	return payload, nil
}
