package pubsub

import (
	"context"
)

// --- Remote Service Contract ---
// The wire types below mirror the broker's v1beta1 REST resources. Resource
// names are fully scoped ("/topics/{project}/{name}") and message payloads
// travel base64-encoded in the Data field.

// Topic is the wire representation of a topic resource.
type Topic struct {
	Name string `json:"name"`
}

// PushConfig carries the optional push-delivery endpoint for a subscription.
// An empty PushEndpoint means pull-only delivery.
type PushConfig struct {
	PushEndpoint string `json:"pushEndpoint"`
}

// Subscription is the wire representation of a subscription resource.
type Subscription struct {
	Name               string     `json:"name"`
	Topic              string     `json:"topic"`
	PushConfig         PushConfig `json:"pushConfig"`
	AckDeadlineSeconds int        `json:"ackDeadlineSeconds,omitempty"`
}

// PubsubMessage is a single message as carried on the wire.
type PubsubMessage struct {
	Data      string `json:"data,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// PublishRequest is the body of a publish call.
type PublishRequest struct {
	Topic   string        `json:"topic"`
	Message PubsubMessage `json:"message"`
}

// PullRequest is the body of a pull call. ReturnImmediately selects between
// an immediate empty response and a broker-side long poll; it is serialized
// unconditionally so the broker always sees an explicit choice.
type PullRequest struct {
	Subscription      string `json:"subscription"`
	ReturnImmediately bool   `json:"returnImmediately"`
}

// PubsubEvent wraps the message, if any, delivered by a pull response.
type PubsubEvent struct {
	Subscription string         `json:"subscription,omitempty"`
	Message      *PubsubMessage `json:"message,omitempty"`
}

// PullResponse is the body of a pull response. A response with a nil
// PubsubEvent.Message means no message was available.
type PullResponse struct {
	AckID       string      `json:"ackId,omitempty"`
	PubsubEvent PubsubEvent `json:"pubsubEvent"`
}

// AcknowledgeRequest marks pulled messages as consumed.
type AcknowledgeRequest struct {
	Subscription string   `json:"subscription"`
	AckIDs       []string `json:"ackId"`
}

// PubSubService defines the operations the client facade needs from the
// remote broker. A real backend is provided by RESTService; tests drive the
// facade with a mock implementing the same interface.
type PubSubService interface {
	GetTopic(ctx context.Context, name string) (*Topic, error)
	CreateTopic(ctx context.Context, topic Topic) (*Topic, error)
	DeleteTopic(ctx context.Context, name string) error
	GetSubscription(ctx context.Context, name string) (*Subscription, error)
	CreateSubscription(ctx context.Context, sub Subscription) (*Subscription, error)
	DeleteSubscription(ctx context.Context, name string) error
	Publish(ctx context.Context, req PublishRequest) error
	Pull(ctx context.Context, req PullRequest) (*PullResponse, error)
	Acknowledge(ctx context.Context, req AcknowledgeRequest) error
}
