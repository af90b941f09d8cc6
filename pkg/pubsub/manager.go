package pubsub

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// --- Resource Manager ---

// ResourceClient is the slice of the Client facade the Manager needs. Using
// the interface keeps the manager's logic testable with mocks.
type ResourceClient interface {
	CreateTopic(ctx context.Context, name string) error
	DeleteTopic(ctx context.Context, name string) error
	TopicExists(ctx context.Context, name string) (bool, error)
	Subscribe(ctx context.Context, name, topic, endpoint string) error
	Unsubscribe(ctx context.Context, name string) error
	SubscriptionExists(ctx context.Context, name string) (bool, error)
}

// Manager reconciles a declarative ResourceSet against the broker using the
// facade's idempotent operations.
type Manager struct {
	client ResourceClient
	logger zerolog.Logger
}

// NewManager creates a new Manager.
func NewManager(client ResourceClient, logger zerolog.Logger) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client (ResourceClient interface) cannot be nil")
	}
	return &Manager{
		client: client,
		logger: logger.With().Str("component", "Manager").Logger(),
	}, nil
}

// Setup creates all configured topics and subscriptions. Topics are created
// first so their subscriptions have something to bind to. The underlying
// operations are idempotent, so re-running Setup converges without erroring.
func (m *Manager) Setup(ctx context.Context, resources ResourceSet) error {
	m.logger.Info().Msg("Starting pub/sub setup")

	if err := m.setupTopics(ctx, resources.Topics); err != nil {
		return err
	}
	if err := m.setupSubscriptions(ctx, resources.Subscriptions); err != nil {
		return err
	}

	m.logger.Info().Msg("Pub/sub setup completed successfully")
	return nil
}

func (m *Manager) setupTopics(ctx context.Context, topicsToCreate []TopicSpec) error {
	m.logger.Info().Int("count", len(topicsToCreate)).Msg("Setting up topics...")
	for _, topicSpec := range topicsToCreate {
		if topicSpec.Name == "" {
			m.logger.Error().Msg("Skipping topic with empty name")
			continue
		}
		if err := m.client.CreateTopic(ctx, topicSpec.Name); err != nil {
			return fmt.Errorf("failed to set up topic '%s': %w", topicSpec.Name, err)
		}
		m.logger.Info().Str("topic_id", topicSpec.Name).Msg("Topic ensured")
	}
	return nil
}

func (m *Manager) setupSubscriptions(ctx context.Context, subsToCreate []SubscriptionSpec) error {
	m.logger.Info().Int("count", len(subsToCreate)).Msg("Setting up subscriptions...")
	for _, subSpec := range subsToCreate {
		if subSpec.Name == "" || subSpec.Topic == "" {
			m.logger.Error().Str("sub_name", subSpec.Name).Str("topic_name", subSpec.Topic).Msg("Skipping subscription with empty name or topic")
			continue
		}
		if err := m.client.Subscribe(ctx, subSpec.Name, subSpec.Topic, subSpec.PushEndpoint); err != nil {
			return fmt.Errorf("failed to set up subscription '%s' for topic '%s': %w", subSpec.Name, subSpec.Topic, err)
		}
		m.logger.Info().Str("subscription_id", subSpec.Name).Str("topic_id", subSpec.Topic).Msg("Subscription ensured")
	}
	return nil
}

// Verify checks that every configured resource exists. It mutates nothing
// and fails on the first missing resource.
func (m *Manager) Verify(ctx context.Context, resources ResourceSet) error {
	m.logger.Info().Int("topics", len(resources.Topics)).Int("subscriptions", len(resources.Subscriptions)).Msg("Verifying pub/sub resources...")
	for _, topicSpec := range resources.Topics {
		if topicSpec.Name == "" {
			m.logger.Warn().Msg("Skipping verification for topic with empty name")
			continue
		}
		exists, err := m.client.TopicExists(ctx, topicSpec.Name)
		if err != nil {
			return fmt.Errorf("failed to check existence of topic '%s' during verification: %w", topicSpec.Name, err)
		}
		if !exists {
			return fmt.Errorf("topic '%s' not found during verification", topicSpec.Name)
		}
		m.logger.Debug().Str("topic_id", topicSpec.Name).Msg("Topic verified")
	}
	for _, subSpec := range resources.Subscriptions {
		if subSpec.Name == "" {
			m.logger.Warn().Msg("Skipping verification for subscription with empty name")
			continue
		}
		exists, err := m.client.SubscriptionExists(ctx, subSpec.Name)
		if err != nil {
			return fmt.Errorf("failed to check existence of subscription '%s' during verification: %w", subSpec.Name, err)
		}
		if !exists {
			return fmt.Errorf("subscription '%s' not found during verification", subSpec.Name)
		}
		m.logger.Debug().Str("subscription_id", subSpec.Name).Msg("Subscription verified")
	}
	return nil
}

// Teardown deletes all configured resources in reverse declaration order,
// subscriptions before topics. Individual delete failures are logged and the
// teardown continues; resources that are already gone count as deleted.
func (m *Manager) Teardown(ctx context.Context, resources ResourceSet, teardownProtection bool) error {
	m.logger.Info().Msg("Starting pub/sub teardown")

	if teardownProtection {
		return fmt.Errorf("teardown protection enabled for this operation")
	}

	m.teardownSubscriptions(ctx, resources.Subscriptions)
	m.teardownTopics(ctx, resources.Topics)

	m.logger.Info().Msg("Pub/sub teardown completed")
	return nil
}

func (m *Manager) teardownSubscriptions(ctx context.Context, subsToTeardown []SubscriptionSpec) {
	m.logger.Info().Int("count", len(subsToTeardown)).Msg("Tearing down subscriptions...")
	for i := len(subsToTeardown) - 1; i >= 0; i-- {
		subSpec := subsToTeardown[i]
		if subSpec.Name == "" {
			continue
		}
		if err := m.client.Unsubscribe(ctx, subSpec.Name); err != nil {
			m.logger.Error().Err(err).Str("subscription_id", subSpec.Name).Msg("Failed to delete subscription")
		} else {
			m.logger.Info().Str("subscription_id", subSpec.Name).Msg("Subscription deleted")
		}
	}
}

func (m *Manager) teardownTopics(ctx context.Context, topicsToTeardown []TopicSpec) {
	m.logger.Info().Int("count", len(topicsToTeardown)).Msg("Tearing down topics...")
	for i := len(topicsToTeardown) - 1; i >= 0; i-- {
		topicSpec := topicsToTeardown[i]
		if topicSpec.Name == "" {
			continue
		}
		if err := m.client.DeleteTopic(ctx, topicSpec.Name); err != nil {
			m.logger.Error().Err(err).Str("topic_id", topicSpec.Name).Msg("Failed to delete topic")
		} else {
			m.logger.Info().Str("topic_id", topicSpec.Name).Msg("Topic deleted")
		}
	}
}
