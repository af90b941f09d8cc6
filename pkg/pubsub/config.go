package pubsub

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// This file defines the Go structs that map directly to the structure of a
// client configuration file. The `yaml:"..."` tags tell the parser which
// YAML key corresponds to which struct field.

// TopicSpec declares a topic in a ResourceSet.
type TopicSpec struct {
	Name string `yaml:"name"`
}

// SubscriptionSpec declares a subscription in a ResourceSet. PushEndpoint is
// optional; when empty the subscription is pull-only.
type SubscriptionSpec struct {
	Name         string `yaml:"name"`
	Topic        string `yaml:"topic"`
	PushEndpoint string `yaml:"push_endpoint,omitempty"`
}

// ResourceSet is a declarative description of the topics and subscriptions a
// deployment expects. The Manager reconciles it against the broker.
type ResourceSet struct {
	Topics        []TopicSpec        `yaml:"topics,omitempty"`
	Subscriptions []SubscriptionSpec `yaml:"subscriptions,omitempty"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	ProjectID      string      `yaml:"project_id"`
	Endpoint       string      `yaml:"endpoint,omitempty"`
	ServiceAccount string      `yaml:"service_account,omitempty"`
	PrivateKeyFile string      `yaml:"private_key_file,omitempty"`
	Scope          string      `yaml:"scope,omitempty"`
	Resources      ResourceSet `yaml:"resources,omitempty"`
}

// LoadConfig reads a YAML configuration file, unmarshals it and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML from '%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return &cfg, nil
}

// Validate performs the checks that can be done without touching the network.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("validation error: project_id must be set")
	}
	for i, t := range c.Resources.Topics {
		if t.Name == "" {
			return fmt.Errorf("validation error: topics[%d] is missing a name", i)
		}
	}
	for i, s := range c.Resources.Subscriptions {
		if s.Name == "" {
			return fmt.Errorf("validation error: subscriptions[%d] is missing a name", i)
		}
		if s.Topic == "" {
			return fmt.Errorf("validation error: subscriptions[%d] ('%s') is missing a topic", i, s.Name)
		}
	}
	return nil
}

// ClientConfig converts file configuration into construction parameters,
// reading the private key file when one is configured.
func (c *Config) ClientConfig() (ClientConfig, error) {
	cc := ClientConfig{
		ProjectID:      c.ProjectID,
		Endpoint:       c.Endpoint,
		ServiceAccount: c.ServiceAccount,
		Scope:          c.Scope,
	}
	if c.PrivateKeyFile != "" {
		key, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("failed to read private key file '%s': %w", c.PrivateKeyFile, err)
		}
		cc.PrivateKey = key
	}
	return cc, nil
}
