package pubsub_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-pubsub/pkg/pubsub"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pubsub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Valid Config", func(t *testing.T) {
		path := writeTempConfig(t, `
project_id: test-project
endpoint: http://localhost:8080
service_account: account@example.iam.gserviceaccount.com
resources:
  topics:
    - name: events
    - name: alerts
  subscriptions:
    - name: worker
      topic: events
    - name: pager
      topic: alerts
      push_endpoint: https://oncall.example.com/hook
`)
		cfg, err := pubsub.LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "test-project", cfg.ProjectID)
		assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
		require.Len(t, cfg.Resources.Topics, 2)
		require.Len(t, cfg.Resources.Subscriptions, 2)
		assert.Equal(t, "events", cfg.Resources.Subscriptions[0].Topic)
		assert.Equal(t, "https://oncall.example.com/hook", cfg.Resources.Subscriptions[1].PushEndpoint)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := pubsub.LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
		assert.Error(t, err)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := writeTempConfig(t, "project_id: [not: closed")
		_, err := pubsub.LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("Missing Project ID", func(t *testing.T) {
		path := writeTempConfig(t, `
resources:
  topics:
    - name: events
`)
		_, err := pubsub.LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project_id")
	})

	t.Run("Unnamed Topic", func(t *testing.T) {
		path := writeTempConfig(t, `
project_id: test-project
resources:
  topics:
    - name: ""
`)
		_, err := pubsub.LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing a name")
	})

	t.Run("Subscription Without Topic", func(t *testing.T) {
		path := writeTempConfig(t, `
project_id: test-project
resources:
  subscriptions:
    - name: worker
`)
		_, err := pubsub.LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing a topic")
	})
}

func TestConfigClientConfig(t *testing.T) {
	t.Run("Reads Private Key File", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "key.pem")
		require.NoError(t, os.WriteFile(keyPath, []byte("pem bytes"), 0o600))

		cfg := pubsub.Config{
			ProjectID:      "test-project",
			ServiceAccount: "account@example.iam.gserviceaccount.com",
			PrivateKeyFile: keyPath,
			Scope:          "https://example.com/custom.scope",
		}
		cc, err := cfg.ClientConfig()
		require.NoError(t, err)

		assert.Equal(t, "test-project", cc.ProjectID)
		assert.Equal(t, []byte("pem bytes"), cc.PrivateKey)
		assert.Equal(t, "https://example.com/custom.scope", cc.Scope)
	})

	t.Run("Missing Key File", func(t *testing.T) {
		cfg := pubsub.Config{
			ProjectID:      "test-project",
			PrivateKeyFile: filepath.Join(t.TempDir(), "missing.pem"),
		}
		_, err := cfg.ClientConfig()
		assert.Error(t, err)
	})

	t.Run("No Key File Configured", func(t *testing.T) {
		cfg := pubsub.Config{ProjectID: "test-project"}
		cc, err := cfg.ClientConfig()
		require.NoError(t, err)
		assert.Nil(t, cc.PrivateKey)
	})
}
