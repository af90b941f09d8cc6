package pubsub

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// ScopePubSub is the OAuth scope required for all pub/sub operations.
const ScopePubSub = "https://www.googleapis.com/auth/pubsub"

// Authenticator exchanges service-account credentials for an authenticated
// HTTP client. It is a narrow, injectable capability so the facade never
// references a concrete signing mechanism; tests supply their own
// implementation.
type Authenticator interface {
	AuthenticatedClient(ctx context.Context, serviceAccount string, privateKey []byte, scope string) (*http.Client, error)
}

// JWTAuthenticator implements Authenticator using the two-legged JWT
// assertion flow. The private key must be PEM-encoded. Token signing and
// refresh are handled entirely by the oauth2 transport; no network access
// happens until the first request.
type JWTAuthenticator struct{}

// AuthenticatedClient returns an HTTP client whose transport injects and
// refreshes bearer tokens for the given account and scope.
func (JWTAuthenticator) AuthenticatedClient(ctx context.Context, serviceAccount string, privateKey []byte, scope string) (*http.Client, error) {
	if serviceAccount == "" || len(privateKey) == 0 {
		return nil, ErrMissingCredentials
	}
	cfg := &jwt.Config{
		Email:      serviceAccount,
		PrivateKey: privateKey,
		Scopes:     []string{scope},
		TokenURL:   google.JWTTokenURL,
	}
	return cfg.Client(ctx), nil
}

// ClientConfig carries the construction parameters for a Client.
type ClientConfig struct {
	ProjectID string

	// Service is an optional pre-built handle. When set it is used as-is and
	// the credential fields below are ignored.
	Service PubSubService

	// ServiceAccount and PrivateKey authenticate a new REST handle when no
	// pre-built Service is supplied. Both must be set in that case.
	ServiceAccount string
	PrivateKey     []byte

	// Scope defaults to ScopePubSub.
	Scope string

	// Endpoint defaults to DefaultEndpoint.
	Endpoint string

	// Authenticator defaults to JWTAuthenticator.
	Authenticator Authenticator
}

// NewClient constructs a Client from configuration. It fails immediately,
// before any network access, when the project id is empty or when neither a
// pre-built handle nor a complete (service account, private key) pair is
// supplied.
func NewClient(ctx context.Context, cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project ID cannot be empty")
	}
	service := cfg.Service
	if service == nil {
		if cfg.ServiceAccount == "" || len(cfg.PrivateKey) == 0 {
			return nil, ErrMissingCredentials
		}
		scope := cfg.Scope
		if scope == "" {
			scope = ScopePubSub
		}
		auth := cfg.Authenticator
		if auth == nil {
			auth = JWTAuthenticator{}
		}
		httpClient, err := auth.AuthenticatedClient(ctx, cfg.ServiceAccount, cfg.PrivateKey, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to authenticate service account '%s': %w", cfg.ServiceAccount, err)
		}
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = DefaultEndpoint
		}
		service = NewRESTService(httpClient, endpoint)
	}
	return New(service, cfg.ProjectID, logger)
}
