package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// DefaultEndpoint is the production base URL of the v1beta1 REST API.
const DefaultEndpoint = "https://www.googleapis.com/pubsub/v1beta1"

// RESTService implements PubSubService over the broker's v1beta1 REST API.
// The fully-scoped resource name doubles as the URL path for lookups and
// deletes; creates, publish, pull and acknowledge POST JSON bodies to the
// collection endpoints.
//
// The injected HTTP client must already carry authentication (see
// Authenticator). RESTService adds no retry, backoff or timeout of its own;
// cancellation and deadlines come from the caller's context or the transport.
type RESTService struct {
	httpClient *http.Client
	endpoint   string
}

// NewRESTService wraps an authenticated HTTP client. A nil client falls back
// to http.DefaultClient, which is only useful against unauthenticated test
// brokers.
func NewRESTService(httpClient *http.Client, endpoint string) *RESTService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTService{
		httpClient: httpClient,
		endpoint:   strings.TrimSuffix(endpoint, "/"),
	}
}

// do issues a single request. Remote failures come back as *googleapi.Error
// carrying the HTTP status, which is what IsNotFound inspects.
func (s *RESTService) do(ctx context.Context, method, path string, body, out any) error {
	var req *http.Request
	var err error
	if body != nil {
		encoded, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("failed to encode request body: %w", merr)
		}
		req, err = http.NewRequestWithContext(ctx, method, s.endpoint+path, bytes.NewReader(encoded))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, s.endpoint+path, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to build %s request for '%s': %w", method, path, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response from '%s': %w", method, path, err)
	}
	return nil
}

func (s *RESTService) GetTopic(ctx context.Context, name string) (*Topic, error) {
	var topic Topic
	if err := s.do(ctx, http.MethodGet, name, nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *RESTService) CreateTopic(ctx context.Context, topic Topic) (*Topic, error) {
	var created Topic
	if err := s.do(ctx, http.MethodPost, "/topics", topic, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RESTService) DeleteTopic(ctx context.Context, name string) error {
	return s.do(ctx, http.MethodDelete, name, nil, nil)
}

func (s *RESTService) GetSubscription(ctx context.Context, name string) (*Subscription, error) {
	var sub Subscription
	if err := s.do(ctx, http.MethodGet, name, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *RESTService) CreateSubscription(ctx context.Context, sub Subscription) (*Subscription, error) {
	var created Subscription
	if err := s.do(ctx, http.MethodPost, "/subscriptions", sub, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RESTService) DeleteSubscription(ctx context.Context, name string) error {
	return s.do(ctx, http.MethodDelete, name, nil, nil)
}

func (s *RESTService) Publish(ctx context.Context, req PublishRequest) error {
	return s.do(ctx, http.MethodPost, "/topics/publish", req, nil)
}

func (s *RESTService) Pull(ctx context.Context, req PullRequest) (*PullResponse, error) {
	var resp PullResponse
	if err := s.do(ctx, http.MethodPost, "/subscriptions/pull", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *RESTService) Acknowledge(ctx context.Context, req AcknowledgeRequest) error {
	return s.do(ctx, http.MethodPost, "/subscriptions/acknowledge", req, nil)
}
