package pubsub

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrMissingCredentials is returned by NewClient when neither a pre-built
// service handle nor a complete (service account, private key) pair is
// supplied. It is raised before any network access.
var ErrMissingCredentials = errors.New("either a service handle or a service account and private key must be provided")

// IsNotFound reports whether err carries a remote 404, the only status the
// facade treats specially. All backend adapters surface remote failures as
// *googleapi.Error so the check stays typed rather than string-matched.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}
