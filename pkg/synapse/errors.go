package synapse

import (
	"errors"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/httpx"
)

var (
	// ErrInvalidArgument is returned before any network call when a required
	// parameter is missing or malformed.
	ErrInvalidArgument = errors.New("synapse: invalid argument")
	// ErrAuthentication signals a login response without a session token.
	ErrAuthentication = errors.New("synapse: authentication failed")
	// ErrAmbiguousResult is returned when a lookup matches more than one entity.
	ErrAmbiguousResult = errors.New("synapse: more than one matching entity")
	// ErrConflict signals that the service rejected a write carrying a stale ETag.
	ErrConflict = errors.New("synapse: conflicting update")
	// ErrETagRequired is returned by Update when the stored entity has no etag
	// to guard the write with.
	ErrETagRequired = errors.New("synapse: stored entity has no etag")
)

// TransportError is returned when the service answers with a status code the
// call does not accept. It carries the method, URI, status, reason and body.
type TransportError = httpx.TransportError

// IsNotFound reports whether err is a TransportError for a 404 response.
func IsNotFound(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr) && terr.NotFound()
}

// StatusCode extracts the HTTP status from a TransportError, or 0.
func StatusCode(err error) int {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.StatusCode
	}
	return 0
}
