package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// TransportError represents a response whose status code is not one the call
// accepts as success.
type TransportError struct {
	Method     string
	URI        string
	StatusCode int
	Reason     string
	Body       []byte
	Header     http.Header
	JSON       any
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s failed: %d %s %s", e.Method, e.URI, e.StatusCode, e.Reason, string(e.Body))
}

// NotFound reports whether the service answered 404.
func (e *TransportError) NotFound() bool {
	return e != nil && e.StatusCode == http.StatusNotFound
}

// Conflict reports whether the service rejected a write because of a stale
// or missing ETag.
func (e *TransportError) Conflict() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusConflict || e.StatusCode == http.StatusPreconditionFailed
}

// decodeJSONBody parses the body bytes into a generic JSON payload.
func decodeJSONBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload
}
