// Package synapseapi holds the wire-level encoding helpers shared by the
// transport and the public client: JSON bodies in and out, and the base64
// profiling payload the repository service returns on request.
package synapseapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotObject is returned when a body decodes to JSON that is not an object.
var ErrNotObject = errors.New("synapseapi: body is not a JSON object")

// EncodeJSON serializes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func EncodeJSON(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeObject parses a response body into a JSON object. An empty body or a
// JSON null yields a nil map and no error.
func DecodeObject(body []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("synapseapi: decode body: %w", err)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// DecodeResult decodes the JSON body into out. When the body is empty, out is
// populated with a JSON null.
func DecodeResult(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		trimmed = []byte("null")
	}
	return json.Unmarshal(trimmed, out)
}

// DecodeProfile turns the value of the profiling response header into a JSON
// value. Both padded and unpadded base64 are accepted.
func DecodeProfile(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("synapseapi: decode profile base64: %w", err)
		}
	}
	var profile any
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("synapseapi: decode profile json: %w", err)
	}
	return profile, nil
}

// EncodeProfile is the inverse of DecodeProfile.
func EncodeProfile(v any) (string, error) {
	data, err := EncodeJSON(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
