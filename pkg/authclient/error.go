package authclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// fieldMessages accepts both a single string and an array of strings,
// the two shapes the API emits for per-field validation errors.
type fieldMessages []string

func (f *fieldMessages) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = fieldMessages{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*f = fieldMessages(many)
	return nil
}

// APIError is a non-2xx response decoded into the wire contract's two
// error shapes: {"error": message} or a field -> messages map.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// FieldMessage returns the first message found walking the given fields
// in order, or the top-level message, or the empty string.
func (e *APIError) FieldMessage(fields ...string) string {
	if e.Message != "" {
		return e.Message
	}
	for _, field := range fields {
		if msgs, ok := e.Fields[field]; ok && len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// decodeError builds an APIError from a response body. Undecodable
// bodies fall back to the HTTP status text.
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}

	if msg, ok := raw["error"]; ok {
		var text string
		if json.Unmarshal(msg, &text) == nil && text != "" {
			apiErr.Message = text
			return apiErr
		}
	}

	fields := make(map[string][]string, len(raw))
	for key, value := range raw {
		var msgs fieldMessages
		if err := json.Unmarshal(value, &msgs); err != nil {
			continue
		}
		fields[key] = msgs
	}
	if len(fields) > 0 {
		apiErr.Fields = fields
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(http.StatusText(status))
	return apiErr
}

// IsUnauthorized reports whether the error is an HTTP 401 APIError.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}
