package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is the body accepted by the query endpoint.
type Request struct {
	Query *string `json:"query"`
}

// Response is returned on success. Sources is always encoded as an array.
type Response struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// ParseRequest extracts the query from a JSON body. The body must be an
// object with a string "query" key; an empty string is accepted.
func ParseRequest(body []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	raw, ok := fields["query"]
	if !ok {
		return "", fmt.Errorf("%w: missing query", ErrInvalidRequest)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", fmt.Errorf("%w: query is null", ErrInvalidRequest)
	}

	var q string
	if err := json.Unmarshal(raw, &q); err != nil {
		return "", fmt.Errorf("%w: query must be a string", ErrInvalidRequest)
	}
	return q, nil
}
