package docrouter

import (
	"errors"
	"fmt"
)

var (
	ErrConfigMissing  = errors.New("router configuration missing")
	ErrMalformedEvent = errors.New("invalid storage event")
	ErrDownstream     = errors.New("downstream service failed")
)

// DownstreamError reports a failed extraction, OCR or sink call for one
// object. It matches both ErrDownstream and the underlying cause.
type DownstreamError struct {
	URI    string
	Branch Branch
	Err    error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("process %s (%s): %v", e.URI, e.Branch, e.Err)
}

func (e *DownstreamError) Unwrap() []error {
	return []error{ErrDownstream, e.Err}
}
