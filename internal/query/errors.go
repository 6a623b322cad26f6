package query

import "errors"

var (
	ErrConfigMissing  = errors.New("query configuration missing")
	ErrInvalidRequest = errors.New("invalid query request")
	ErrDownstream     = errors.New("model invocation failed")
)
