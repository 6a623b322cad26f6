// Package sink persists extraction results produced by the document router.
//
// Where results should live long term is not settled, so the default is
// None and the Redis and Postgres sinks store an opaque record keyed by the
// object URI without assuming anything about downstream consumers.
package sink

import (
	"context"
	"time"
)

// Record is what the router hands to a sink after a successful extraction.
type Record struct {
	ID          string    `json:"id"`
	URI         string    `json:"uri"`
	Bucket      string    `json:"bucket"`
	Name        string    `json:"name"`
	Branch      string    `json:"branch"`
	MimeType    string    `json:"mime_type,omitempty"`
	Text        string    `json:"text"`
	Pages       int       `json:"pages"`
	ProcessedAt time.Time `json:"processed_at"`
}

type Sink interface {
	Store(ctx context.Context, rec Record) error
}

// None discards every record.
type None struct{}

func (None) Store(context.Context, Record) error { return nil }
