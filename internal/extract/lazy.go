package extract

import (
	"context"
	"io"
	"sync"
)

// lazy builds a client on first use. A failed build is not cached, so the
// next call tries again.
type lazy[T io.Closer] struct {
	mu    sync.Mutex
	build func(ctx context.Context) (T, error)
	v     T
	ready bool
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.v, nil
	}
	v, err := l.build(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.v, l.ready = v, true
	return v, nil
}

func (l *lazy[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.ready {
		return nil
	}
	l.ready = false
	return l.v.Close()
}

// LazyDocumentAI creates its Document AI client on the first document, so
// credential or endpoint problems surface as per-event errors.
type LazyDocumentAI struct {
	lazy[*DocumentAI]
}

func NewLazyDocumentAI(projectID, location, processorID string) *LazyDocumentAI {
	return &LazyDocumentAI{lazy[*DocumentAI]{
		build: func(ctx context.Context) (*DocumentAI, error) {
			return NewDocumentAI(ctx, projectID, location, processorID)
		},
	}}
}

func (d *LazyDocumentAI) ExtractDocument(ctx context.Context, uri, mimeType string) (*Extraction, error) {
	client, err := d.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.ExtractDocument(ctx, uri, mimeType)
}

// LazyVision is the Vision counterpart of LazyDocumentAI.
type LazyVision struct {
	lazy[*Vision]
}

func NewLazyVision() *LazyVision {
	return &LazyVision{lazy[*Vision]{build: NewVision}}
}

func (v *LazyVision) DetectText(ctx context.Context, uri string) (*Extraction, error) {
	client, err := v.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.DetectText(ctx, uri)
}
