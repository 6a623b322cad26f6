// Package extract wraps the managed text-extraction services the document
// router dispatches to: Document AI for paged documents and Cloud Vision
// for images.
package extract

import "context"

// Extraction is the text pulled out of one stored object.
type Extraction struct {
	Text     string
	Pages    int
	MimeType string
}

// Mock stands in for both services. Unset funcs return an empty
// extraction, which is what the router records when no backend is wired.
type Mock struct {
	DocumentFunc func(ctx context.Context, uri, mimeType string) (*Extraction, error)
	ImageFunc    func(ctx context.Context, uri string) (*Extraction, error)
}

func (m *Mock) ExtractDocument(ctx context.Context, uri, mimeType string) (*Extraction, error) {
	if m.DocumentFunc != nil {
		return m.DocumentFunc(ctx, uri, mimeType)
	}
	return &Extraction{MimeType: mimeType}, nil
}

func (m *Mock) DetectText(ctx context.Context, uri string) (*Extraction, error) {
	if m.ImageFunc != nil {
		return m.ImageFunc(ctx, uri)
	}
	return &Extraction{}, nil
}
