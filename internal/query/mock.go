package query

import (
	"context"
	"fmt"
)

// MockInvoker answers without calling any model.
type MockInvoker struct{}

func (MockInvoker) Invoke(_ context.Context, query string) (*Answer, error) {
	return &Answer{
		Text:    fmt.Sprintf("Mock Vertex AI response for: '%s'", query),
		Sources: []string{"mock_source1.txt", "mock_source2.pdf"},
	}, nil
}

// MockFactory always yields a MockInvoker.
func MockFactory(context.Context) (ModelInvoker, error) {
	return MockInvoker{}, nil
}
