package query

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// VertexInvoker calls a Gemini model hosted on Vertex AI.
type VertexInvoker struct {
	client *genai.Client
	model  string
}

func NewVertexInvoker(ctx context.Context, projectID, location, model string) (*VertexInvoker, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &VertexInvoker{client: client, model: model}, nil
}

// VertexFactory defers client creation to the first request.
func VertexFactory(projectID, location, model string) Factory {
	return func(ctx context.Context) (ModelInvoker, error) {
		return NewVertexInvoker(ctx, projectID, location, model)
	}
}

func (v *VertexInvoker) Invoke(ctx context.Context, query string) (*Answer, error) {
	resp, err := v.client.Models.GenerateContent(ctx, v.model, genai.Text(query), nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return &Answer{
		Text:    resp.Text(),
		Sources: groundingSources(resp),
	}, nil
}

// groundingSources lists the URIs the model grounded its answer on, in
// order of first appearance.
func groundingSources(resp *genai.GenerateContentResponse) []string {
	sources := []string{}
	if resp == nil {
		return sources
	}

	seen := make(map[string]bool)
	add := func(uri string) {
		if uri != "" && !seen[uri] {
			seen[uri] = true
			sources = append(sources, uri)
		}
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			switch {
			case chunk == nil:
			case chunk.RetrievedContext != nil:
				add(chunk.RetrievedContext.URI)
			case chunk.Web != nil:
				add(chunk.Web.URI)
			}
		}
	}
	return sources
}
