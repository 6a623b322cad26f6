package extract

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// DocumentAI sends stored documents to a Document AI processor.
type DocumentAI struct {
	client    *documentai.DocumentProcessorClient
	processor string
}

// ProcessorName builds the resource name of a Document AI processor.
func ProcessorName(projectID, location, processorID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID)
}

// Endpoint is the regional Document AI endpoint for location.
func Endpoint(location string) string {
	return fmt.Sprintf("%s-documentai.googleapis.com:443", location)
}

func NewDocumentAI(ctx context.Context, projectID, location, processorID string) (*DocumentAI, error) {
	opts := append(credentialOptions(ctx, documentai.DefaultAuthScopes()...), option.WithEndpoint(Endpoint(location)))

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &DocumentAI{
		client:    client,
		processor: ProcessorName(projectID, location, processorID),
	}, nil
}

// ExtractDocument processes the object at uri (gs://...) in place.
func (d *DocumentAI) ExtractDocument(ctx context.Context, uri, mimeType string) (*Extraction, error) {
	req := &documentaipb.ProcessRequest{
		Name: d.processor,
		Source: &documentaipb.ProcessRequest_GcsDocument{
			GcsDocument: &documentaipb.GcsDocument{
				GcsUri:   uri,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}

	return fromDocument(resp.GetDocument(), mimeType), nil
}

func (d *DocumentAI) Close() error {
	return d.client.Close()
}

func fromDocument(doc *documentaipb.Document, mimeType string) *Extraction {
	if doc.GetMimeType() != "" {
		mimeType = doc.GetMimeType()
	}
	return &Extraction{
		Text:     doc.GetText(),
		Pages:    len(doc.GetPages()),
		MimeType: mimeType,
	}
}

// credentialOptions resolves Application Default Credentials when they are
// available; otherwise the client library falls back to its own lookup.
func credentialOptions(ctx context.Context, scopes ...string) []option.ClientOption {
	creds, _ := google.FindDefaultCredentials(ctx, scopes...)
	var opts []option.ClientOption
	if creds != nil {
		opts = append(opts, option.WithCredentials(creds))
	}
	return opts
}
