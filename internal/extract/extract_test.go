package extract

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
)

func TestProcessorName(t *testing.T) {
	assert.Equal(t,
		"projects/hio-prod/locations/us/processors/abc123",
		ProcessorName("hio-prod", "us", "abc123"))
	assert.Equal(t, "eu-documentai.googleapis.com:443", Endpoint("eu"))
}

func TestFromDocument(t *testing.T) {
	doc := &documentaipb.Document{
		Text:  "Invoice #42\nTotal: 10.00",
		Pages: []*documentaipb.Document_Page{{}, {}},
	}

	got := fromDocument(doc, "application/pdf")
	assert.Equal(t, "Invoice #42\nTotal: 10.00", got.Text)
	assert.Equal(t, 2, got.Pages)
	assert.Equal(t, "application/pdf", got.MimeType)

	empty := fromDocument(nil, "image/tiff")
	assert.Empty(t, empty.Text)
	assert.Equal(t, "image/tiff", empty.MimeType)
}

func TestFromAnnotation(t *testing.T) {
	t.Run("full text annotation wins", func(t *testing.T) {
		got, err := fromAnnotation(&visionpb.AnnotateImageResponse{
			FullTextAnnotation: &visionpb.TextAnnotation{
				Text:  "STOP",
				Pages: []*visionpb.Page{{}},
			},
			TextAnnotations: []*visionpb.EntityAnnotation{{Description: "ignored"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "STOP", got.Text)
		assert.Equal(t, 1, got.Pages)
	})

	t.Run("falls back to first text annotation", func(t *testing.T) {
		got, err := fromAnnotation(&visionpb.AnnotateImageResponse{
			TextAnnotations: []*visionpb.EntityAnnotation{
				{Description: "hello world"},
				{Description: "hello"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello world", got.Text)
	})

	t.Run("no text", func(t *testing.T) {
		got, err := fromAnnotation(&visionpb.AnnotateImageResponse{})
		require.NoError(t, err)
		assert.Empty(t, got.Text)
	})

	t.Run("per-image error", func(t *testing.T) {
		_, err := fromAnnotation(&visionpb.AnnotateImageResponse{
			Error: &statuspb.Status{Code: 3, Message: "bad image data"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad image data")
	})
}

func TestMock(t *testing.T) {
	ctx := context.Background()

	var m Mock
	doc, err := m.ExtractDocument(ctx, "gs://b/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MimeType)

	img, err := m.DetectText(ctx, "gs://b/a.png")
	require.NoError(t, err)
	assert.Empty(t, img.Text)

	m.ImageFunc = func(context.Context, string) (*Extraction, error) {
		return nil, errors.New("quota exceeded")
	}
	_, err = m.DetectText(ctx, "gs://b/a.png")
	assert.EqualError(t, err, "quota exceeded")
}

type fakeClient struct{ closed int }

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func TestLazy_RetriesUntilBuilt(t *testing.T) {
	ctx := context.Background()
	builds := 0
	client := &fakeClient{}
	l := &lazy[*fakeClient]{build: func(context.Context) (*fakeClient, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("no credentials")
		}
		return client, nil
	}}

	require.NoError(t, l.Close(), "closing an unbuilt client is a no-op")

	_, err := l.get(ctx)
	assert.EqualError(t, err, "no credentials")

	got, err := l.get(ctx)
	require.NoError(t, err)
	assert.Same(t, client, got)

	_, err = l.get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, builds)

	require.NoError(t, l.Close())
	assert.Equal(t, 1, client.closed)
}
