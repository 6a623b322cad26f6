package extract

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// Vision runs text detection on stored images.
type Vision struct {
	client *vision.ImageAnnotatorClient
}

func NewVision(ctx context.Context) (*Vision, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, credentialOptions(ctx, vision.DefaultAuthScopes()...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vision client: %w", err)
	}
	return &Vision{client: client}, nil
}

// DetectText reads the image straight from uri (gs://...).
func (v *Vision) DetectText(ctx context.Context, uri string) (*Extraction, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{
				Source: &visionpb.ImageSource{ImageUri: uri},
			},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
		}},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate image: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("vision returned no responses for %s", uri)
	}

	return fromAnnotation(resp.GetResponses()[0])
}

func (v *Vision) Close() error {
	return v.client.Close()
}

func fromAnnotation(r *visionpb.AnnotateImageResponse) (*Extraction, error) {
	if st := r.GetError(); st != nil && st.GetCode() != 0 {
		return nil, fmt.Errorf("vision error %d: %s", st.GetCode(), st.GetMessage())
	}

	out := &Extraction{}
	if full := r.GetFullTextAnnotation(); full != nil {
		out.Text = full.GetText()
		out.Pages = len(full.GetPages())
	}
	// The first text annotation holds the whole detected block.
	if out.Text == "" && len(r.GetTextAnnotations()) > 0 {
		out.Text = r.GetTextAnnotations()[0].GetDescription()
	}
	return out, nil
}
