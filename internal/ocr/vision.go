// Package ocr adapts Google Cloud Vision text detection to diagram.Detector.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/asadullah4bls/evalai/internal/diagram"
)

// VisionDetector detects words with the TEXT_DETECTION feature.
type VisionDetector struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionDetector creates a detector. An empty credentialsFile falls back
// to application default credentials.
func NewVisionDetector(ctx context.Context, credentialsFile string) (*VisionDetector, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionDetector{client: c}, nil
}

// Close releases the underlying connection.
func (d *VisionDetector) Close() error {
	return d.client.Close()
}

// Detect returns one fragment per detected word.
func (d *VisionDetector) Detect(ctx context.Context, image []byte) ([]diagram.Fragment, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
		}},
	}
	resp, err := d.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, nil
	}
	return fragmentsFromResponse(resp.GetResponses()[0])
}

// fragmentsFromResponse reads one per-image result. A per-image error
// status means Vision could not use that image, so it is reported as
// diagram.ErrUnreadableImage; RPC failures never reach here.
func fragmentsFromResponse(r *visionpb.AnnotateImageResponse) ([]diagram.Fragment, error) {
	if st := r.GetError(); st != nil && st.GetCode() != 0 {
		return nil, fmt.Errorf("vision: %s: %w", st.GetMessage(), diagram.ErrUnreadableImage)
	}
	return fragmentsFromAnnotations(r.GetTextAnnotations()), nil
}

// fragmentsFromAnnotations converts word annotations to fragments. The first
// annotation of a TEXT_DETECTION response is the full text block and is
// skipped.
func fragmentsFromAnnotations(anns []*visionpb.EntityAnnotation) []diagram.Fragment {
	if len(anns) <= 1 {
		return nil
	}
	out := make([]diagram.Fragment, 0, len(anns)-1)
	for _, a := range anns[1:] {
		text := strings.TrimSpace(a.GetDescription())
		if text == "" {
			continue
		}
		box, err := boxFromVertices(a.GetBoundingPoly().GetVertices())
		if err != nil {
			continue
		}
		out = append(out, diagram.Fragment{
			Box:        box,
			Text:       text,
			Confidence: float64(a.GetConfidence()),
		})
	}
	return out
}

func boxFromVertices(vs []*visionpb.Vertex) (diagram.BoundingBox, error) {
	if len(vs) == 0 {
		return diagram.BoundingBox{}, errors.New("no vertices")
	}
	b := diagram.BoundingBox{
		XMin: math.Inf(1), YMin: math.Inf(1),
		XMax: math.Inf(-1), YMax: math.Inf(-1),
	}
	for _, v := range vs {
		x, y := float64(v.GetX()), float64(v.GetY())
		b.XMin = math.Min(b.XMin, x)
		b.YMin = math.Min(b.YMin, y)
		b.XMax = math.Max(b.XMax, x)
		b.YMax = math.Max(b.YMax, y)
	}
	return b, nil
}
