package ocr

import (
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/genproto/googleapis/rpc/status"

	"github.com/asadullah4bls/evalai/internal/diagram"
)

func ann(text string, pts ...[2]int32) *visionpb.EntityAnnotation {
	var vs []*visionpb.Vertex
	for _, p := range pts {
		vs = append(vs, &visionpb.Vertex{X: p[0], Y: p[1]})
	}
	return &visionpb.EntityAnnotation{Description: text, BoundingPoly: &visionpb.BoundingPoly{Vertices: vs}}
}

func TestFragmentsFromAnnotations(t *testing.T) {
	anns := []*visionpb.EntityAnnotation{
		ann("Cell wall\nNucleus", [2]int32{0, 0}, [2]int32{300, 300}),
		ann("Cell", [2]int32{10, 20}, [2]int32{50, 20}, [2]int32{50, 35}, [2]int32{10, 35}),
		ann("  "),
		ann("wall", [2]int32{60, 22}, [2]int32{90, 34}),
		ann("orphan"),
	}

	got := fragmentsFromAnnotations(anns)
	if len(got) != 2 {
		t.Fatalf("got %d fragments, want 2: %+v", len(got), got)
	}
	if got[0].Text != "Cell" {
		t.Errorf("text = %q, want %q", got[0].Text, "Cell")
	}
	b := got[0].Box
	if b.XMin != 10 || b.YMin != 20 || b.XMax != 50 || b.YMax != 35 {
		t.Errorf("box = %+v, want {10 20 50 35}", b)
	}
	if got[1].Box.XMin != 60 || got[1].Box.YMin != 22 {
		t.Errorf("second box = %+v", got[1].Box)
	}
}

func TestFragmentsFromAnnotations_FullTextOnly(t *testing.T) {
	if got := fragmentsFromAnnotations([]*visionpb.EntityAnnotation{ann("all", [2]int32{0, 0})}); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestFragmentsFromResponse_ImageErrorIsUnreadable(t *testing.T) {
	_, err := fragmentsFromResponse(&visionpb.AnnotateImageResponse{
		Error: &status.Status{Code: 3, Message: "Bad image data."},
	})
	if !errors.Is(err, diagram.ErrUnreadableImage) {
		t.Fatalf("err = %v, want ErrUnreadableImage", err)
	}

	got, err := fragmentsFromResponse(&visionpb.AnnotateImageResponse{
		TextAnnotations: []*visionpb.EntityAnnotation{
			ann("Nucleus", [2]int32{0, 0}),
			ann("Nucleus", [2]int32{5, 5}, [2]int32{40, 15}),
		},
	})
	if err != nil || len(got) != 1 || got[0].Text != "Nucleus" {
		t.Errorf("got %+v, %v", got, err)
	}
}
