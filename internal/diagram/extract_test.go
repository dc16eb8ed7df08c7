package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"
)

type fakeDetector struct {
	frags [][]Fragment
	errs  []error // per call, nil entries succeed
	err   error
	calls int
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte) ([]Fragment, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.frags) {
		return f.frags[i], nil
	}
	return nil, nil
}

// noisyPNG encodes a w x h image of varied pixels so the compressed body
// is long enough to cut in half.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i*7919 + i/13)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestExtractor_SkipsUnusableImages(t *testing.T) {
	det := &fakeDetector{frags: [][]Fragment{
		nil, // no detections
		{frag(0, 0, "Mitochondria"), frag(0, 20, "matrix")},
	}}
	ex := NewExtractor(det, DefaultConfig(), nil)

	images := []Image{
		{Source: "corrupt", Data: []byte("not an image")},
		{Source: "tiny", Data: pngBytes(t, 149, 400)},
		{Source: "blank", Data: pngBytes(t, 300, 300)},
		{Source: "labeled", Data: pngBytes(t, 300, 150)},
	}

	got, err := ex.Concepts(context.Background(), images)
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if det.calls != 2 {
		t.Errorf("detector called %d times, want 2", det.calls)
	}
	if len(got) != 1 || got[0].Text != "Mitochondria matrix" {
		t.Errorf("got %+v, want one concept %q", got, "Mitochondria matrix")
	}
}

func TestExtractor_TruncatedImageSkipped(t *testing.T) {
	full := noisyPNG(t, 200, 200)
	truncated := full[:len(full)/2]
	if _, _, err := image.DecodeConfig(bytes.NewReader(truncated)); err != nil {
		t.Fatalf("header should still parse: %v", err)
	}

	det := &fakeDetector{frags: [][]Fragment{{frag(0, 0, "Golgi"), frag(0, 20, "apparatus")}}}
	ex := NewExtractor(det, DefaultConfig(), nil)

	got, err := ex.Concepts(context.Background(), []Image{
		{Source: "p1", Data: truncated},
		{Source: "p2", Data: pngBytes(t, 200, 200)},
	})
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if det.calls != 1 {
		t.Errorf("detector called %d times, want 1", det.calls)
	}
	if len(got) != 1 || got[0].Text != "Golgi apparatus" {
		t.Errorf("got %+v, want one concept %q", got, "Golgi apparatus")
	}
}

func TestExtractor_UnreadableImageSkipped(t *testing.T) {
	det := &fakeDetector{
		errs:  []error{fmt.Errorf("vision: Bad image data: %w", ErrUnreadableImage)},
		frags: [][]Fragment{nil, {frag(0, 0, "Ribosome")}},
	}
	ex := NewExtractor(det, DefaultConfig(), nil)

	got, err := ex.Concepts(context.Background(), []Image{
		{Source: "p1", Data: pngBytes(t, 200, 200)},
		{Source: "p2", Data: pngBytes(t, 200, 200)},
	})
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if det.calls != 2 || len(got) != 1 || got[0].Text != "Ribosome" {
		t.Errorf("calls = %d, got %+v", det.calls, got)
	}
}

func TestExtractor_DetectorErrorPropagates(t *testing.T) {
	boom := errors.New("quota exceeded")
	ex := NewExtractor(&fakeDetector{err: boom}, DefaultConfig(), nil)

	_, err := ex.Concepts(context.Background(), []Image{{Source: "p1", Data: pngBytes(t, 200, 200)}})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped %v", err, boom)
	}
}

func TestTexts(t *testing.T) {
	got := Texts([]Concept{{Text: "a"}, {Text: "b c"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b c" {
		t.Errorf("got %v", got)
	}
}
