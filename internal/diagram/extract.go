package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	// Decoders for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/asadullah4bls/evalai/internal/logging"
)

// Skip reasons reported in logs.
const (
	SkipDecodeFailed = "decode_failed"
	SkipTooSmall     = "too_small"
	SkipNoDetections = "no_detections"
)

// Extractor runs OCR on a document's images and clusters the detections.
type Extractor struct {
	detector Detector
	cfg      Config
	log      *logging.Logger
}

// NewExtractor creates an Extractor. A nil logger discards diagnostics.
func NewExtractor(detector Detector, cfg Config, log *logging.Logger) *Extractor {
	return &Extractor{
		detector: detector,
		cfg:      cfg,
		log:      logging.OrNop(log).With("component", "diagram"),
	}
}

// Concepts returns the concepts of every usable image, image by image.
// Images that fail to decode in full, are undersized, are rejected by the
// detector as unreadable, or carry no text are skipped. Any other detector
// error is returned to the caller.
func (e *Extractor) Concepts(ctx context.Context, images []Image) ([]Concept, error) {
	var out []Concept
	for _, img := range images {
		// A full decode catches truncated bodies behind an intact header.
		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		if err != nil {
			e.log.Debug("skipping image", "source", img.Source, "reason", SkipDecodeFailed, "error", err)
			continue
		}
		size := decoded.Bounds().Size()
		if size.X < e.cfg.MinWidth || size.Y < e.cfg.MinHeight {
			e.log.Debug("skipping image", "source", img.Source, "reason", SkipTooSmall,
				"width", size.X, "height", size.Y)
			continue
		}

		frags, err := e.detector.Detect(ctx, img.Data)
		if errors.Is(err, ErrUnreadableImage) {
			e.log.Debug("skipping image", "source", img.Source, "reason", SkipDecodeFailed, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("ocr %s: %w", img.Source, err)
		}
		if len(frags) == 0 {
			e.log.Debug("skipping image", "source", img.Source, "reason", SkipNoDetections)
			continue
		}

		concepts := Cluster(frags, e.cfg)
		e.log.Debug("clustered image", "source", img.Source, "fragments", len(frags), "concepts", len(concepts))
		out = append(out, concepts...)
	}
	return out, nil
}

// Texts flattens concepts to their strings.
func Texts(concepts []Concept) []string {
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = c.Text
	}
	return out
}
