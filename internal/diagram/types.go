// Package diagram turns OCR fragments detected on diagram images into
// reading-order concept strings.
package diagram

import (
	"context"
	"errors"
)

// BoundingBox is an axis-aligned box in image pixel coordinates.
type BoundingBox struct {
	XMin, YMin, XMax, YMax float64
}

// Fragment is one OCR detection on one image.
type Fragment struct {
	Box        BoundingBox
	Text       string
	Confidence float64
}

// Concept is the text of one spatial cluster of fragments.
type Concept struct {
	Text string
}

// Image is an encoded image to run OCR on.
type Image struct {
	Source string // e.g. "page 3 / Im1"
	Data   []byte
}

// ErrUnreadableImage is returned by a Detector that could not read one
// image. The image is skipped; any other detector error is fatal.
var ErrUnreadableImage = errors.New("unreadable image")

// Detector runs OCR over one encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Fragment, error)
}

// Config tunes clustering and the image size gate.
type Config struct {
	// Epsilon is the neighborhood radius in pixels between fragment corners.
	Epsilon float64 `toml:"epsilon"`

	// MinSamples is the neighborhood size (including the point itself)
	// that makes a fragment a core point. 1 means every fragment is core.
	MinSamples int `toml:"min_samples"`

	// Images narrower or shorter than these are skipped.
	MinWidth  int `toml:"min_width"`
	MinHeight int `toml:"min_height"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Epsilon:    60,
		MinSamples: 1,
		MinWidth:   150,
		MinHeight:  150,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.Epsilon <= 0 {
		return errors.New("diagram: epsilon must be > 0")
	}
	if c.MinSamples < 1 {
		return errors.New("diagram: min_samples must be >= 1")
	}
	if c.MinWidth < 0 || c.MinHeight < 0 {
		return errors.New("diagram: minimum image size must be >= 0")
	}
	return nil
}
