package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/asadullah4bls/evalai/internal/diagram"
	"github.com/asadullah4bls/evalai/internal/logging"
)

// PDFLoader extracts body text with ledongthuc/pdf and raw embedded images
// with pdfcpu.
type PDFLoader struct {
	log *logging.Logger
}

// NewPDFLoader creates a PDFLoader. A nil logger discards diagnostics.
func NewPDFLoader(log *logging.Logger) *PDFLoader {
	return &PDFLoader{log: logging.OrNop(log).With("component", "document")}
}

// Load reads the PDF at path. Image extraction is best effort: a failure
// is logged and the document keeps its text.
func (l *PDFLoader) Load(ctx context.Context, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text, err := PlainText(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	images, err := Images(data)
	if err != nil {
		l.log.Warn("image extraction failed", "path", path, "error", err)
		images = nil
	}

	l.log.Debug("pdf loaded", "path", path, "chars", len(text), "images", len(images))
	return &Document{ID: path, Text: Clean(text), Images: images}, nil
}

// PlainText returns the raw text content of a PDF.
func PlainText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}

// Images returns the embedded images of a PDF in page order.
func Images(data []byte) ([]diagram.Image, error) {
	conf := model.NewDefaultConfiguration()
	pages, err := api.ExtractImagesRaw(bytes.NewReader(data), nil, conf)
	if err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}

	var out []diagram.Image
	for _, page := range pages {
		objNrs := make([]int, 0, len(page))
		for nr := range page {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)

		for _, nr := range objNrs {
			img := page[nr]
			raw, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read image %s on page %d: %w", img.Name, img.PageNr, err)
			}
			out = append(out, diagram.Image{
				Source: fmt.Sprintf("page %d / %s", img.PageNr, img.Name),
				Data:   raw,
			})
		}
	}
	return out, nil
}
