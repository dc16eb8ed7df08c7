// Package document loads source documents as cleaned body text plus the
// images embedded in them.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asadullah4bls/evalai/internal/diagram"
	"github.com/asadullah4bls/evalai/internal/logging"
)

// Document is one loaded source.
type Document struct {
	ID     string
	Text   string
	Images []diagram.Image
}

// Loader loads the document named by id.
type Loader interface {
	Load(ctx context.Context, id string) (*Document, error)
}

// FileLoader loads documents from the filesystem, picking a reader by file
// extension. PDFs yield text and images; .txt and .md files yield text.
type FileLoader struct {
	pdf *PDFLoader
	log *logging.Logger
}

// NewFileLoader creates a FileLoader. A nil logger discards diagnostics.
func NewFileLoader(log *logging.Logger) *FileLoader {
	log = logging.OrNop(log).With("component", "document")
	return &FileLoader{pdf: &PDFLoader{log: log}, log: log}
}

// Load reads the file at id.
func (l *FileLoader) Load(ctx context.Context, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(id)); ext {
	case ".pdf":
		return l.pdf.Load(ctx, id)
	case ".txt", ".md", ".markdown":
		raw, err := os.ReadFile(id)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", id, err)
		}
		return &Document{ID: id, Text: Clean(string(raw))}, nil
	default:
		return nil, fmt.Errorf("unsupported document type %q: %s", ext, id)
	}
}
