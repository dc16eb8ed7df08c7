package document

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "page numbers and labels",
			in:   "Intro text.\n12\nMore text. Page 3 of 10\n",
			want: "Intro text.\nMore text.",
		},
		{
			name: "hyphenated break",
			in:   "The algo-\nrithm converges.",
			want: "The algorithm converges.",
		},
		{
			name: "soft line break",
			in:   "Gradient descent updates\nweights iteratively.",
			want: "Gradient descent updates weights iteratively.",
		},
		{
			name: "bullets and punctuation",
			in:   "• “Quoted” item – dash",
			want: `"Quoted" item - dash`,
		},
		{
			name: "ligature normalized",
			in:   "ﬁle system",
			want: "file system",
		},
		{
			name: "whitespace runs",
			in:   "A   lot\t\tof    space\n\n\n\nNext",
			want: "A lot of space\nNext",
		},
		{
			name: "trailing references",
			in:   "Body.\nReferences\n[1] Someone, 2020.\n[2] Other, 2021.",
			want: "Body.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClean_RunningHeaders(t *testing.T) {
	in := strings.Join([]string{
		"Operating Systems Notes",
		"Processes are programs in execution.",
		"Operating Systems Notes",
		"Threads share an address space.",
		"Operating Systems Notes",
		"Scheduling picks the next process.",
	}, "\n")
	got := Clean(in)
	if strings.Contains(got, "Operating Systems Notes") {
		t.Errorf("running header not removed: %q", got)
	}
	if !strings.Contains(got, "Threads share an address space.") {
		t.Errorf("body text lost: %q", got)
	}
}

func TestFileLoader_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("Paging splits memory\ninto fixed-size pages.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewFileLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.ID != path {
		t.Errorf("ID = %q", doc.ID)
	}
	if doc.Text != "Paging splits memory into fixed-size pages." {
		t.Errorf("Text = %q", doc.Text)
	}
	if len(doc.Images) != 0 {
		t.Errorf("text document has %d images", len(doc.Images))
	}
}

func TestFileLoader_Errors(t *testing.T) {
	l := NewFileLoader(nil)
	if _, err := l.Load(context.Background(), "slides.pptx"); err == nil {
		t.Error("expected unsupported type error")
	}
	if _, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing pdf")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, "notes.txt"); err == nil {
		t.Error("expected context error")
	}
}

func TestPlainText_NotAPDF(t *testing.T) {
	if _, err := PlainText([]byte("definitely not a pdf")); err == nil {
		t.Error("expected error for non-PDF bytes")
	}
}
