package keywords

import (
	"context"
	"fmt"
	"slices"

	"github.com/asadullah4bls/evalai/internal/logging"
)

// Curated is the de-duplicated concept set for one document.
type Curated struct {
	Text    []string
	Diagram []string
}

// All returns the text phrases followed by the diagram phrases.
func (c Curated) All() []string {
	out := make([]string, 0, len(c.Text)+len(c.Diagram))
	out = append(out, c.Text...)
	return append(out, c.Diagram...)
}

// Len returns the number of curated phrases.
func (c Curated) Len() int { return len(c.Text) + len(c.Diagram) }

// Deduplicator drops phrases that are semantically redundant with an
// earlier, higher-ranked phrase of the same source.
type Deduplicator struct {
	embedder Embedder
	cfg      Config
	log      *logging.Logger
}

// NewDeduplicator creates a Deduplicator. A nil logger discards diagnostics.
func NewDeduplicator(embedder Embedder, cfg Config, log *logging.Logger) *Deduplicator {
	return &Deduplicator{
		embedder: embedder,
		cfg:      cfg,
		log:      logging.OrNop(log).With("component", "keywords"),
	}
}

// Curate splits candidates by source, filters each list with its own
// threshold and applies the diagram floor. Candidates are expected in
// descending score order.
func (d *Deduplicator) Curate(ctx context.Context, candidates []Scored) (Curated, error) {
	var text, diagram []Scored
	for _, c := range candidates {
		if c.Source == SourceDiagram {
			diagram = append(diagram, c)
		} else {
			text = append(text, c)
		}
	}

	var out Curated
	var err error
	if out.Text, err = d.Filter(ctx, phrases(text), d.cfg.TextThreshold); err != nil {
		return Curated{}, fmt.Errorf("text keyphrases: %w", err)
	}
	if out.Diagram, err = d.Filter(ctx, phrases(diagram), d.cfg.DiagramThreshold); err != nil {
		return Curated{}, fmt.Errorf("diagram keyphrases: %w", err)
	}

	if len(out.Diagram) < d.cfg.MinDiagram && len(diagram) >= d.cfg.MinDiagram {
		out.Diagram = topRaw(diagram, d.cfg.MinDiagram)
		d.log.Debug("diagram floor applied", "kept", len(out.Diagram), "raw", len(diagram))
	}

	d.log.Debug("keyphrases curated",
		"text_in", len(text), "text_out", len(out.Text),
		"diagram_in", len(diagram), "diagram_out", len(out.Diagram))
	return out, nil
}

// Filter normalizes phrases, drops exact duplicates and keeps each phrase
// whose similarity to every already-kept phrase is below threshold. The
// first phrase is always kept. Surviving phrases are embedded in one call.
func (d *Deduplicator) Filter(ctx context.Context, in []string, threshold float64) ([]string, error) {
	cleaned := uniqueNormalized(in)
	if len(cleaned) <= 1 {
		return cleaned, nil
	}

	vecs, err := d.embedder.Embed(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(cleaned) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d phrases", len(vecs), len(cleaned))
	}

	kept := []int{0}
	for i := 1; i < len(cleaned); i++ {
		redundant := false
		for _, j := range kept {
			if Cosine(vecs[i], vecs[j]) >= threshold {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, i)
		}
	}

	out := make([]string, len(kept))
	for i, k := range kept {
		out[i] = cleaned[k]
	}
	return out, nil
}

func uniqueNormalized(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, p := range in {
		n := Normalize(p)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func phrases(scored []Scored) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Phrase
	}
	return out
}

// topRaw returns the n highest-scoring raw phrases, earlier entries first
// on ties.
func topRaw(scored []Scored, n int) []string {
	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, byScoreDesc)
	return phrases(sorted[:min(n, len(sorted))])
}

func byScoreDesc(a, b Scored) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	return 0
}
