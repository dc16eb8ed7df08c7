package keywords

import (
	"context"
	"slices"
	"strings"

	"github.com/asadullah4bls/evalai/internal/logging"
)

// Extraction holds the scored keyphrases of one document per source, each
// in descending score order.
type Extraction struct {
	Text    []Scored
	Diagram []Scored
}

// Merged returns one list with a single entry per phrase, highest score
// first. A phrase found in both sources keeps its text entry unless the
// diagram score is higher.
func (e Extraction) Merged() []Scored {
	byPhrase := make(map[string]int)
	var out []Scored
	for _, list := range [][]Scored{e.Text, e.Diagram} {
		for _, s := range list {
			if k, ok := byPhrase[s.Phrase]; ok {
				if s.Score > out[k].Score {
					out[k] = s
				}
				continue
			}
			byPhrase[s.Phrase] = len(out)
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, byScoreDesc)
	return out
}

// Extractor scores body text and diagram concepts separately so neither
// source dominates the other.
type Extractor struct {
	scorer *Scorer
	cfg    ExtractConfig
	log    *logging.Logger
}

// NewExtractor creates an Extractor. A nil logger discards diagnostics.
func NewExtractor(embedder Embedder, cfg ExtractConfig, log *logging.Logger) *Extractor {
	return &Extractor{
		scorer: NewScorer(embedder, cfg),
		cfg:    cfg,
		log:    logging.OrNop(log).With("component", "keywords"),
	}
}

// Extract scores text and the newline-joined diagram concepts.
func (e *Extractor) Extract(ctx context.Context, text string, concepts []string) (Extraction, error) {
	var out Extraction

	if strings.TrimSpace(text) != "" {
		scored, err := e.scorer.Score(ctx, text, e.cfg.TextTopN, e.cfg.MaxNGram)
		if err != nil {
			return Extraction{}, err
		}
		for _, s := range scored {
			if s.Score >= e.cfg.TextMinScore {
				s.Source = SourceText
				out.Text = append(out.Text, s)
			}
		}
	}

	diagramText := strings.Join(concepts, "\n")
	if strings.TrimSpace(diagramText) != "" {
		scored, err := e.scorer.Score(ctx, diagramText, e.cfg.DiagramTopN, e.cfg.MaxNGram)
		if err != nil {
			return Extraction{}, err
		}
		for i := range scored {
			scored[i].Source = SourceDiagram
		}
		for _, s := range scored {
			if s.Score >= e.cfg.DiagramMinScore {
				out.Diagram = append(out.Diagram, s)
			}
		}
		if len(out.Diagram) < e.cfg.DiagramKeep {
			out.Diagram = scored[:min(e.cfg.DiagramKeep, len(scored))]
		}
	}

	e.log.Debug("keyphrases extracted", "text", len(out.Text), "diagram", len(out.Diagram))
	return out, nil
}
