package keywords

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Scorer ranks the n-grams of a document by embedding similarity to the
// document itself.
type Scorer struct {
	embedder         Embedder
	maxCandidates    int
	maxDocumentChars int
}

// NewScorer creates a Scorer using the candidate and truncation limits of
// cfg.
func NewScorer(embedder Embedder, cfg ExtractConfig) *Scorer {
	return &Scorer{
		embedder:         embedder,
		maxCandidates:    cfg.MaxCandidates,
		maxDocumentChars: cfg.MaxDocumentChars,
	}
}

// Score returns up to topN candidate phrases of 1..maxNGram words, highest
// score first. Document and candidates are embedded in one call.
func (s *Scorer) Score(ctx context.Context, text string, topN, maxNGram int) ([]Scored, error) {
	cands := Candidates(Tokenize(text), maxNGram, s.maxCandidates)
	if len(cands) == 0 || topN < 1 {
		return nil, nil
	}

	inputs := make([]string, 0, len(cands)+1)
	inputs = append(inputs, truncateRunes(strings.TrimSpace(text), s.maxDocumentChars))
	inputs = append(inputs, cands...)

	vecs, err := s.embedder.Embed(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vecs), len(inputs))
	}

	doc := vecs[0]
	scored := make([]Scored, len(cands))
	for i, c := range cands {
		scored[i] = Scored{Phrase: c, Score: Cosine(doc, vecs[i+1])}
	}
	slices.SortStableFunc(scored, byScoreDesc)
	return scored[:min(topN, len(scored))], nil
}

// Candidates forms the contiguous n-grams (1..maxNGram) of tokens and keeps
// the limit most frequent, earlier first occurrence winning ties. The result
// is in first-occurrence order.
func Candidates(tokens []string, maxNGram, limit int) []string {
	type cand struct {
		phrase string
		count  int
		first  int
	}
	index := make(map[string]int)
	var all []cand
	for i := range tokens {
		for n := 1; n <= maxNGram && i+n <= len(tokens); n++ {
			p := strings.Join(tokens[i:i+n], " ")
			if k, ok := index[p]; ok {
				all[k].count++
				continue
			}
			index[p] = len(all)
			all = append(all, cand{phrase: p, count: 1, first: len(all)})
		}
	}

	if limit > 0 && len(all) > limit {
		slices.SortStableFunc(all, func(a, b cand) int { return b.count - a.count })
		all = all[:limit]
		slices.SortFunc(all, func(a, b cand) int { return a.first - b.first })
	}

	out := make([]string, len(all))
	for i, c := range all {
		out[i] = c.phrase
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
