// Package quizgen asks the generative service for questions about a set of
// curated concepts and parses its free-text replies.
package quizgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/asadullah4bls/evalai/internal/keywords"
	"github.com/asadullah4bls/evalai/internal/llm"
	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/quiz"
)

// Generator produces quiz questions using an LLM provider.
type Generator struct {
	provider llm.Provider
	parser   *Parser
	cfg      Config
	log      *logging.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator. A nil rng seeds one randomly; a nil logger
// discards diagnostics.
func New(provider llm.Provider, cfg Config, rng *rand.Rand, log *logging.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{
		provider: provider,
		parser:   DefaultParser(),
		cfg:      cfg,
		log:      logging.OrNop(log).With("component", "quizgen"),
		rng:      rng,
	}
}

// Generate requests SAQ and MCQ batches about concepts and returns the
// parsed questions shuffled together. A batch of size zero is not requested.
func (g *Generator) Generate(ctx context.Context, concepts keywords.Curated, maxQuestions int) ([]quiz.Question, error) {
	numSAQ, numMCQ := g.cfg.Split(maxQuestions)

	var out []quiz.Question
	for _, batch := range []struct {
		typ     quiz.QuestionType
		n       int
		purpose string
	}{
		{quiz.SAQ, numSAQ, llm.PurposeQuizSAQ},
		{quiz.MCQ, numMCQ, llm.PurposeQuizMCQ},
	} {
		if batch.n == 0 {
			continue
		}
		qs, err := g.batch(llm.WithPurpose(ctx, batch.purpose), batch.typ, batch.n, concepts)
		if err != nil {
			return nil, err
		}
		out = append(out, qs...)
	}

	g.mu.Lock()
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	g.mu.Unlock()
	return out, nil
}

func (g *Generator) batch(ctx context.Context, t quiz.QuestionType, n int, concepts keywords.Curated) ([]quiz.Question, error) {
	req := llm.UserPrompt(systemPrompt, buildUserMessage(t, n, concepts), g.cfg.MaxTokens, g.cfg.Temperature)
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	res := g.parser.Parse(resp.Text, t)
	for _, d := range res.Dropped {
		g.log.Debug("unit dropped", "type", t, "unit", d.Unit, "reason", d.Reason)
	}
	if len(res.Questions) > n {
		res.Questions = res.Questions[:n]
	}
	g.log.Info("batch parsed", "type", t, "requested", n, "accepted", len(res.Questions), "dropped", len(res.Dropped))
	return res.Questions, nil
}
