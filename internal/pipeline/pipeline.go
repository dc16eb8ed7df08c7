// Package pipeline wires document loading, diagram OCR, keyphrase curation
// and question generation into a quiz.QuestionSource.
package pipeline

import (
	"context"
	"errors"

	"github.com/asadullah4bls/evalai/internal/diagram"
	"github.com/asadullah4bls/evalai/internal/document"
	"github.com/asadullah4bls/evalai/internal/keywords"
	"github.com/asadullah4bls/evalai/internal/llm"
	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/quiz"
	"github.com/asadullah4bls/evalai/internal/quizgen"
)

// Options configures a Pipeline. Diagrams may be nil, in which case
// document images are ignored.
type Options struct {
	Loader    document.Loader
	Diagrams  *diagram.Extractor
	Extractor *keywords.Extractor
	Curator   *keywords.Deduplicator
	Generator *quizgen.Generator
	Logger    *logging.Logger
}

// Pipeline produces candidate questions for one document at a time.
type Pipeline struct {
	loader    document.Loader
	diagrams  *diagram.Extractor
	extractor *keywords.Extractor
	curator   *keywords.Deduplicator
	generator *quizgen.Generator
	log       *logging.Logger
}

// New checks opts and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Loader == nil:
		return nil, errors.New("pipeline: loader is required")
	case opts.Extractor == nil:
		return nil, errors.New("pipeline: keyphrase extractor is required")
	case opts.Curator == nil:
		return nil, errors.New("pipeline: deduplicator is required")
	case opts.Generator == nil:
		return nil, errors.New("pipeline: generator is required")
	}
	return &Pipeline{
		loader:    opts.Loader,
		diagrams:  opts.Diagrams,
		extractor: opts.Extractor,
		curator:   opts.Curator,
		generator: opts.Generator,
		log:       logging.OrNop(opts.Logger).With("component", "pipeline"),
	}, nil
}

// Questions loads documentID, curates its concepts and generates up to
// maxQuestions questions about them. Collaborator failures come back as
// *quiz.CollaboratorError naming the failing stage. A document with no
// curated concepts yields no questions and no generation call.
func (p *Pipeline) Questions(ctx context.Context, documentID string, maxQuestions int) ([]quiz.Question, error) {
	log := p.log.With("document", documentID)

	doc, err := p.loader.Load(ctx, documentID)
	if err != nil {
		return nil, quiz.Collaborator(quiz.StageDocument, err)
	}

	var concepts []string
	switch {
	case len(doc.Images) == 0:
	case p.diagrams == nil:
		log.Debug("no OCR configured; ignoring images", "images", len(doc.Images))
	default:
		cs, err := p.diagrams.Concepts(ctx, doc.Images)
		if err != nil {
			return nil, quiz.Collaborator(quiz.StageOCR, err)
		}
		concepts = diagram.Texts(cs)
	}

	extracted, err := p.extractor.Extract(llm.WithPurpose(ctx, llm.PurposeKeyphrase), doc.Text, concepts)
	if err != nil {
		return nil, quiz.Collaborator(quiz.StageKeyphrase, err)
	}

	curated, err := p.curator.Curate(llm.WithPurpose(ctx, llm.PurposeDedup), extracted.Merged())
	if err != nil {
		return nil, quiz.Collaborator(quiz.StageEmbedding, err)
	}
	log.Info("concepts curated",
		"diagram_concepts", len(concepts),
		"text", len(curated.Text), "diagram", len(curated.Diagram))

	if curated.Len() == 0 {
		log.Warn("no concepts to ask about")
		return nil, nil
	}

	qs, err := p.generator.Generate(ctx, curated, maxQuestions)
	if err != nil {
		return nil, quiz.Collaborator(quiz.StageGeneration, err)
	}
	return qs, nil
}
