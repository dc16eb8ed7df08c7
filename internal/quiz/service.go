package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asadullah4bls/evalai/internal/logging"
)

// Options wires a Service. Store and Source are required.
type Options struct {
	Store  ArtifactStore
	Source QuestionSource
	Index  AttemptIndex // optional
	Logger *logging.Logger

	// Rand drives fair trimming. Defaults to a randomly seeded PCG.
	Rand *rand.Rand
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
}

// Service synthesizes, caches, and scores quizzes.
type Service struct {
	store  ArtifactStore
	source QuestionSource
	index  AttemptIndex
	log    *logging.Logger
	now    func() time.Time
	newID  func() string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("quiz: store is required")
	}
	if opts.Source == nil {
		return nil, errors.New("quiz: question source is required")
	}
	s := &Service{
		store:  opts.Store,
		source: opts.Source,
		index:  opts.Index,
		log:    logging.OrNop(opts.Logger).With("component", "quiz"),
		rng:    opts.Rand,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s, nil
}

// Synthesize returns the quiz for documentIDs, generating and caching it
// when none exists. At most quota questions are kept, except that every
// document that produced a question keeps at least one. An existing
// artifact is returned unchanged without any generation.
func (s *Service) Synthesize(ctx context.Context, documentIDs []string, quota int) (*Artifact, error) {
	sources, err := NormalizeSources(documentIDs)
	if err != nil {
		return nil, err
	}
	if quota < 1 {
		return nil, invalidf("quota must be >= 1, got %d", quota)
	}
	key := ContentKey(sources)
	log := s.log.With("content_key", key)

	if a, err := s.cached(ctx, key); err != nil {
		return nil, err
	} else if a != nil {
		log.Info("quiz cache hit")
		return a, nil
	}

	release, err := s.store.Claim(ctx, key)
	if err != nil {
		return nil, Collaborator(StageStore, fmt.Errorf("claim %s: %w", key, err))
	}
	defer release()

	// Another request may have finished while we waited for the claim.
	if a, err := s.cached(ctx, key); err != nil {
		return nil, err
	} else if a != nil {
		log.Info("quiz produced by concurrent request")
		return a, nil
	}

	perDoc := make([][]Question, 0, len(sources))
	for _, id := range sources {
		qs, err := s.source.Questions(ctx, id, quota)
		if err != nil {
			return nil, Collaborator(StageGeneration, fmt.Errorf("document %s: %w", id, err))
		}
		if len(qs) == 0 {
			log.Warn("document produced no valid questions", "document", id)
		}
		perDoc = append(perDoc, qs)
	}

	s.rngMu.Lock()
	trimmed := FairTrim(perDoc, quota, s.rng)
	s.rngMu.Unlock()
	questions := Flatten(trimmed)
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	if len(questions) < len(Flatten(perDoc)) {
		log.Debug("fair trim applied", "before", len(Flatten(perDoc)), "after", len(questions))
	}
	AssignIDs(questions)

	a := &Artifact{
		SourceIdentity: sources,
		ContentKey:     key,
		Questions:      questions,
		CreatedAt:      s.now().UTC().Truncate(time.Millisecond),
	}

	switch err := s.store.Create(ctx, a); {
	case err == nil:
		mcq, saq := Count(questions)
		log.Info("quiz stored", "questions", len(questions), "mcq", mcq, "saq", saq)
		return a, nil
	case errors.Is(err, ErrExists):
		existing, gerr := s.store.Get(ctx, key)
		if gerr != nil {
			return nil, Collaborator(StageStore, gerr)
		}
		return existing, nil
	default:
		return nil, Collaborator(StageStore, err)
	}
}

// cached returns the stored artifact, (nil, nil) when absent, or a store
// error.
func (s *Service) cached(ctx context.Context, key string) (*Artifact, error) {
	a, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		return a, nil
	case errors.Is(err, ErrNotFound):
		return nil, nil
	default:
		return nil, Collaborator(StageStore, err)
	}
}

// Load returns the cached quiz for documentIDs, or ErrNotFound.
func (s *Service) Load(ctx context.Context, documentIDs []string) (*Artifact, error) {
	sources, err := NormalizeSources(documentIDs)
	if err != nil {
		return nil, err
	}
	a, err := s.cached(ctx, ContentKey(sources))
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("quiz for %v: %w", sources, ErrNotFound)
	}
	return a, nil
}

// SubmitAttempt scores an attempt against the cached quiz for documentIDs
// and stores it under a fresh id.
func (s *Service) SubmitAttempt(ctx context.Context, documentIDs []string, mcqAnswers, saqAnswers map[string]string) (*Summary, error) {
	a, err := s.Load(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	att := Score(a, s.newID(), mcqAnswers, saqAnswers, s.now().UTC())
	if err := s.store.AppendAttempt(ctx, att); err != nil {
		return nil, Collaborator(StageStore, fmt.Errorf("store attempt: %w", err))
	}

	if s.index != nil {
		if err := s.index.IndexAttempt(ctx, att); err != nil {
			s.log.Warn("failed to index attempt", "attempt_id", att.AttemptID, "error", err)
		}
	}

	s.log.Info("attempt stored", "attempt_id", att.AttemptID, "content_key", att.ContentKey,
		"mcq_score", att.MCQScore, "mcq_total", att.MCQTotal, "saq_pending", len(att.SAQAnswers))
	return Summarize(att), nil
}
