package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	artifacts map[string][]byte
	attempts  map[string]*Attempt
	claims    map[string]*sync.Mutex
	getErr    error
	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		artifacts: map[string][]byte{},
		attempts:  map[string]*Attempt{},
		claims:    map[string]*sync.Mutex{},
	}
}

func (m *memStore) Get(_ context.Context, key string) (*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	raw, ok := m.artifacts[key]
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeArtifact(raw)
}

func (m *memStore) Create(_ context.Context, a *Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.artifacts[a.ContentKey]; ok {
		return ErrExists
	}
	raw, err := EncodeArtifact(a)
	if err != nil {
		return err
	}
	m.artifacts[a.ContentKey] = raw
	return nil
}

func (m *memStore) Claim(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	l, ok := m.claims[key]
	if !ok {
		l = &sync.Mutex{}
		m.claims[key] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock, nil
}

func (m *memStore) AppendAttempt(_ context.Context, a *Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[a.AttemptID]; ok {
		return ErrExists
	}
	m.attempts[a.AttemptID] = a
	return nil
}

type fakeSource struct {
	mu    sync.Mutex
	byDoc map[string][]Question
	err   error
	calls int
}

func (f *fakeSource) Questions(_ context.Context, id string, _ int) ([]Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]Question(nil), f.byDoc[id]...), nil
}

func mcq(q, correct string) Question {
	return Question{Type: MCQ, Question: q, CorrectAnswer: correct,
		Options: map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"}}
}

func saq(q string) Question {
	return Question{Type: SAQ, Question: q, Answer: "answer to " + q}
}

func newTestService(t *testing.T, st ArtifactStore, src QuestionSource) *Service {
	t.Helper()
	n := 0
	s, err := NewService(Options{
		Store:  st,
		Source: src,
		Rand:   testRand(),
		Now:    func() time.Time { return time.Date(2026, 5, 4, 3, 2, 1, 123456789, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("attempt-%d", n)
		},
	})
	require.NoError(t, err)
	return s
}

func TestService_SynthesizeTrimsAndAssignsIDs(t *testing.T) {
	src := &fakeSource{byDoc: map[string][]Question{
		"a.pdf": {saq("a1"), saq("a2"), saq("a3"), saq("a4"), mcq("a5", "A"), mcq("a6", "B")},
		"b.pdf": {saq("b1"), mcq("b2", "C")},
		"c.pdf": {saq("c1")},
	}}
	s := newTestService(t, newMemStore(), src)

	a, err := s.Synthesize(context.Background(), []string{"c.pdf", "a.pdf", "b.pdf"}, 5)
	require.NoError(t, err)

	assert.Len(t, a.Questions, 5)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, a.SourceIdentity)
	assert.Equal(t, ContentKey(a.SourceIdentity), a.ContentKey)
	for i, q := range a.Questions {
		assert.Equal(t, PositionalID(i), q.ID)
	}
	last := a.Questions[len(a.Questions)-1]
	assert.Equal(t, "c1", last.Question, "smallest document keeps its question")
}

func TestService_SynthesizeIsIdempotent(t *testing.T) {
	src := &fakeSource{byDoc: map[string][]Question{
		"x.pdf": {saq("one"), saq("two"), mcq("three", "D")},
	}}
	s := newTestService(t, newMemStore(), src)
	ctx := context.Background()

	first, err := s.Synthesize(ctx, []string{"x.pdf"}, 2)
	require.NoError(t, err)
	second, err := s.Synthesize(ctx, []string{"x.pdf"}, 2)
	require.NoError(t, err)

	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	assert.Equal(t, string(b1), string(b2))
	assert.Equal(t, 1, src.calls, "cached artifact must not trigger generation")

	// A different quota does not regenerate either.
	third, err := s.Synthesize(ctx, []string{"x.pdf"}, 10)
	require.NoError(t, err)
	assert.Len(t, third.Questions, 2)
	assert.Equal(t, 1, src.calls)
}

func TestService_SynthesizeEmptyResult(t *testing.T) {
	st := newMemStore()
	src := &fakeSource{byDoc: map[string][]Question{}}
	s := newTestService(t, st, src)

	_, err := s.Synthesize(context.Background(), []string{"empty.pdf"}, 5)
	require.ErrorIs(t, err, ErrEmptyQuiz)
	assert.Empty(t, st.artifacts, "no artifact may be cached for an empty result")
}

func TestService_SynthesizeBadInput(t *testing.T) {
	s := newTestService(t, newMemStore(), &fakeSource{})
	ctx := context.Background()

	_, err := s.Synthesize(ctx, nil, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Synthesize(ctx, []string{"a.pdf"}, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_SynthesizeCollaboratorFailure(t *testing.T) {
	boom := errors.New("model overloaded")
	s := newTestService(t, newMemStore(), &fakeSource{err: boom})

	_, err := s.Synthesize(context.Background(), []string{"a.pdf"}, 5)
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StageGeneration, ce.Stage)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrEmptyQuiz)
}

func TestService_SynthesizeStoreFailure(t *testing.T) {
	st := newMemStore()
	st.getErr = errors.New("disk gone")
	s := newTestService(t, st, &fakeSource{})

	_, err := s.Synthesize(context.Background(), []string{"a.pdf"}, 5)
	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StageStore, ce.Stage)
}

func TestService_SynthesizeLostCreateRaceReturnsWinner(t *testing.T) {
	st := newMemStore()
	src := &fakeSource{byDoc: map[string][]Question{"a.pdf": {saq("mine")}}}
	s := newTestService(t, st, src)

	key := ContentKey([]string{"a.pdf"})
	winner := &Artifact{
		SourceIdentity: []string{"a.pdf"},
		ContentKey:     key,
		Questions:      []Question{{ID: "q_0", Type: SAQ, Question: "theirs", Answer: "x"}},
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	// Source writes the winner mid-generation, as a concurrent process would.
	racing := &racingSource{inner: src, store: st, winner: winner}
	s.source = racing

	got, err := s.Synthesize(context.Background(), []string{"a.pdf"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "theirs", got.Questions[0].Question)
}

type racingSource struct {
	inner  QuestionSource
	store  *memStore
	winner *Artifact
}

func (r *racingSource) Questions(ctx context.Context, id string, n int) ([]Question, error) {
	if err := r.store.Create(ctx, r.winner); err != nil {
		return nil, err
	}
	return r.inner.Questions(ctx, id, n)
}

func TestService_ConcurrentSynthesizeGeneratesOnce(t *testing.T) {
	src := &fakeSource{byDoc: map[string][]Question{"a.pdf": {saq("q1"), saq("q2")}}}
	s := newTestService(t, newMemStore(), &slowSource{inner: src})

	var wg sync.WaitGroup
	results := make([]*Artifact, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.Synthesize(context.Background(), []string{"a.pdf"}, 5)
			assert.NoError(t, err)
			results[i] = a
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls)
	for _, a := range results {
		require.NotNil(t, a)
		assert.Equal(t, results[0].CreatedAt, a.CreatedAt)
	}
}

type slowSource struct{ inner *fakeSource }

func (s *slowSource) Questions(ctx context.Context, id string, n int) ([]Question, error) {
	time.Sleep(5 * time.Millisecond)
	return s.inner.Questions(ctx, id, n)
}

func TestService_SubmitAttempt(t *testing.T) {
	st := newMemStore()
	src := &fakeSource{byDoc: map[string][]Question{
		"a.pdf": {mcq("m1", "A"), saq("s1"), mcq("m2", "C")},
	}}
	s := newTestService(t, st, src)
	ctx := context.Background()

	a, err := s.Synthesize(ctx, []string{"a.pdf"}, 10)
	require.NoError(t, err)

	answers := map[string]string{}
	for _, q := range a.Questions {
		if q.Type == MCQ {
			answers[q.ID] = q.CorrectAnswer
		}
	}

	sum, err := s.SubmitAttempt(ctx, []string{"a.pdf"}, answers, map[string]string{"q_1": "because"})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.MCQScore)
	assert.Equal(t, sum.MCQTotal, sum.MCQScore)
	assert.Equal(t, 1, sum.SAQPending)

	empty, err := s.SubmitAttempt(ctx, []string{"a.pdf"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.MCQScore)
	assert.Equal(t, 2, empty.MCQTotal)

	assert.NotEqual(t, sum.AttemptID, empty.AttemptID)
	assert.Len(t, st.attempts, 2)
	assert.Equal(t, SAQPending, st.attempts[sum.AttemptID].SAQStatus)
}

func TestService_SubmitAttemptErrors(t *testing.T) {
	s := newTestService(t, newMemStore(), &fakeSource{})
	ctx := context.Background()

	_, err := s.SubmitAttempt(ctx, []string{""}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.SubmitAttempt(ctx, []string{"never-generated.pdf"}, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

type recordingIndex struct{ got []*Attempt }

func (r *recordingIndex) IndexAttempt(_ context.Context, a *Attempt) error {
	r.got = append(r.got, a)
	return errors.New("index offline")
}

func TestService_IndexFailureDoesNotFailSubmission(t *testing.T) {
	st := newMemStore()
	idx := &recordingIndex{}
	s, err := NewService(Options{
		Store:  st,
		Source: &fakeSource{byDoc: map[string][]Question{"a.pdf": {saq("s")}}},
		Index:  idx,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Synthesize(ctx, []string{"a.pdf"}, 3)
	require.NoError(t, err)
	_, err = s.SubmitAttempt(ctx, []string{"a.pdf"}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, idx.got, 1)
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(Options{Source: &fakeSource{}})
	assert.Error(t, err)
	_, err = NewService(Options{Store: newMemStore()})
	assert.Error(t, err)
}
