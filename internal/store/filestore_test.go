package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

func testArtifact(key string) *quiz.Artifact {
	return &quiz.Artifact{
		SourceIdentity: []string{"notes.pdf"},
		ContentKey:     key,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Questions: []quiz.Question{
			{ID: "q_0", Type: quiz.SAQ, Question: "What is a mutex?", Answer: "A lock.", Explanation: "Mutual exclusion."},
			{
				ID: "q_1", Type: quiz.MCQ, Question: "Which is a queue?",
				Options:       map[string]string{"A": "FIFO", "B": "LIFO", "C": "Tree", "D": "Graph"},
				CorrectAnswer: "A", Explanation: "First in first out.",
			},
		},
	}
}

// testKey returns a well-formed content key for name.
func testKey(name string) string {
	return quiz.ContentKey([]string{name})
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestFileStore_CreateGet(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, testKey("k1"))
	require.ErrorIs(t, err, quiz.ErrNotFound)

	want := testArtifact(testKey("k1"))
	require.NoError(t, s.Create(ctx, want))

	got, err := s.Get(ctx, testKey("k1"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_CreateNeverOverwrites(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, testArtifact(testKey("k1"))))

	other := testArtifact(testKey("k1"))
	other.Questions = other.Questions[:1]
	err := s.Create(ctx, other)
	require.ErrorIs(t, err, quiz.ErrExists)

	got, err := s.Get(ctx, testKey("k1"))
	require.NoError(t, err)
	assert.Len(t, got.Questions, 2)
}

func TestFileStore_CreateLeavesNoTempFiles(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, testArtifact(testKey("k1"))))
	_ = s.Create(ctx, testArtifact(testKey("k1")))

	entries, err := os.ReadDir(filepath.Join(s.root, quizzesDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testKey("k1")+".json", entries[0].Name())
}

func TestFileStore_ConcurrentCreateOneWinner(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	var wins, exists atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Create(ctx, testArtifact(testKey("race")))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, quiz.ErrExists):
				exists.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(7), exists.Load())
}

func TestFileStore_GetRejectsCorruptArtifact(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.WriteFile(s.artifactPath(testKey("bad")), []byte(`{"questions": "nope"}`), 0o644))

	_, err := s.Get(context.Background(), testKey("bad"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, quiz.ErrNotFound)
}

func TestFileStore_ClaimIsExclusive(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	release, err := s.Claim(ctx, "k1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = s.Claim(waitCtx, "k1")
	require.Error(t, err, "second claim should block until the context expires")

	// Different keys do not contend.
	releaseOther, err := s.Claim(ctx, "k2")
	require.NoError(t, err)
	releaseOther()

	release()
	release2, err := s.Claim(ctx, "k1")
	require.NoError(t, err)
	release2()
}

func TestFileStore_AppendAttempt(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	a := &quiz.Attempt{
		AttemptID:      "att-1",
		SourceIdentity: []string{"notes.pdf"},
		ContentKey:     "k1",
		MCQScore:       1,
		MCQTotal:       1,
		SAQAnswers:     map[string]string{"q_0": "a lock"},
		SAQStatus:      quiz.SAQPending,
		AttemptedAt:    time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}
	require.NoError(t, s.AppendAttempt(ctx, a))
	require.ErrorIs(t, s.AppendAttempt(ctx, a), quiz.ErrExists)

	got, err := s.Attempt(ctx, "att-1")
	require.NoError(t, err)
	assert.Equal(t, a.SAQAnswers, got.SAQAnswers)
	assert.Equal(t, quiz.SAQPending, got.SAQStatus)

	_, err = s.Attempt(ctx, "att-missing")
	require.ErrorIs(t, err, quiz.ErrNotFound)
}

func TestFileStore_List(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	a, b := testKey("a"), testKey("b")
	require.NoError(t, s.Create(ctx, testArtifact(a)))
	require.NoError(t, s.Create(ctx, testArtifact(b)))

	want := []string{a, b}
	sort.Strings(want)
	keys, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, keys)
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	for _, name := range []string{"", "../x", "a/b", ".hidden"} {
		_, err := s.Get(ctx, name)
		assert.ErrorIs(t, err, quiz.ErrInvalidInput, "name %q", name)
	}
}

func TestFileStore_ServesQuizService(t *testing.T) {
	s := newTestFileStore(t)
	src := quizSourceFunc(func(ctx context.Context, id string, max int) ([]quiz.Question, error) {
		return []quiz.Question{{Type: quiz.SAQ, Question: "Define " + id + "?", Answer: "It is.", Explanation: "Because."}}, nil
	})
	svc, err := quiz.NewService(quiz.Options{Store: s, Source: src})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Synthesize(ctx, []string{"b", "a"}, 5)
	require.NoError(t, err)
	second, err := svc.Synthesize(ctx, []string{"a", "b"}, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ContentKey}, keys)
}

type quizSourceFunc func(ctx context.Context, id string, max int) ([]quiz.Question, error)

func (f quizSourceFunc) Questions(ctx context.Context, id string, max int) ([]quiz.Question, error) {
	return f(ctx, id, max)
}
