package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/quiz"
)

const (
	quizzesDir  = "quizzes"
	attemptsDir = "attempts"
	locksDir    = "locks"

	lockRetryDelay = 50 * time.Millisecond
)

// FileStore keeps artifacts and attempts as JSON files under a root
// directory:
//
//	<root>/quizzes/<content-key>.json
//	<root>/attempts/<attempt-id>.json
//	<root>/locks/<content-key>.lock
//
// Artifacts are published with a hard link from a temp file, so a reader
// never sees a partial file and an existing artifact is never replaced.
type FileStore struct {
	root string
	log  *logging.Logger
}

// NewFileStore creates the directory layout under root.
func NewFileStore(root string, log *logging.Logger) (*FileStore, error) {
	for _, dir := range []string{quizzesDir, attemptsDir, locksDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", dir, err)
		}
	}
	return &FileStore{root: root, log: logging.OrNop(log)}, nil
}

func (s *FileStore) artifactPath(key string) string {
	return filepath.Join(s.root, quizzesDir, key+".json")
}

// Get reads and validates the artifact stored under key.
func (s *FileStore) Get(_ context.Context, key string) (*quiz.Artifact, error) {
	if err := checkName(key); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.artifactPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("quiz %s: %w", key, quiz.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read quiz %s: %w", key, err)
	}
	a, err := quiz.DecodeArtifact(raw)
	if err != nil {
		return nil, fmt.Errorf("quiz %s: %w", key, err)
	}
	return a, nil
}

// Create publishes a new artifact. It returns quiz.ErrExists when the key
// is already taken.
func (s *FileStore) Create(_ context.Context, a *quiz.Artifact) error {
	if err := checkName(a.ContentKey); err != nil {
		return err
	}
	raw, err := quiz.EncodeArtifact(a)
	if err != nil {
		return err
	}
	if err := publish(filepath.Join(s.root, quizzesDir), s.artifactPath(a.ContentKey), raw); err != nil {
		return fmt.Errorf("quiz %s: %w", a.ContentKey, err)
	}
	s.log.Debug("artifact written", "key", a.ContentKey, "questions", len(a.Questions))
	return nil
}

// Claim takes an advisory file lock for key.
func (s *FileStore) Claim(ctx context.Context, key string) (func(), error) {
	if err := checkName(key); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(s.root, locksDir, key+".lock"))
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: not acquired", key)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			s.log.Warn("release lock failed", "key", key, "error", err)
		}
	}, nil
}

// AppendAttempt writes a new attempt file. Existing attempts are never
// replaced.
func (s *FileStore) AppendAttempt(_ context.Context, a *quiz.Attempt) error {
	if err := checkName(a.AttemptID); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	dir := filepath.Join(s.root, attemptsDir)
	if err := publish(dir, filepath.Join(dir, a.AttemptID+".json"), raw); err != nil {
		return fmt.Errorf("attempt %s: %w", a.AttemptID, err)
	}
	return nil
}

// Attempt reads one stored attempt.
func (s *FileStore) Attempt(_ context.Context, id string) (*quiz.Attempt, error) {
	if err := checkName(id); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.root, attemptsDir, id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("attempt %s: %w", id, quiz.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read attempt %s: %w", id, err)
	}
	var a quiz.Attempt
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode attempt %s: %w", id, err)
	}
	return &a, nil
}

// List returns the content keys of all stored artifacts, sorted.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, quizzesDir))
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// publish writes raw to a temp file in dir and links it to path. Link fails
// if path exists, which makes this a create-if-absent.
func publish(dir, path string, raw []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return quiz.ErrExists
		}
		return fmt.Errorf("link: %w", err)
	}
	return nil
}

// checkName rejects names that would escape the store directory.
func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: bad store name %q", quiz.ErrInvalidInput, name)
	}
	return nil
}
