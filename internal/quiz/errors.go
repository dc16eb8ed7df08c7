package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports missing or malformed document identifiers or
	// quota.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuiz reports that no valid question survived across all
	// documents. Nothing is cached.
	ErrEmptyQuiz = errors.New("no valid questions generated")

	// ErrNotFound reports that no artifact (or attempt) exists for a key.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned by ArtifactStore.Create when the key is already
	// taken. Callers treat it as the idempotent success path.
	ErrExists = errors.New("already exists")
)

// Collaborator stages.
const (
	StageDocument   = "document"
	StageOCR        = "ocr"
	StageEmbedding  = "embedding"
	StageKeyphrase  = "keyphrase"
	StageGeneration = "generation"
	StageStore      = "store"
)

// CollaboratorError wraps a failure of an external collaborator. It is
// fatal to the request and never retried here.
type CollaboratorError struct {
	Stage string
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Collaborator wraps err as a CollaboratorError for stage, unless it already
// is one or is nil.
func Collaborator(stage string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return &CollaboratorError{Stage: stage, Err: err}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
