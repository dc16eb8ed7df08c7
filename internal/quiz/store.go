package quiz

import "context"

// ArtifactStore persists artifacts and attempts. Implementations must make
// Create an atomic create-if-absent.
type ArtifactStore interface {
	// Get returns the artifact for key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Artifact, error)

	// Create writes a new artifact under a.ContentKey. It returns ErrExists
	// if the key is already taken and never overwrites.
	Create(ctx context.Context, a *Artifact) error

	// Claim takes an exclusive, cross-process claim on key, blocking until
	// it is acquired or ctx is done. The returned func releases it.
	Claim(ctx context.Context, key string) (release func(), err error)

	// AppendAttempt writes a new attempt under a.AttemptID. It returns
	// ErrExists rather than overwrite an existing attempt.
	AppendAttempt(ctx context.Context, a *Attempt) error
}

// QuestionSource produces candidate questions for one document.
type QuestionSource interface {
	Questions(ctx context.Context, documentID string, maxQuestions int) ([]Question, error)
}

// AttemptIndex is told about every stored attempt. Failures are logged and
// never fail a submission.
type AttemptIndex interface {
	IndexAttempt(ctx context.Context, a *Attempt) error
}
