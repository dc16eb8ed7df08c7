package cmd

import (
	"errors"
	"fmt"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

// Describe renders err as the one-line reason printed before exiting.
func Describe(err error) string {
	switch {
	case errors.Is(err, quiz.ErrEmptyQuiz):
		return "no valid questions could be generated from these documents; nothing was cached"
	case errors.Is(err, quiz.ErrNotFound):
		return fmt.Sprintf("no cached quiz for these documents (run 'evalai generate' first): %v", err)
	case errors.Is(err, quiz.ErrInvalidInput):
		return err.Error()
	}
	if stage, cause := failedStage(err); cause != nil {
		return fmt.Sprintf("%s failed: %v", stage, cause)
	}
	return err.Error()
}

// failedStage returns the innermost collaborator stage in err's chain and
// the error it wraps.
func failedStage(err error) (string, error) {
	var stage string
	var cause error
	var ce *quiz.CollaboratorError
	for errors.As(err, &ce) {
		stage, cause = ce.Stage, ce.Err
		err = ce.Err
	}
	return stage, cause
}
