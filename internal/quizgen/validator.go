package quizgen

import (
	"fmt"
	"strings"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

// Validator checks a parsed question before it is accepted.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator (for error messages
	// and logging), e.g. "structural", "boilerplate", "mcq".
	Name() string

	// Validate returns nil if q passes.
	Validate(q *quiz.Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators returns the standard chain.
func DefaultValidators() []Validator {
	return []Validator{
		&StructuralValidator{},
		&BoilerplateValidator{Phrases: DefaultDenyList},
		&MCQValidator{},
		&SAQValidator{},
	}
}

// StructuralValidator rejects questions with no usable text or type.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *quiz.Question) *ValidationError {
	text := strings.TrimSpace(q.Question)
	if text == "" {
		return &ValidationError{Validator: v.Name(), Message: "question text is empty"}
	}
	if text == untitledQuestion {
		return &ValidationError{Validator: v.Name(), Message: "question text not found"}
	}
	if q.Type != quiz.MCQ && q.Type != quiz.SAQ {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("unknown type %q", q.Type)}
	}
	return nil
}

// DefaultDenyList holds phrases that mean the model wrote commentary
// instead of a question.
var DefaultDenyList = []string{
	"based on the provided context",
	"i will generate",
	"following questions",
	"here are",
}

// BoilerplateValidator rejects question text containing any deny-listed
// phrase, case-insensitively.
type BoilerplateValidator struct {
	Phrases []string
}

func (v *BoilerplateValidator) Name() string { return "boilerplate" }

func (v *BoilerplateValidator) Validate(q *quiz.Question) *ValidationError {
	text := strings.ToLower(q.Question)
	for _, p := range v.Phrases {
		if strings.Contains(text, strings.ToLower(p)) {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("contains %q", p)}
		}
	}
	return nil
}

// MCQValidator requires all four options with text and a correct answer
// naming one of them.
type MCQValidator struct{}

func (v *MCQValidator) Name() string { return "mcq" }

func (v *MCQValidator) Validate(q *quiz.Question) *ValidationError {
	if q.Type != quiz.MCQ {
		return nil
	}
	if len(q.Options) != len(quiz.OptionLabels) {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("has %d options, want 4", len(q.Options))}
	}
	for _, label := range quiz.OptionLabels {
		text, ok := q.Options[label]
		if !ok {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %s missing", label)}
		}
		if strings.TrimSpace(text) == "" {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %s is empty", label)}
		}
	}
	if q.CorrectAnswer == "" {
		return &ValidationError{Validator: v.Name(), Message: "correct answer missing"}
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("correct answer %q is not an option", q.CorrectAnswer)}
	}
	return nil
}

// SAQValidator requires an answer.
type SAQValidator struct{}

func (v *SAQValidator) Name() string { return "saq" }

func (v *SAQValidator) Validate(q *quiz.Question) *ValidationError {
	if q.Type != quiz.SAQ {
		return nil
	}
	if strings.TrimSpace(q.Answer) == "" {
		return &ValidationError{Validator: v.Name(), Message: "answer missing"}
	}
	return nil
}
