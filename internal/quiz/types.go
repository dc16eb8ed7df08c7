// Package quiz holds the quiz records and assembles, caches, and scores
// quizzes built from one or more documents.
package quiz

import "time"

// QuestionType distinguishes multiple-choice from short-answer questions.
type QuestionType string

const (
	MCQ QuestionType = "MCQ"
	SAQ QuestionType = "SAQ"
)

// OptionLabels are the MCQ option labels, in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

// Question is one quiz item. MCQs carry Options and CorrectAnswer; SAQs
// carry Answer.
type Question struct {
	ID            string            `json:"id"`
	Type          QuestionType      `json:"type"`
	Question      string            `json:"question"`
	Explanation   string            `json:"explanation"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Answer        string            `json:"answer,omitempty"`
}

// Artifact is a persisted quiz for a set of documents. Once written it is
// never modified.
type Artifact struct {
	SourceIdentity []string   `json:"source_identity"`
	ContentKey     string     `json:"content_key"`
	Questions      []Question `json:"questions"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SAQStatus tracks grading of the short answers in an attempt.
type SAQStatus string

const (
	SAQPending SAQStatus = "PENDING"
	SAQGraded  SAQStatus = "GRADED"
)

// MCQResult is the outcome of one multiple-choice answer.
type MCQResult struct {
	QuestionID    string `json:"question_id"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// Attempt is one submission against an artifact. Attempts are append-only.
type Attempt struct {
	AttemptID      string            `json:"attempt_id"`
	SourceIdentity []string          `json:"source_identity"`
	ContentKey     string            `json:"content_key"`
	MCQScore       int               `json:"mcq_score"`
	MCQTotal       int               `json:"mcq_total"`
	MCQDetails     []MCQResult       `json:"mcq_details"`
	SAQAnswers     map[string]string `json:"saq_answers"`
	SAQStatus      SAQStatus         `json:"saq_status"`
	AttemptedAt    time.Time         `json:"attempted_at"`
}

// Summary is what a caller sees after submitting an attempt.
type Summary struct {
	AttemptID  string `json:"attempt_id"`
	MCQScore   int    `json:"mcq_score"`
	MCQTotal   int    `json:"mcq_total"`
	SAQPending int    `json:"saq_pending"`
}

// Count returns the number of MCQs and SAQs in questions.
func Count(questions []Question) (mcq, saq int) {
	for _, q := range questions {
		switch q.Type {
		case MCQ:
			mcq++
		case SAQ:
			saq++
		}
	}
	return mcq, saq
}
