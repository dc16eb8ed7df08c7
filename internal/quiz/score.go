package quiz

import "time"

// Score grades MCQ answers by exact match and records SAQ answers as
// pending. Answers are looked up by question id, or by positional id for
// questions without one. A missing answer is incorrect.
func Score(a *Artifact, attemptID string, mcqAnswers, saqAnswers map[string]string, now time.Time) *Attempt {
	att := &Attempt{
		AttemptID:      attemptID,
		SourceIdentity: append([]string(nil), a.SourceIdentity...),
		ContentKey:     a.ContentKey,
		MCQDetails:     []MCQResult{},
		SAQAnswers:     make(map[string]string, len(saqAnswers)),
		SAQStatus:      SAQPending,
		AttemptedAt:    now,
	}

	for i, q := range a.Questions {
		if q.Type != MCQ {
			continue
		}
		id := q.ID
		if id == "" {
			id = PositionalID(i)
		}
		user := mcqAnswers[id]
		ok := user != "" && user == q.CorrectAnswer
		if ok {
			att.MCQScore++
		}
		att.MCQTotal++
		att.MCQDetails = append(att.MCQDetails, MCQResult{
			QuestionID:    id,
			UserAnswer:    user,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     ok,
		})
	}

	for id, text := range saqAnswers {
		att.SAQAnswers[id] = text
	}
	return att
}

// Summarize reduces an attempt to what the caller is shown.
func Summarize(a *Attempt) *Summary {
	return &Summary{
		AttemptID:  a.AttemptID,
		MCQScore:   a.MCQScore,
		MCQTotal:   a.MCQTotal,
		SAQPending: len(a.SAQAnswers),
	}
}
