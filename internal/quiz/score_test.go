package quiz

import (
	"testing"
	"time"
)

func sampleArtifact() *Artifact {
	opts := map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"}
	return &Artifact{
		SourceIdentity: []string{"doc.pdf"},
		ContentKey:     ContentKey([]string{"doc.pdf"}),
		Questions: []Question{
			{ID: "q_0", Type: MCQ, Question: "one", Options: opts, CorrectAnswer: "B"},
			{ID: "q_1", Type: SAQ, Question: "two", Answer: "x"},
			{ID: "q_2", Type: MCQ, Question: "three", Options: opts, CorrectAnswer: "D"},
			{Type: MCQ, Question: "four", Options: opts, CorrectAnswer: "A"},
		},
	}
}

func TestScore_AllCorrect(t *testing.T) {
	a := sampleArtifact()
	att := Score(a, "att-1", map[string]string{"q_0": "B", "q_2": "D", "q_3": "A"}, nil, time.Unix(0, 0))
	if att.MCQScore != att.MCQTotal || att.MCQTotal != 3 {
		t.Fatalf("score = %d/%d, want 3/3", att.MCQScore, att.MCQTotal)
	}
	if att.MCQDetails[2].QuestionID != "q_3" {
		t.Errorf("positional fallback id = %q, want %q", att.MCQDetails[2].QuestionID, "q_3")
	}
}

func TestScore_NoAnswers(t *testing.T) {
	att := Score(sampleArtifact(), "att-1", nil, nil, time.Unix(0, 0))
	if att.MCQScore != 0 || att.MCQTotal != 3 {
		t.Fatalf("score = %d/%d, want 0/3", att.MCQScore, att.MCQTotal)
	}
	for _, d := range att.MCQDetails {
		if d.IsCorrect || d.UserAnswer != "" {
			t.Errorf("detail %+v should be an unanswered miss", d)
		}
	}
	if att.SAQStatus != SAQPending {
		t.Errorf("SAQStatus = %q, want %q", att.SAQStatus, SAQPending)
	}
}

func TestScore_ExactMatchOnly(t *testing.T) {
	att := Score(sampleArtifact(), "att-1", map[string]string{"q_0": "b", "q_2": "D "}, nil, time.Unix(0, 0))
	if att.MCQScore != 0 {
		t.Errorf("MCQScore = %d, want 0 for case/space mismatches", att.MCQScore)
	}
}

func TestScore_SAQStoredVerbatim(t *testing.T) {
	saq := map[string]string{"q_1": "  Osmosis moves water.\n"}
	att := Score(sampleArtifact(), "att-1", nil, saq, time.Unix(0, 0))
	if att.SAQAnswers["q_1"] != saq["q_1"] {
		t.Errorf("SAQ answer = %q, want verbatim %q", att.SAQAnswers["q_1"], saq["q_1"])
	}
	saq["q_1"] = "mutated"
	if att.SAQAnswers["q_1"] == "mutated" {
		t.Error("attempt shares the caller's map")
	}

	sum := Summarize(att)
	if sum.SAQPending != 1 || sum.AttemptID != "att-1" || sum.MCQTotal != 3 {
		t.Errorf("summary = %+v", sum)
	}
}
