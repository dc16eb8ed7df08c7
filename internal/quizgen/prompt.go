package quizgen

import (
	"fmt"
	"strings"

	"github.com/asadullah4bls/evalai/internal/keywords"
	"github.com/asadullah4bls/evalai/internal/quiz"
)

const systemPrompt = `You are a quiz generation expert writing questions for students studying course material.

Rules:
- Base every question strictly on the provided context. Do not introduce outside facts.
- Every question must be logical, unambiguous, and answerable from the context.
- Answers must be accurate.
- Output only the questions in the requested format. No introduction, no closing remarks, no markdown.`

const saqFormat = `Q1. <Question text>
Answer: <Correct answer>
Explanation: <Short explanation>`

const mcqFormat = `Q1. <Question text>
   A) <Option A>
   B) <Option B>
   C) <Option C>
   D) <Option D>
Correct Answer: <A/B/C/D>
Explanation: <Concise explanation>`

// buildUserMessage asks for up to n questions of type t about concepts.
func buildUserMessage(t quiz.QuestionType, n int, concepts keywords.Curated) string {
	var b strings.Builder

	switch t {
	case quiz.MCQ:
		fmt.Fprintf(&b, "Generate up to %d Multiple Choice Questions (MCQs) based strictly on the context below.\n\n", n)
		b.WriteString("Rules:\n")
		fmt.Fprintf(&b, "- Do not generate more than %d questions. Fewer is fine if the context is limited.\n", n)
		b.WriteString("- Each question must have exactly 4 options (A, B, C, D) and exactly one correct option.\n")
		b.WriteString("- Include a 2-3 line explanation of the correct answer.\n")
	default:
		fmt.Fprintf(&b, "Generate up to %d Short Answer Questions (SAQs) based strictly on the context below.\n\n", n)
		b.WriteString("Rules:\n")
		fmt.Fprintf(&b, "- Do not generate more than %d questions. Fewer is fine if the context is limited.\n", n)
		b.WriteString("- Answers must be concise (1-2 lines), precise, and never blank.\n")
	}

	b.WriteString("\nContext:\n")
	b.WriteString(formatConcepts(concepts))

	b.WriteString("\n\nOutput format (follow exactly, numbering Q1., Q2., ...):\n")
	if t == quiz.MCQ {
		b.WriteString(mcqFormat)
	} else {
		b.WriteString(saqFormat)
	}
	return b.String()
}

// formatConcepts lists concepts as bullets grouped by source.
func formatConcepts(c keywords.Curated) string {
	var b strings.Builder
	group := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(title + ":\n")
		for _, it := range items {
			fmt.Fprintf(&b, " - %s\n", it)
		}
	}
	group("Key concepts from the text", c.Text)
	group("Concepts from diagrams", c.Diagram)
	return strings.TrimRight(b.String(), "\n")
}
