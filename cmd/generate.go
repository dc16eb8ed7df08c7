package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate FILE...",
	Short: "Generate (or fetch the cached) quiz for a set of documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := documentIDs(args)
		if err != nil {
			return err
		}
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		quota, _ := cmd.Flags().GetInt("max-questions")
		if !cmd.Flags().Changed("max-questions") {
			quota = rt.cfg.Quiz.MaxQuestions
		}

		a, err := rt.service.Synthesize(cmd.Context(), ids, quota)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), a)
		}
		printQuiz(cmd.OutOrStdout(), a, false)
		return nil
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printQuiz writes a readable rendering of a. Answers are included only
// when withAnswers is set.
func printQuiz(w io.Writer, a *quiz.Artifact, withAnswers bool) {
	mcq, saq := quiz.Count(a.Questions)
	fmt.Fprintf(w, "Quiz %s\n", shortKey(a.ContentKey))
	fmt.Fprintf(w, "Sources: %s\n", strings.Join(a.SourceIdentity, ", "))
	fmt.Fprintf(w, "Questions: %d (%d multiple choice, %d short answer)\n", len(a.Questions), mcq, saq)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	for i, q := range a.Questions {
		id := q.ID
		if id == "" {
			id = quiz.PositionalID(i)
		}
		fmt.Fprintf(w, "\n[%s] %s\n", id, q.Question)
		if q.Type == quiz.MCQ {
			for _, l := range quiz.OptionLabels {
				fmt.Fprintf(w, "    %s) %s\n", l, q.Options[l])
			}
		}
		if !withAnswers {
			continue
		}
		switch q.Type {
		case quiz.MCQ:
			fmt.Fprintf(w, "  Correct: %s\n", q.CorrectAnswer)
		case quiz.SAQ:
			fmt.Fprintf(w, "  Answer: %s\n", q.Answer)
		}
		if q.Explanation != "" {
			fmt.Fprintf(w, "  Why: %s\n", q.Explanation)
		}
	}
}

func init() {
	generateCmd.Flags().IntP("max-questions", "n", 20, "Maximum number of questions across all documents")
	generateCmd.Flags().Bool("json", false, "Print the stored quiz as JSON")
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
