package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Inspect cached quizzes",
}

var quizShowCmd = &cobra.Command{
	Use:   "show FILE...",
	Short: "Print the cached quiz for a set of documents",
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

		a, err := rt.service.Load(cmd.Context(), ids)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), a)
		}
		withAnswers, _ := cmd.Flags().GetBool("answers")
		printQuiz(cmd.OutOrStdout(), a, withAnswers)
		return nil
	},
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached quizzes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		keys, err := rt.artifacts.List(ctx)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(keys) == 0 {
			fmt.Fprintln(w, "No cached quizzes.")
			return nil
		}

		fmt.Fprintf(w, "%-12s  %-19s  %4s  %4s  %s\n", "Key", "Created", "MCQ", "SAQ", "Sources")
		fmt.Fprintln(w, strings.Repeat("─", 80))
		for _, k := range keys {
			a, err := rt.artifacts.Get(ctx, k)
			if err != nil {
				rt.log.Warn("skipping unreadable quiz", "content_key", k, "error", err)
				continue
			}
			mcq, saq := quiz.Count(a.Questions)
			fmt.Fprintf(w, "%-12s  %-19s  %4d  %4d  %s\n",
				shortKey(k),
				a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				mcq, saq,
				strings.Join(a.SourceIdentity, ", "))
		}
		return nil
	},
}

func init() {
	quizShowCmd.Flags().Bool("answers", false, "Include correct answers and explanations")
	quizShowCmd.Flags().Bool("json", false, "Print the stored quiz as JSON")

	quizCmd.AddCommand(quizShowCmd)
	quizCmd.AddCommand(quizListCmd)
}
