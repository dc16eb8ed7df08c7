package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/asadullah4bls/evalai/internal/app"
	"github.com/asadullah4bls/evalai/internal/quiz"
	"github.com/asadullah4bls/evalai/internal/screens/summary"
	"github.com/asadullah4bls/evalai/internal/screens/take"
)

var takeCmd = &cobra.Command{
	Use:   "take FILE...",
	Short: "Take the quiz for a set of documents in the terminal",
	Long: "Opens the cached quiz for the documents, generating it first when " +
		"needed, and submits your answers when you finish.",
	Args: cobra.MinimumNArgs(1),
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

		ctx := cmd.Context()
		a, err := rt.service.Synthesize(ctx, ids, rt.cfg.Quiz.MaxQuestions)
		if err != nil {
			return err
		}

		submit := func(ctx context.Context, mcq, saq map[string]string) (*quiz.Summary, error) {
			return rt.service.SubmitAttempt(ctx, ids, mcq, saq)
		}
		final, err := app.Run(ctx, take.New(ctx, a, submit))
		if err != nil {
			return err
		}
		if s, ok := final.(*summary.Screen); ok && s.Summary() != nil {
			printSummary(cmd.OutOrStdout(), s.Summary())
		}
		return nil
	},
}
