package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

// answerSheet is the --answers file format.
type answerSheet struct {
	MCQ map[string]string `json:"mcq"`
	SAQ map[string]string `json:"saq"`
}

func readAnswers(path string) (*answerSheet, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open answers: %w", err)
		}
		defer f.Close()
		r = f
	}
	var sheet answerSheet
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sheet); err != nil {
		return nil, fmt.Errorf("%w: answers file: %v", quiz.ErrInvalidInput, err)
	}
	return &sheet, nil
}

var submitCmd = &cobra.Command{
	Use:   "submit --answers FILE DOCUMENT...",
	Short: "Score answers against the cached quiz for a set of documents",
	Long: "Scores multiple-choice answers and records short answers for review. " +
		"The answers file is JSON: {\"mcq\": {\"q_0\": \"B\"}, \"saq\": {\"q_1\": \"...\"}}. " +
		"Use - to read it from stdin.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("answers")
		sheet, err := readAnswers(path)
		if err != nil {
			return err
		}
		ids, err := documentIDs(args)
		if err != nil {
			return err
		}
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sum, err := rt.service.SubmitAttempt(cmd.Context(), ids, sheet.MCQ, sheet.SAQ)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), sum)
		}
		printSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func printSummary(w io.Writer, sum *quiz.Summary) {
	fmt.Fprintf(w, "Attempt:        %s\n", sum.AttemptID)
	fmt.Fprintf(w, "MCQ score:      %d/%d\n", sum.MCQScore, sum.MCQTotal)
	fmt.Fprintf(w, "SAQ pending:    %d\n", sum.SAQPending)
}

func init() {
	submitCmd.Flags().String("answers", "", "Path to the answers JSON file, or - for stdin")
	submitCmd.Flags().Bool("json", false, "Print the summary as JSON")
	_ = submitCmd.MarkFlagRequired("answers")
}
