package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asadullah4bls/evalai/internal/store"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List recent quiz attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryAttempts(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No attempts recorded yet.")
			return nil
		}

		fmt.Fprintf(w, "%-36s  %-19s  %-7s  %-7s  %s\n", "Attempt", "Time", "MCQ", "Pending", "Sources")
		fmt.Fprintln(w, strings.Repeat("─", 100))
		for _, e := range events {
			fmt.Fprintf(w, "%-36s  %-19s  %-7s  %-7d  %s\n",
				e.AttemptID,
				e.Timestamp.Local().Format(timeLayout),
				fmt.Sprintf("%d/%d", e.MCQScore, e.MCQTotal),
				e.SAQPending,
				strings.Join(e.Sources, ", "))
		}
		return nil
	},
}

func init() {
	attemptsCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
}
