package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evalai",
	Short: "Turn study documents into quizzes",
	Long: "evalai reads PDFs and notes, picks out their key concepts (including text " +
		"inside diagrams), and generates a short-answer and multiple-choice quiz that " +
		"is cached per document set.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/evalai/config.toml)")
	pf.String("db", "", "Path to SQLite event database (overrides EVALAI_DB)")
	pf.String("data-dir", "", "Directory for cached quizzes and attempts (overrides EVALAI_DATA_DIR)")
	pf.String("log", "", "Log mode: quiet, development, production (overrides EVALAI_LOG)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
