package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/asadullah4bls/evalai/internal/llm"
	"github.com/asadullah4bls/evalai/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded generation and embedding calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded provider calls, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if failed {
			kept := events[:0]
			for _, e := range events {
				if !e.Success {
					kept = append(kept, e)
				}
			}
			events = kept
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}
		return writeEventTable(out, events)
	},
}

func newTable(headers ...string) *table.Table {
	return table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
}

func writeEventTable(out io.Writer, events []store.LLMRequestEvent) error {
	t := newTable("ID", "TIME", "PURPOSE", "PROVIDER", "MODEL", "IN", "OUT", "MS", "STATUS")
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		t.Row(
			strconv.Itoa(e.ID),
			e.Timestamp.Local().Format(timeLayout),
			e.Purpose,
			e.Provider,
			clip(e.Model, 32),
			strconv.Itoa(e.InputTokens),
			strconv.Itoa(e.OutputTokens),
			strconv.FormatInt(e.LatencyMs, 10),
			status,
		)
	}
	_, err := fmt.Fprintln(out, t.String())
	return err
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the captured prompt and reply of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid event id %q", args[0])
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Event:    %d (sequence %d)\n", e.ID, e.Sequence)
		fmt.Fprintf(out, "Time:     %s\n", e.Timestamp.Local().Format(timeLayout))
		fmt.Fprintf(out, "Call:     %s via %s/%s\n", e.Purpose, e.Provider, e.Model)
		fmt.Fprintf(out, "Tokens:   %d in, %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(out, "Latency:  %dms\n", e.LatencyMs)
		if e.Success {
			fmt.Fprintln(out, "Result:   ok")
		} else {
			fmt.Fprintf(out, "Result:   failed: %s\n", e.ErrorMessage)
		}

		writeSection(out, "Prompt", e.RequestBody)
		writeSection(out, "Reply", e.ResponseBody)
		return nil
	},
}

func writeSection(out io.Writer, title, body string) {
	fmt.Fprintf(out, "\n== %s ==\n", title)
	if strings.TrimSpace(body) == "" {
		fmt.Fprintln(out, "(not captured)")
		return
	}
	fmt.Fprintln(out, strings.TrimRight(body, "\n"))
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage per purpose and estimated cost per model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		byModel, err := repo.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		if err := writePurposeUsage(out, byPurpose); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return writeModelCost(out, byModel)
	},
}

func writePurposeUsage(out io.Writer, stats []store.UsageStat) error {
	t := newTable("PURPOSE", "CALLS", "INPUT", "OUTPUT", "AVG MS")
	var calls, in, outTok int
	for _, st := range stats {
		t.Row(st.Purpose, strconv.Itoa(st.Calls), strconv.Itoa(st.InputTokens),
			strconv.Itoa(st.OutputTokens), strconv.FormatInt(st.AvgLatencyMs, 10))
		calls += st.Calls
		in += st.InputTokens
		outTok += st.OutputTokens
	}
	t.Row("total", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(outTok), "")
	_, err := fmt.Fprintln(out, t.String())
	return err
}

// writeModelCost prices each model from the built-in table. Models without
// a price are listed but left out of the total.
func writeModelCost(out io.Writer, stats []store.UsageStat) error {
	t := newTable("MODEL", "CALLS", "INPUT", "OUTPUT", "COST (USD)")
	var total float64
	var unpriced []string
	for _, st := range stats {
		cost := "?"
		if mc := llm.LookupCost(st.Model); mc != nil {
			c := mc.Cost(st.InputTokens, st.OutputTokens)
			total += c
			cost = usd(c)
		} else {
			unpriced = append(unpriced, st.Model)
		}
		t.Row(clip(st.Model, 32), strconv.Itoa(st.Calls), strconv.Itoa(st.InputTokens),
			strconv.Itoa(st.OutputTokens), cost)
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	t.Row(label, "", "", "", usd(total))
	if _, err := fmt.Fprintln(out, t.String()); err != nil {
		return err
	}
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
	return nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// usd keeps sub-cent costs visible.
func usd(v float64) string {
	if v > 0 && v < 0.01 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (quiz-saq, quiz-mcq, keyphrase, dedup)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
