// Package summary shows the result of a submitted attempt.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/asadullah4bls/evalai/internal/quiz"
	"github.com/asadullah4bls/evalai/internal/screen"
	"github.com/asadullah4bls/evalai/internal/ui/layout"
	"github.com/asadullah4bls/evalai/internal/ui/theme"
)

// Screen displays an attempt summary.
type Screen struct {
	summary *quiz.Summary
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a summary screen.
func New(summary *quiz.Summary) *Screen {
	return &Screen{summary: summary}
}

// Summary returns the summary being shown.
func (s *Screen) Summary() *quiz.Summary {
	return s.summary
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Results"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Title, "Quiz submitted"))
	b.WriteString("\n")

	if sum.MCQTotal > 0 {
		pct := float64(sum.MCQScore) / float64(sum.MCQTotal) * 100
		b.WriteString(center(theme.Body, fmt.Sprintf("Multiple choice: %d/%d correct (%.0f%%)", sum.MCQScore, sum.MCQTotal, pct)))
	} else {
		b.WriteString(center(theme.Hint, "No multiple-choice questions"))
	}
	if sum.SAQPending > 0 {
		b.WriteString(center(theme.Pending, fmt.Sprintf("Short answers awaiting review: %d", sum.SAQPending)))
	}
	b.WriteString("\n")
	b.WriteString(center(theme.Hint, "Attempt "+sum.AttemptID))
	return b.String()
}
