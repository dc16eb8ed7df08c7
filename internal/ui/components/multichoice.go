package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/asadullah4bls/evalai/internal/ui/theme"
)

// MultiChoice selects one labelled option. Choosing does not reveal the
// correct answer; grading happens on submit.
type MultiChoice struct {
	Labels  []string
	Options []string
	Cursor  int
	Chosen  int // -1 until an option is chosen
}

// NewMultiChoice builds a selector from label/text pairs in display order.
func NewMultiChoice(labels, options []string) MultiChoice {
	return MultiChoice{
		Labels:  labels,
		Options: options,
		Chosen:  -1,
	}
}

// Update moves the cursor with arrows or j/k and chooses with Enter, Space,
// or the option's label key (a-d, case-insensitive).
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
		return m, nil
	case "space", " ":
		m.Chosen = m.Cursor
		return m, nil
	}

	for i, l := range m.Labels {
		if strings.EqualFold(key, l) {
			m.Cursor = i
			m.Chosen = i
			break
		}
	}
	return m, nil
}

// ChosenLabel returns the chosen option's label, or "" when none is chosen.
func (m MultiChoice) ChosenLabel() string {
	if m.Chosen < 0 || m.Chosen >= len(m.Labels) {
		return ""
	}
	return m.Labels[m.Chosen]
}

// View renders the options, marking the cursor and the chosen option.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor {
			prefix = "\u25b8 "
		}
		mark := " "
		if i == m.Chosen {
			mark = "\u25cf"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, m.Labels[i], opt)
		switch {
		case i == m.Chosen:
			b.WriteString(theme.Answered.Bold(true).Render(line))
		case i == m.Cursor:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
