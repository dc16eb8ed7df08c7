// Package take is the interactive quiz-taking screen.
package take

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/asadullah4bls/evalai/internal/quiz"
	"github.com/asadullah4bls/evalai/internal/screen"
	"github.com/asadullah4bls/evalai/internal/screens/summary"
	"github.com/asadullah4bls/evalai/internal/ui/components"
	"github.com/asadullah4bls/evalai/internal/ui/layout"
	"github.com/asadullah4bls/evalai/internal/ui/theme"
)

// SubmitFunc records the answers and returns the attempt summary.
type SubmitFunc func(ctx context.Context, mcq, saq map[string]string) (*quiz.Summary, error)

type phase int

const (
	phaseAnswering phase = iota
	phaseConfirm
	phaseSubmitting
)

// submittedMsg carries the result of the submit command.
type submittedMsg struct {
	Summary *quiz.Summary
	Err     error
}

// Screen walks through a quiz one question at a time and submits all
// answers at the end.
type Screen struct {
	ctx       context.Context
	questions []quiz.Question
	ids       []string
	choices   map[int]components.MultiChoice
	inputs    map[int]components.TextInput
	current   int
	phase     phase
	submit    SubmitFunc
	errMsg    string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// New creates a screen for a. Questions without an id use their positional
// id, matching how answers are scored.
func New(ctx context.Context, a *quiz.Artifact, submit SubmitFunc) *Screen {
	s := &Screen{
		ctx:       ctx,
		questions: a.Questions,
		ids:       make([]string, len(a.Questions)),
		choices:   make(map[int]components.MultiChoice),
		inputs:    make(map[int]components.TextInput),
		submit:    submit,
	}
	for i, q := range a.Questions {
		s.ids[i] = q.ID
		if s.ids[i] == "" {
			s.ids[i] = quiz.PositionalID(i)
		}
		switch q.Type {
		case quiz.MCQ:
			opts := make([]string, len(quiz.OptionLabels))
			for j, l := range quiz.OptionLabels {
				opts[j] = q.Options[l]
			}
			s.choices[i] = components.NewMultiChoice(quiz.OptionLabels, opts)
		case quiz.SAQ:
			s.inputs[i] = components.NewTextInput("Type your answer...", 0)
		}
	}
	return s
}

func (s *Screen) Init() tea.Cmd {
	if in, ok := s.inputs[s.current]; ok {
		return in.Init()
	}
	return nil
}

func (s *Screen) Title() string {
	return "Quiz"
}

// Status reports answered/total.
func (s *Screen) Status() string {
	return fmt.Sprintf("%d/%d answered", s.answered(), len(s.questions))
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Submit"},
			{Key: "N", Description: "Keep going"},
		}
	case phaseSubmitting:
		return nil
	}
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "Enter", Description: "Next / finish"},
	}
	if s.currentType() == quiz.MCQ {
		hints = append([]layout.KeyHint{{Key: "A-D", Description: "Choose"}}, hints...)
	}
	return hints
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		if msg.Err != nil {
			s.phase = phaseAnswering
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, screen.Replace(summary.New(msg.Summary))

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if in, ok := s.inputs[s.current]; ok && s.phase == phaseAnswering {
		var cmd tea.Cmd
		s.inputs[s.current], cmd = in.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.phase {
	case phaseSubmitting:
		return s, nil
	case phaseConfirm:
		switch key {
		case "y", "Y":
			s.phase = phaseSubmitting
			s.errMsg = ""
			return s, s.submitCmd()
		case "n", "N", "esc":
			s.phase = phaseAnswering
		}
		return s, nil
	}

	switch key {
	case "tab":
		return s, s.move(1)
	case "shift+tab":
		return s, s.move(-1)
	case "enter":
		if len(s.questions) == 0 || s.current == len(s.questions)-1 {
			s.phase = phaseConfirm
			return s, nil
		}
		return s, s.move(1)
	}

	if mc, ok := s.choices[s.current]; ok {
		s.choices[s.current], _ = mc.Update(msg)
		return s, nil
	}
	if in, ok := s.inputs[s.current]; ok {
		var cmd tea.Cmd
		s.inputs[s.current], cmd = in.Update(msg)
		return s, cmd
	}
	return s, nil
}

// move shifts the current question by delta, staying within bounds.
func (s *Screen) move(delta int) tea.Cmd {
	next := s.current + delta
	if next < 0 || next >= len(s.questions) {
		return nil
	}
	s.current = next
	if in, ok := s.inputs[s.current]; ok {
		return in.Init()
	}
	return nil
}

func (s *Screen) submitCmd() tea.Cmd {
	mcq, saq := s.Answers()
	ctx, submit := s.ctx, s.submit
	return func() tea.Msg {
		sum, err := submit(ctx, mcq, saq)
		return submittedMsg{Summary: sum, Err: err}
	}
}

// Answers returns the chosen MCQ labels and non-empty SAQ answers keyed by
// question id. Unanswered questions are left out.
func (s *Screen) Answers() (mcq, saq map[string]string) {
	mcq = make(map[string]string)
	saq = make(map[string]string)
	for i, mc := range s.choices {
		if l := mc.ChosenLabel(); l != "" {
			mcq[s.ids[i]] = l
		}
	}
	for i, in := range s.inputs {
		if v := in.Value(); v != "" {
			saq[s.ids[i]] = v
		}
	}
	return mcq, saq
}

func (s *Screen) answered() int {
	mcq, saq := s.Answers()
	return len(mcq) + len(saq)
}

func (s *Screen) currentType() quiz.QuestionType {
	if s.current < len(s.questions) {
		return s.questions[s.current].Type
	}
	return ""
}

func (s *Screen) View(width, height int) string {
	if len(s.questions) == 0 {
		return theme.Hint.Render("\n  This quiz has no questions.")
	}

	var b strings.Builder
	q := s.questions[s.current]

	kind := "Multiple choice"
	if q.Type == quiz.SAQ {
		kind = "Short answer"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", s.current+1, len(s.questions))))
	b.WriteString(theme.Hint.Render("  " + kind))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(theme.Question.Width(max(width-4, 10)).Render("  " + q.Question))
	b.WriteString("\n\n")

	if mc, ok := s.choices[s.current]; ok {
		b.WriteString(mc.View())
	}
	if in, ok := s.inputs[s.current]; ok {
		b.WriteString("  " + in.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	bar := components.ProgressBar{Label: "  Answered", Done: s.answered(), Total: len(s.questions), Width: min(width-4, 60)}
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	switch s.phase {
	case phaseConfirm:
		left := len(s.questions) - s.answered()
		msg := "Submit your answers? (y/n)"
		if left > 0 {
			msg = fmt.Sprintf("%d unanswered. Submit anyway? (y/n)", left)
		}
		b.WriteString(theme.Pending.Render("  " + msg))
	case phaseSubmitting:
		b.WriteString(theme.Hint.Render("  Submitting..."))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Failure.Render("  Submit failed: " + s.errMsg))
	}
	return b.String()
}
