// Package app hosts a screen inside the evalai terminal frame.
package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/asadullah4bls/evalai/internal/screen"
	"github.com/asadullah4bls/evalai/internal/ui/layout"
)

// Model is the root Bubble Tea model.
type Model struct {
	active screen.Screen
	width  int
	height int
}

// New creates a Model showing root.
func New(root screen.Screen) Model {
	return Model{active: root}
}

// Active returns the screen currently shown.
func (m Model) Active() screen.Screen {
	return m.active
}

func (m Model) Init() tea.Cmd {
	return m.active.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.ReplaceMsg:
		m.active = msg.Screen
		return m, m.active.Init()
	}

	var cmd tea.Cmd
	m.active, cmd = m.active.Update(msg)
	return m, cmd
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	var status string
	if sp, ok := m.active.(screen.StatusProvider); ok {
		status = sp.Status()
	}
	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if hp, ok := m.active.(screen.KeyHintProvider); ok {
		hints = append(hp.KeyHints(), hints...)
	}

	header := layout.RenderHeader(m.active.Title(), status, m.width)
	footer := layout.RenderFooter(hints, m.width)
	content := m.active.View(m.width, layout.ContentHeight(header, footer, m.height))

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run shows root until the user quits, then returns the final screen.
func Run(ctx context.Context, root screen.Screen) (screen.Screen, error) {
	p := tea.NewProgram(New(root), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(Model); ok {
		return fm.active, nil
	}
	return nil, nil
}
