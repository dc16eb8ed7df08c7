// Package screen defines the contract between the app frame and the
// screens it hosts.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/asadullah4bls/evalai/internal/ui/layout"
)

// Screen is one full-window view. View gets the size left between the
// header and footer; Title is centered in the header.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for a short status shown at the
// right of the header, such as answered/total.
type StatusProvider interface {
	Status() string
}

// ReplaceMsg asks the app frame to swap the active screen for Screen. The
// replaced screen is discarded.
type ReplaceMsg struct {
	Screen Screen
}

// Replace returns a command that emits a ReplaceMsg for s.
func Replace(s Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceMsg{Screen: s} }
}
