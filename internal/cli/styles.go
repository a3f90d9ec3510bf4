// SPDX-License-Identifier: EPL-2.0

// Package cli renders the command-line host: status lines, the version
// banner and errors.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	accentColor  = lipgloss.Color("#2E86DE")
	successColor = lipgloss.Color("#27AE60")
	errorColor   = lipgloss.Color("#C0392B")
	mutedColor   = lipgloss.Color("#888888")
)

// Styles holds every style bound to one output's renderer, so color is only
// emitted when that output is a terminal.
type Styles struct {
	Title   lipgloss.Style
	Loading lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
}

// NewStyles binds the palette to w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(accentColor),
		Loading: r.NewStyle().Foreground(mutedColor).Italic(true),
		Success: r.NewStyle().Bold(true).Foreground(successColor),
		Error:   r.NewStyle().Bold(true).Foreground(errorColor),
		Key:     r.NewStyle().Foreground(mutedColor),
		Value:   r.NewStyle().Bold(true),
	}
}

// PrintVersion prints version information
func PrintVersion(w io.Writer, version string) {
	s := NewStyles(w)
	fmt.Fprintln(w, s.Title.Render("audclean"))
	fmt.Fprintf(w, "%s %s\n", s.Key.Render("Version:"), s.Value.Render(version))
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", NewStyles(w).Error.Render("Error:"), message)
}
