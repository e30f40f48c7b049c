// Package ui holds the terminal styles shared by the CLI commands.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent = lipgloss.Color("12")
	ColorPass   = lipgloss.Color("10")
	ColorWarn   = lipgloss.Color("11")
	ColorFail   = lipgloss.Color("9")
	ColorMuted  = lipgloss.Color("8")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorPass)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarn)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorFail)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// RenderTitle renders a section heading.
func RenderTitle(s string) string { return TitleStyle.Render(s) }

// RenderSuccess renders a positive outcome.
func RenderSuccess(s string) string { return SuccessStyle.Render(s) }

// RenderWarning renders a cautionary note.
func RenderWarning(s string) string { return WarningStyle.Render(s) }

// RenderError renders a failure message.
func RenderError(s string) string { return ErrorStyle.Render(s) }

// RenderMuted renders secondary detail.
func RenderMuted(s string) string { return MutedStyle.Render(s) }
