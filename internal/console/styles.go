package console

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#A78BFA")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#F87171")
	mutedColor   = lipgloss.Color("#9CA3AF")
)

type styles struct {
	heading lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// newStyles builds styles bound to the renderer, so colour is only emitted
// when the output supports it.
func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(primaryColor),
		step:    r.NewStyle().Foreground(primaryColor),
		success: r.NewStyle().Bold(true).Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		failure: r.NewStyle().Bold(true).Foreground(errorColor),
		muted:   r.NewStyle().Foreground(mutedColor),
	}
}
