package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = newStyles(lipgloss.Color("#7D56F4"), lipgloss.Color("#04B575"), lipgloss.Color("#FF0000"), lipgloss.Color("#FFA500"))

// viewStyles holds the [lipgloss.Style] values shared by every view.
type viewStyles struct {
	title   lipgloss.Style // view headings
	ok      lipgloss.Style // completed exports
	err     lipgloss.Style // failures
	missing lipgloss.Style // song ids with no matching song
}

func newStyles(accent, success, failure, warning lipgloss.Color) viewStyles {
	bold := lipgloss.NewStyle().Bold(true)
	return viewStyles{
		title:   bold.Foreground(accent).MarginBottom(1),
		ok:      bold.Foreground(success),
		err:     bold.Foreground(failure),
		missing: lipgloss.NewStyle().Foreground(warning).Italic(true),
	}
}
