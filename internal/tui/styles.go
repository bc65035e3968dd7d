// Package tui provides an interactive terminal editor for the offsync
// configuration file.
package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.AdaptiveColor{Light: "#1F6FEB", Dark: "#58A6FF"}
	successColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#6E7681"}
	warnColor    = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warnColor).
			Padding(1, 2)
)

// GetTheme returns the huh theme for forms
func GetTheme() *huh.Theme {
	return huh.ThemeCharm()
}
