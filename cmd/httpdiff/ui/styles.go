// Package ui is the interactive terminal renderer. It consumes engine
// events while the run executes and lets the user drill into individual
// comparisons afterwards.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"httpdiff/internal/compare"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Faint(true)

	identicalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	differsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noteStyle    = lipgloss.NewStyle().Italic(true).Faint(true)

	detailBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
)

func classStyle(c compare.Class) lipgloss.Style {
	switch c {
	case compare.Identical:
		return identicalStyle
	case compare.Differs:
		return differsStyle
	case compare.Error:
		return errorStyle
	}
	return skippedStyle
}
