package ui

import "github.com/charmbracelet/lipgloss"

var (
	sectionStyle     = lipgloss.NewStyle().Bold(true)
	doneStyle        = lipgloss.NewStyle().Faint(true)
	placeholderStyle = lipgloss.NewStyle().Italic(true).Faint(true)
	// Neon yellow background + black text
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("226")).Foreground(lipgloss.Color("0"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Faint(true)
)
