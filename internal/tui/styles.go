package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginBottom(1)
	youStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	kellyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	answerStyle  = lipgloss.NewStyle().PaddingLeft(2)
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
