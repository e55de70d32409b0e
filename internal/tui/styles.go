package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	ringRoseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("211")).
			Bold(true)

	ringVioletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Bold(true)

	ringViewedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	ringCursorStyle = lipgloss.NewStyle().
			Reverse(true)

	viewerFrameStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205")).
				Padding(1, 2)

	barFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	captionStyle = lipgloss.NewStyle().Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	toastInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("29")).
				Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)
)
