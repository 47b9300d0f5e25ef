package app

import "github.com/charmbracelet/lipgloss"

var (
	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(1)

	sidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("81"))

	sessionSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("24"))

	sessionDateStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	modelLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114"))

	stepPendingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))

	stepActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	stepCompletedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("114"))

	stepErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	offlineBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("130")).
				Padding(0, 1)

	statusInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	promptHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))
)
