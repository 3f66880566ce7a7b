package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	dotOpenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dotClosedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	userBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	assistantBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	errorBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("196")).
				Foreground(lipgloss.Color("196")).
				Padding(0, 1)

	senderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	productCardStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1).
				MarginLeft(2)

	productNameStyle  = lipgloss.NewStyle().Bold(true)
	productBrandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	productPriceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	inStockStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	outOfStockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	matchStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	welcomeTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	welcomeBodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	quickActionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	tipStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	typingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)

	attachmentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
