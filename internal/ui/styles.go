package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/card-smash/internal/game/card"
)

// Icon constants
const (
	TurnIcon   = "👉"
	WinnerIcon = "🏆"
	MeIcon     = "⭐"
)

var symbolIcons = map[card.Card]string{
	card.Taco:   "🌮",
	card.Cat:    "🐱",
	card.Goat:   "🐐",
	card.Cheese: "🧀",
	card.Pizza:  "🍕",
}

var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(1, 3).Bold(true)
	matchStyle   = cardStyle.BorderForeground(lipgloss.Color("10"))
	promptStyle  = lipgloss.NewStyle().MarginTop(1)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)
