package common

import "github.com/charmbracelet/lipgloss"

const (
	COLOR_PRIMARY    = "#f73558"
	COLOR_BLACK      = "#000000"
	COLOR_WHITE      = "#FFFFFF"
	COLOR_GRAY       = "#999999"
	COLOR_LIGHT_GRAY = "#CCCCCC"
	COLOR_DARK_GRAY  = "#333333"
	COLOR_BACKGROUND = "#0a0a0a"
	COLOR_SURFACE    = "#1a1a1a"
	COLOR_GREEN      = "#3ddc84"
	COLOR_RED        = "#ff4d4f"
)

// FontWeight is the closest a terminal gets to a type family: each weight
// maps onto text attributes.
type FontWeight int

const (
	Regular FontWeight = iota
	Medium
	Light
	Thin
	Bold
	Heavy
	Black
	Ultra
)

func (w FontWeight) Style() lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_WHITE))
	switch w {
	case Bold, Heavy, Black, Ultra:
		return s.Bold(true)
	case Light, Thin:
		return s.Faint(true)
	default:
		return s
	}
}

var (
	HelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GRAY)).Padding(0, 2)
	CaptionStyle  = Bold.Style().Padding(1, 2)
	MutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GRAY))
	EmptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GRAY)).Italic(true)
	AccentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_PRIMARY)).Bold(true)
	StatusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GREEN))
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_RED))
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_PRIMARY)).Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_WHITE)).
			Background(lipgloss.Color(COLOR_PRIMARY)).
			Bold(true).
			Padding(0, 2)

	InactiveButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(COLOR_LIGHT_GRAY)).
				Background(lipgloss.Color(COLOR_DARK_GRAY)).
				Padding(0, 2)

	SurfaceStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(COLOR_SURFACE)).
			Padding(1, 2)

	LiveBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_WHITE)).
			Background(lipgloss.Color(COLOR_PRIMARY)).
			Bold(true).
			Padding(0, 1)
)

func DefaultWindowWidth(width int) int {
	return width - 4
}

func DefaultWindowHeight(height int) int {
	return height - 2
}

// ContentHeight is what is left for a screen once the header and the bottom
// tab bar are drawn.
func ContentHeight(height int) int {
	h := height - HeaderHeight - TabBarHeight
	if h < 1 {
		return 1
	}
	return h
}

const (
	HeaderHeight = 1
	TabBarHeight = 2
)
