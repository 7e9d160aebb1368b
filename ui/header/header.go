package header

import (
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	appStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_WHITE)).
			Background(lipgloss.Color(common.COLOR_PRIMARY)).
			Bold(true).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_WHITE)).
			Background(lipgloss.Color(common.COLOR_SURFACE)).
			Bold(true).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_LIGHT_GRAY)).
			Background(lipgloss.Color(common.COLOR_SURFACE)).
			Padding(0, 1)
)

// Model is the one line bar above every main screen.
type Model struct {
	Width int
	User  *domain.User
	Title string
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	case common.SessionChangedMsg:
		m.User = msg.User
	}
	return m, nil
}

func (m Model) View() string {
	return Render(m.User, m.Title, m.Width)
}

// Render lays out the app name, the screen title and the signed-in handle,
// filling exactly width cells.
func Render(user *domain.User, title string, width int) string {
	app := appStyle.Render(util.GetNameAndVersion())
	handle := "guest"
	if user != nil {
		handle = user.Handle()
	}
	right := userStyle.Render(handle)

	middle := max(0, width-lipgloss.Width(app)-lipgloss.Width(right))
	center := titleStyle.
		Width(middle).
		MaxWidth(middle).
		Align(lipgloss.Center).
		Render(title)

	return lipgloss.JoinHorizontal(lipgloss.Top, app, center, right)
}
