package login

import (
	"context"
	"fmt"
	"strings"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	Style = lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color(common.COLOR_PRIMARY)).
		Margin(0, 3)

	logoStyle = common.Heavy.Style().Foreground(lipgloss.Color(common.COLOR_PRIMARY))
)

type Mode int

const (
	SignIn Mode = iota
	SignUp
)

// authedMsg is the result of any sign in or sign up attempt.
type authedMsg struct {
	err error
}

type Model struct {
	Mode Mode
	Err  string
	Busy bool

	session  *auth.Session
	email    textinput.Model
	password textinput.Model
	focus    int
	wizard   Wizard
}

func New(s *auth.Session) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 100
	email.Width = 36
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 100
	password.Width = 36

	return Model{session: s, email: email, password: password, wizard: NewWizard()}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Email() string {
	return m.email.Value()
}

func (m Model) Wizard() Wizard {
	return m.wizard
}

func authCmd(f func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return authedMsg{err: f(context.Background())}
	}
}

func (m Model) signIn() tea.Cmd {
	s, email, password := m.session, m.email.Value(), m.password.Value()
	return authCmd(func(ctx context.Context) error {
		return s.SignIn(ctx, email, password)
	})
}

func (m Model) demo() tea.Cmd {
	return authCmd(m.session.SignInDemo)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authedMsg:
		m.Busy = false
		m.wizard, _ = m.wizard.Update(msg, m.session)
		if msg.err != nil {
			m.Err = msg.err.Error()
			if m.Mode == SignUp {
				m.wizard.Err = m.Err
			}
			return m, nil
		}
		m.Err = ""
		user := m.session.CurrentUser()
		return m, func() tea.Msg {
			return common.SessionChangedMsg{User: user}
		}

	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		if msg.Type == tea.KeyCtrlT {
			m.Busy = true
			return m, m.demo()
		}
		if m.Mode == SignUp {
			return m.updateWizard(msg)
		}
		return m.updateSignIn(msg)
	}

	if m.Mode == SignUp {
		var cmd tea.Cmd
		m.wizard, cmd = m.wizard.Update(msg, m.session)
		return m, cmd
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updateSignIn(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlN:
		m.Mode = SignUp
		m.Err = ""
		m.wizard = NewWizard()
		return m, textinput.Blink
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, m.toggleFocus()
	case tea.KeyEnter:
		if m.focus == 0 {
			return m, m.toggleFocus()
		}
		m.Busy = true
		m.Err = ""
		return m, m.signIn()
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	m.focus = 1 - m.focus
	if m.focus == 0 {
		m.password.Blur()
		return m.email.Focus()
	}
	m.email.Blur()
	return m.password.Focus()
}

func (m Model) updateWizard(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc && m.wizard.Step == UsernameStep {
		m.Mode = SignIn
		m.Err = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.wizard, cmd = m.wizard.Update(msg, m.session)
	if m.wizard.Submitting {
		m.Busy = true
	}
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(logoStyle.Render("crema live"))
	s.WriteString("\n")
	s.WriteString(common.MutedStyle.Render(fmt.Sprintf("v%s", util.GetVersion())))
	s.WriteString("\n\n")

	var help string
	if m.Mode == SignUp {
		s.WriteString(m.wizard.View())
		help = m.wizard.Help()
	} else {
		s.WriteString(lipgloss.JoinVertical(lipgloss.Left,
			common.MutedStyle.Render("Email"),
			m.email.View(),
			"",
			common.MutedStyle.Render("Password"),
			m.password.View(),
		))
		if m.Err != "" {
			s.WriteString("\n\n")
			s.WriteString(common.ErrorStyle.Render(m.Err))
		}
		help = "(enter to sign in, ctrl+n to create an account)"
	}
	if m.Busy {
		s.WriteString("\n\n")
		s.WriteString(common.MutedStyle.Render("please wait..."))
	}
	s.WriteString("\n\n")
	s.WriteString(common.HelpStyle.Render(help))
	s.WriteString("\n")
	s.WriteString(common.HelpStyle.Render("(ctrl+t to continue (test), ctrl+c to quit)"))
	return s.String()
}

// ViewWithWidth centers the bordered form in the terminal.
func (m Model) ViewWithWidth(termWidth, termHeight int) string {
	contentWidth := max(44, termWidth-8)
	bordered := Style.Width(contentWidth).Render(m.View())
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, bordered)
}
