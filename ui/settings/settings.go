package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/ui/common"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_RED)).
			Bold(true)

	instructionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(common.COLOR_GRAY))

	onStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_GREEN)).Bold(true)
	offStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_GRAY))
)

type Item int

const (
	PushNotifications Item = iota
	PrivateAccount
	LogOut
	DeleteAccount
)

var itemLabels = []string{"Push notifications", "Private account", "Log out", "Delete account"}

type Confirm int

const (
	NoConfirm Confirm = iota
	ConfirmLogout
	ConfirmDelete
	ConfirmDeleteFinal
)

type signedOutMsg struct {
	err error
}

type deletedMsg struct {
	err error
}

type Model struct {
	Selected Item
	Push     bool
	Private  bool
	Confirm  Confirm
	Deleted  bool
	Status   string
	Error    string

	session *auth.Session
	status  common.StatusClearer
}

func New(s *auth.Session) Model {
	return Model{session: s, Push: true}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func sessionEnded() tea.Msg {
	return common.SessionChangedMsg{}
}

func (m Model) signOut() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return signedOutMsg{err: s.SignOut(context.Background())}
	}
}

func (m Model) deleteAccount() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return deletedMsg{err: s.DeleteAccount(context.Background())}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signedOutMsg:
		m.Confirm = NoConfirm
		if msg.err != nil {
			log.Warn("Sign out did not clear the stored session", "err", msg.err)
		}
		return m, sessionEnded

	case deletedMsg:
		m.Confirm = NoConfirm
		if msg.err != nil {
			m.Status = ""
			m.Error = fmt.Sprintf("Failed to delete account: %v", msg.err)
			return m, nil
		}
		m.Deleted = true
		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
			return sessionEnded()
		})

	case tea.KeyMsg:
		if m.Deleted {
			return m, nil
		}
		if m.Confirm != NoConfirm {
			return m.updateConfirm(msg)
		}
		switch msg.String() {
		case "up", "k":
			if m.Selected > PushNotifications {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < DeleteAccount {
				m.Selected++
			}
		case "enter", " ":
			return m.activate()
		}
		return m, nil
	}

	if m.status.Done(msg) {
		m.Status = ""
		m.Error = ""
	}
	return m, nil
}

func (m Model) activate() (Model, tea.Cmd) {
	switch m.Selected {
	case PushNotifications:
		m.Push = !m.Push
	case PrivateAccount:
		m.Private = !m.Private
	case LogOut:
		m.Confirm = ConfirmLogout
	case DeleteAccount:
		m.Confirm = ConfirmDelete
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		switch m.Confirm {
		case ConfirmLogout:
			return m, m.signOut()
		case ConfirmDelete:
			m.Confirm = ConfirmDeleteFinal
			return m, nil
		case ConfirmDeleteFinal:
			m.Status = "Deleting account..."
			return m, m.deleteAccount()
		}
	case "n", "N", "esc":
		if m.Confirm != ConfirmLogout {
			m.Status = "Deletion cancelled"
		}
		m.Confirm = NoConfirm
		m.Error = ""
		return m, m.status.Start(2 * time.Second)
	}
	return m, nil
}

func toggle(on bool) string {
	if on {
		return onStyle.Render("on")
	}
	return offStyle.Render("off")
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(common.CaptionStyle.Render("settings"))
	s.WriteString("\n")

	if m.Deleted {
		s.WriteString(common.StatusStyle.PaddingLeft(2).Render("✓ Account deleted. Bye bye!"))
		return s.String()
	}

	user := m.session.CurrentUser()
	switch m.Confirm {
	case ConfirmLogout:
		s.WriteString("  Log out of " + user.Handle() + "?\n\n")
		s.WriteString(instructionStyle.PaddingLeft(2).Render("Press 'y' to log out or 'n'/'esc' to cancel"))
		return s.String()
	case ConfirmDelete:
		s.WriteString(warningStyle.PaddingLeft(2).Render("⚠ WARNING: This will permanently delete your account!"))
		s.WriteString("\n\n")
		s.WriteString("  The following data will be deleted:\n")
		s.WriteString("    • Your account (" + user.Handle() + ")\n")
		s.WriteString("    • Your streams and chat history\n")
		s.WriteString("    • All follow relationships\n\n")
		s.WriteString(instructionStyle.PaddingLeft(2).Render("Press 'y' to continue or 'n'/'esc' to cancel"))
		return s.String()
	case ConfirmDeleteFinal:
		s.WriteString(warningStyle.PaddingLeft(2).Render("⚠ FINAL WARNING!"))
		s.WriteString("\n\n")
		s.WriteString("  This is your last chance to cancel.\n\n")
		s.WriteString(instructionStyle.PaddingLeft(2).Render("Press 'y' to DELETE PERMANENTLY or 'n'/'esc' to cancel"))
		return s.String()
	}

	for i, label := range itemLabels {
		item := Item(i)
		line := label
		switch item {
		case PushNotifications:
			line = fmt.Sprintf("%-22s %s", label, toggle(m.Push))
		case PrivateAccount:
			line = fmt.Sprintf("%-22s %s", label, toggle(m.Private))
		}
		if item == m.Selected {
			s.WriteString(common.SelectedStyle.Render("› " + line))
		} else if item == DeleteAccount {
			s.WriteString("  " + common.ErrorStyle.Render(line))
		} else {
			s.WriteString("  " + line)
		}
		s.WriteString("\n")
	}

	if m.Status != "" {
		s.WriteString("\n")
		s.WriteString(common.StatusStyle.PaddingLeft(2).Render(m.Status))
	}
	if m.Error != "" {
		s.WriteString("\n")
		s.WriteString(common.ErrorStyle.PaddingLeft(2).Render(m.Error))
	}
	return s.String()
}

func (m Model) Help() string {
	if m.Confirm != NoConfirm {
		return "y: confirm • n: cancel"
	}
	return "↑/↓: select • enter: toggle • esc: back"
}
