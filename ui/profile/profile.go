// Package profile shows the signed-in user's own profile with an editor, and
// other users' profiles with a follow toggle.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	nameStyle  = common.Heavy.Style()
	statStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_GRAY))
)

type savedMsg struct {
	err error
}

// Model is the signed-in user's profile.
type Model struct {
	Width   int
	Height  int
	Editing bool
	Status  string
	Error   string

	session     *auth.Session
	displayName textinput.Model
	bio         textinput.Model
	focus       int
	status      common.StatusClearer
}

func New(s *auth.Session, width, height int) Model {
	displayName := textinput.New()
	displayName.Placeholder = "Display name"
	displayName.CharLimit = 50
	displayName.Width = 40

	bio := textinput.New()
	bio.Placeholder = "Tell viewers about yourself"
	bio.CharLimit = 200
	bio.Width = 60

	return Model{session: s, Width: width, Height: height, displayName: displayName, bio: bio}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) startEditing() tea.Cmd {
	u := m.session.CurrentUser()
	if u == nil {
		return nil
	}
	m.Editing = true
	m.focus = 0
	m.displayName.SetValue(u.DisplayName)
	m.bio.SetValue(u.Bio)
	m.bio.Blur()
	return m.displayName.Focus()
}

func (m Model) save() tea.Cmd {
	s := m.session
	name := strings.TrimSpace(m.displayName.Value())
	bio := strings.TrimSpace(m.bio.Value())
	return func() tea.Msg {
		err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{DisplayName: &name, Bio: &bio})
		return savedMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.err != nil {
			m.Error = msg.err.Error()
			return m, nil
		}
		m.Editing = false
		m.Status = "Profile updated"
		m.Error = ""
		user := m.session.CurrentUser()
		return m, tea.Batch(m.status.Start(2*time.Second), func() tea.Msg {
			return common.SessionChangedMsg{User: user}
		})

	case tea.KeyMsg:
		if m.Editing {
			return m.updateEditor(msg)
		}
		switch msg.String() {
		case "e":
			return m, m.startEditing()
		case "s":
			return m, common.Navigate(common.SettingsScreen, common.Params{})
		}
		return m, nil
	}

	if m.status.Done(msg) {
		m.Status = ""
		return m, nil
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Editing = false
		m.Error = ""
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.focus = 1 - m.focus
		if m.focus == 0 {
			m.bio.Blur()
			return m, m.displayName.Focus()
		}
		m.displayName.Blur()
		return m, m.bio.Focus()
	case "enter":
		return m, m.save()
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.displayName, cmd = m.displayName.Update(msg)
	} else {
		m.bio, cmd = m.bio.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	u := m.session.CurrentUser()
	if u == nil {
		return common.EmptyStyle.Render("  Sign in to see your profile")
	}
	var s strings.Builder
	s.WriteString(renderUser(u))
	s.WriteString("\n\n")

	if m.Editing {
		s.WriteString(labelStyle.Render("Display name"))
		s.WriteString("\n")
		s.WriteString(m.displayName.View())
		s.WriteString("\n\n")
		s.WriteString(labelStyle.Render("Bio"))
		s.WriteString("\n")
		s.WriteString(m.bio.View())
		s.WriteString("\n\n")
	}
	if m.Status != "" {
		s.WriteString(common.StatusStyle.Render(m.Status))
		s.WriteString("\n")
	}
	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n")
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(s.String())
}

func (m Model) Help() string {
	if m.Editing {
		return "tab: next field • enter: save • esc: cancel"
	}
	return "e: edit profile • s: settings"
}

// renderUser is the profile card shared by both views.
func renderUser(u *domain.User) string {
	var s strings.Builder
	s.WriteString(nameStyle.Render(u.Name()))
	if u.IsStreaming {
		s.WriteString(" " + common.LiveBadgeStyle.Render("LIVE"))
	}
	s.WriteString("\n")
	s.WriteString(common.MutedStyle.Render(u.Handle()))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s %s   %s %s",
		statStyle.Render(util.FormatCount(u.Followers)), labelStyle.Render("followers"),
		statStyle.Render(util.FormatCount(u.Following)), labelStyle.Render("following")))
	if u.Bio != "" {
		s.WriteString("\n\n")
		s.WriteString(u.Bio)
	}
	var details []string
	if u.Nationality != "" {
		details = append(details, "from "+u.Nationality)
	}
	if len(u.Languages) > 0 {
		details = append(details, "speaks "+strings.Join(u.Languages, ", "))
	}
	if !u.CreatedAt.IsZero() {
		details = append(details, "joined "+u.CreatedAt.Format("Jan 2006"))
	}
	if len(details) > 0 {
		s.WriteString("\n\n")
		s.WriteString(labelStyle.Render(strings.Join(details, " · ")))
	}
	return s.String()
}
