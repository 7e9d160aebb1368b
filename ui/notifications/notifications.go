package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	unreadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_PRIMARY)).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_GRAY))
)

// rows used by one notification in the list
const itemHeight = 3

type Model struct {
	Notifications []domain.Notification
	Selected      int
	Offset        int
	Width         int
	Height        int

	provider backend.Notifications
	session  *auth.Session
	loaded   bool
}

func New(p backend.Notifications, s *auth.Session, width, height int) Model {
	return Model{provider: p, session: s, Width: width, Height: height}
}

// Unread counts the notifications not yet opened.
func (m Model) Unread() int {
	n := 0
	for _, note := range m.Notifications {
		if !note.Read {
			n++
		}
	}
	return n
}

func (m Model) Init() tea.Cmd {
	return loadNotifications(m.provider, m.session.CurrentUser())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notificationsLoadedMsg:
		m.Notifications = msg.notifications
		m.loaded = true
		m.Selected = max(0, min(m.Selected, len(m.Notifications)-1))
		m.scroll()
		return m, nil

	case common.SessionChangedMsg:
		m.Notifications = nil
		m.Selected, m.Offset = 0, 0
		return m, m.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < len(m.Notifications)-1 {
				m.Selected++
			}
		case "r":
			return m, m.Init()
		case "enter":
			if len(m.Notifications) == 0 {
				return m, nil
			}
			note := &m.Notifications[m.Selected]
			var cmds []tea.Cmd
			if !note.Read {
				note.Read = true
				cmds = append(cmds, markRead(m.provider, note.Id))
			}
			if note.ActorId != uuid.Nil {
				cmds = append(cmds, common.Navigate(common.UserProfileScreen, common.Params{UserId: note.ActorId}))
			}
			return m, tea.Batch(cmds...)
		}
		m.scroll()
	}
	return m, nil
}

func (m *Model) scroll() {
	visible := max(1, m.Height/itemHeight)
	if m.Selected < m.Offset {
		m.Offset = m.Selected
	}
	if m.Selected >= m.Offset+visible {
		m.Offset = m.Selected - visible + 1
	}
}

func (m Model) View() string {
	var s strings.Builder

	caption := "notifications"
	if unread := m.Unread(); unread > 0 {
		caption = fmt.Sprintf("notifications (%d new)", unread)
	}
	s.WriteString(common.CaptionStyle.Render(caption))
	s.WriteString("\n")

	if m.session.CurrentUser() == nil {
		s.WriteString(common.EmptyStyle.Render("  Sign in to see your notifications"))
		return s.String()
	}
	if len(m.Notifications) == 0 {
		text := "  No notifications yet"
		if !m.loaded {
			text = "  Loading..."
		}
		s.WriteString(common.EmptyStyle.Render(text))
		return s.String()
	}

	now := time.Now()
	visible := max(1, (m.Height-3)/itemHeight)
	end := min(len(m.Notifications), m.Offset+visible)
	for i := m.Offset; i < end; i++ {
		s.WriteString(m.item(m.Notifications[i], i == m.Selected, now))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) item(n domain.Notification, selected bool, now time.Time) string {
	marker := "  "
	if !n.Read {
		marker = unreadStyle.Render("● ")
	}
	title := titleStyle.Render(fmt.Sprintf("%s %s", n.Type.Icon(), n.Title))
	if selected {
		title = common.SelectedStyle.Render(fmt.Sprintf("%s %s", n.Type.Icon(), n.Title))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		marker+title+"  "+timeStyle.Render(util.TimeAgo(n.CreatedAt, now)),
		"  "+common.MutedStyle.Render(n.Message),
	)
}

func (m Model) Help() string {
	return "↑/↓: select • enter: open • r: refresh"
}

type notificationsLoadedMsg struct {
	notifications []domain.Notification
}

type markedReadMsg struct{}

func loadNotifications(p backend.Notifications, user *domain.User) tea.Cmd {
	if user == nil {
		return nil
	}
	return func() tea.Msg {
		notes, err := p.GetUserNotifications(context.Background(), user.Id)
		if err != nil {
			log.Error("Failed to load notifications", "user", user.Username, "err", err)
		}
		return notificationsLoadedMsg{notifications: notes}
	}
}

func markRead(p backend.Notifications, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		if err := p.MarkNotificationRead(context.Background(), id); err != nil {
			log.Warn("Failed to mark notification read", "id", id, "err", err)
		}
		return markedReadMsg{}
	}
}
