package common

import (
	"time"

	"github.com/AustinHatem/crema-live/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Screen names a navigation destination.
type Screen uint

const (
	FeedScreen Screen = iota
	SearchScreen
	LiveScreen
	NotificationsScreen
	ProfileScreen
	UserProfileScreen
	StreamViewScreen
	SettingsScreen
)

func (s Screen) String() string {
	switch s {
	case FeedScreen:
		return "Feed"
	case SearchScreen:
		return "Search"
	case LiveScreen:
		return "Live"
	case NotificationsScreen:
		return "Notifications"
	case ProfileScreen:
		return "Profile"
	case UserProfileScreen:
		return "User"
	case StreamViewScreen:
		return "Stream"
	case SettingsScreen:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Params carries the arguments of a navigation.
type Params struct {
	UserId uuid.UUID
	Stream *domain.Stream
}

// NavigateMsg pushes a screen onto the main stack.
type NavigateMsg struct {
	Screen Screen
	Params Params
}

// BackMsg pops the main stack.
type BackMsg struct{}

// AlertMsg shows a blocking alert until it is dismissed.
type AlertMsg struct {
	Title string
	Body  string
}

// ErrMsg reports a failed backend call.
type ErrMsg struct {
	Err error
}

func (e ErrMsg) Error() string { return e.Err.Error() }

// SessionChangedMsg is sent after sign in, sign up, sign out or a profile
// update so every screen can reload for the new user.
type SessionChangedMsg struct {
	User *domain.User
}

// StreamsChangedMsg asks stream lists to reload.
type StreamsChangedMsg struct{}

type clearStatusMsg struct {
	owner *int
	gen   int
}

// StatusClearer hands out status timers that only clear the status they
// were started for. Copies of a model share the owner pointer.
type StatusClearer struct {
	owner *int
	gen   int
}

// Start returns a command that fires after d. Starting again invalidates the
// previous timer.
func (c *StatusClearer) Start(d time.Duration) tea.Cmd {
	if c.owner == nil {
		c.owner = new(int)
	}
	c.gen++
	msg := clearStatusMsg{owner: c.owner, gen: c.gen}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// Done reports whether msg is the live timer's expiry.
func (c *StatusClearer) Done(msg tea.Msg) bool {
	m, ok := msg.(clearStatusMsg)
	return ok && c.owner != nil && m.owner == c.owner && m.gen == c.gen
}

func Alert(title, body string) tea.Cmd {
	return func() tea.Msg {
		return AlertMsg{Title: title, Body: body}
	}
}

func Navigate(screen Screen, params Params) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, Params: params}
	}
}

func Back() tea.Msg {
	return BackMsg{}
}
