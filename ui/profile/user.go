package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type userLoadedMsg struct {
	userId    uuid.UUID
	user      *domain.User
	following bool
	stream    *domain.Stream
	err       error
}

type followToggledMsg struct {
	userId    uuid.UUID
	following bool
	err       error
}

// UserModel is another user's profile.
type UserModel struct {
	UserId    uuid.UUID
	User      *domain.User
	Following bool
	Stream    *domain.Stream
	NotFound  bool
	Width     int
	Height    int
	Status    string
	Error     string

	provider backend.Provider
	session  *auth.Session
	busy     bool
	status   common.StatusClearer
}

func NewUser(p backend.Provider, s *auth.Session, userId uuid.UUID, width, height int) UserModel {
	return UserModel{provider: p, session: s, UserId: userId, Width: width, Height: height}
}

func (m UserModel) Init() tea.Cmd {
	p, s, id := m.provider, m.session, m.UserId
	return func() tea.Msg {
		ctx := context.Background()
		u, err := p.GetUser(ctx, id)
		if err != nil {
			return userLoadedMsg{userId: id, err: err}
		}
		msg := userLoadedMsg{userId: id, user: u}
		if me := s.CurrentUser(); me != nil && me.Id != id {
			msg.following, err = p.IsFollowing(ctx, me.Id, id)
			if err != nil {
				log.Warn("Failed to read follow state", "err", err)
			}
		}
		if u.IsStreaming {
			streams, err := p.GetLiveStreams(ctx)
			if err != nil {
				log.Warn("Failed to load live streams", "err", err)
			}
			for i := range streams {
				if streams[i].Streamer.Id == id {
					msg.stream = &streams[i]
					break
				}
			}
		}
		return msg
	}
}

func (m UserModel) isSelf() bool {
	me := m.session.CurrentUser()
	return me != nil && me.Id == m.UserId
}

func (m UserModel) toggle() tea.Cmd {
	p, id, follow := m.provider, m.UserId, !m.Following
	me := m.session.CurrentUser()
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if follow {
			err = p.FollowUser(ctx, me.Id, id)
			if err == nil {
				if nerr := backend.NotifyFollow(ctx, p, me, id); nerr != nil {
					log.Warn("Failed to notify followed user", "err", nerr)
				}
			}
		} else {
			err = p.UnfollowUser(ctx, me.Id, id)
		}
		return followToggledMsg{userId: id, following: follow, err: err}
	}
}

func (m UserModel) Update(msg tea.Msg) (UserModel, tea.Cmd) {
	switch msg := msg.(type) {
	case userLoadedMsg:
		if msg.userId != m.UserId {
			return m, nil
		}
		if errors.Is(msg.err, backend.ErrNotFound) {
			m.NotFound = true
			return m, nil
		}
		if msg.err != nil {
			return m, common.Alert("Could not load profile", msg.err.Error())
		}
		m.User = msg.user
		m.Following = msg.following
		m.Stream = msg.stream
		return m, nil

	case followToggledMsg:
		if msg.userId != m.UserId {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.Error = msg.err.Error()
			return m, m.status.Start(3 * time.Second)
		}
		m.Following = msg.following
		if m.User != nil {
			if msg.following {
				m.User.Followers++
				m.Status = fmt.Sprintf("Following %s", m.User.Handle())
			} else {
				m.User.Followers = max(0, m.User.Followers-1)
				m.Status = fmt.Sprintf("Unfollowed %s", m.User.Handle())
			}
		}
		return m, m.status.Start(2 * time.Second)

	case tea.KeyMsg:
		switch msg.String() {
		case "f", "enter":
			if m.User == nil || m.busy {
				return m, nil
			}
			if m.session.CurrentUser() == nil {
				return m, common.Alert("Sign in required", auth.ErrNotSignedIn.Error())
			}
			if m.isSelf() {
				m.Error = backend.ErrSelfFollow.Error()
				return m, m.status.Start(2 * time.Second)
			}
			m.busy = true
			return m, m.toggle()
		case "o", "w":
			if m.Stream != nil {
				s := *m.Stream
				return m, common.Navigate(common.StreamViewScreen, common.Params{Stream: &s})
			}
		case "r":
			return m, m.Init()
		}
		return m, nil
	}

	if m.status.Done(msg) {
		m.Status = ""
		m.Error = ""
	}
	return m, nil
}

func (m UserModel) View() string {
	if m.NotFound {
		return common.EmptyStyle.Render("  User not found")
	}
	if m.User == nil {
		return common.EmptyStyle.Render("  Loading...")
	}
	var s strings.Builder
	s.WriteString(renderUser(m.User))
	s.WriteString("\n\n")

	if !m.isSelf() {
		if m.Following {
			s.WriteString(common.InactiveButtonStyle.Render("Following"))
		} else {
			s.WriteString(common.ButtonStyle.Render("Follow"))
		}
		s.WriteString("\n\n")
	}
	if m.Stream != nil {
		s.WriteString(common.LiveBadgeStyle.Render("LIVE"))
		s.WriteString(" " + m.Stream.Title)
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

func (m UserModel) Help() string {
	help := "f: follow/unfollow • esc: back"
	if m.Stream != nil {
		help = "f: follow/unfollow • o: watch live • esc: back"
	}
	return help
}
