// Package golive is the go-live sheet. Going live only records the stream;
// there is no capture or encoding behind it.
package golive

import (
	"context"
	"fmt"
	"strings"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const MaxDescription = 300

type State int

const (
	Editing State = iota
	Live
	ConfirmEnd
)

type liveCheckedMsg struct {
	userId uuid.UUID
	stream *domain.Stream
}

type startedMsg struct {
	stream *domain.Stream
	err    error
}

type endedMsg struct {
	err error
}

type Model struct {
	State  State
	Stream *domain.Stream
	Err    string
	Width  int
	Height int

	provider    backend.Provider
	session     *auth.Session
	title       textinput.Model
	description textarea.Model
	focus       int
	busy        bool
}

func New(p backend.Provider, s *auth.Session, width, height int) Model {
	title := textinput.New()
	title.Placeholder = "What are you streaming?"
	title.CharLimit = domain.MaxStreamTitle
	title.Width = 50
	title.Focus()

	description := textarea.New()
	description.Placeholder = "Tell viewers what to expect"
	description.CharLimit = MaxDescription
	description.ShowLineNumbers = false
	description.SetWidth(50)
	description.SetHeight(3)

	return Model{provider: p, session: s, title: title, description: description, Width: width, Height: height}
}

// Init looks up a stream the user may already be running from another
// session.
func (m Model) Init() tea.Cmd {
	if m.session.CurrentUser() == nil {
		return nil
	}
	return tea.Batch(textinput.Blink, m.check())
}

func (m Model) check() tea.Cmd {
	user := m.session.CurrentUser()
	if user == nil {
		return nil
	}
	p := m.provider
	return func() tea.Msg {
		streams, err := p.GetLiveStreams(context.Background())
		if err != nil {
			log.Warn("Failed to check for a running stream", "err", err)
		}
		for i := range streams {
			if streams[i].Streamer.Id == user.Id {
				return liveCheckedMsg{userId: user.Id, stream: &streams[i]}
			}
		}
		return liveCheckedMsg{userId: user.Id}
	}
}

func (m Model) Title() string {
	return m.title.Value()
}

func (m *Model) SetTitle(s string) {
	m.title.SetValue(s)
}

func (m *Model) SetDescription(s string) {
	m.description.SetValue(s)
}

func (m Model) start() tea.Cmd {
	user := m.session.CurrentUser()
	save := domain.SaveStream{
		Title:       strings.TrimSpace(m.title.Value()),
		Description: util.NormalizeInput(m.description.Value()),
		StreamerId:  user.Id,
	}
	p := m.provider
	return func() tea.Msg {
		ctx := context.Background()
		id, err := p.CreateStream(ctx, save)
		if err != nil {
			return startedMsg{err: err}
		}
		stream, err := p.GetStream(ctx, id)
		if err != nil {
			return startedMsg{err: err}
		}
		sent, err := backend.NotifyStreamStart(ctx, p, user, save.Title)
		if err != nil {
			log.Warn("Failed to notify followers", "streamer", user.Username, "err", err)
		}
		log.Info("Stream started", "streamer", user.Username, "stream", id, "notified", sent)
		return startedMsg{stream: stream}
	}
}

func (m Model) end() tea.Cmd {
	p, id := m.provider, m.Stream.Id
	return func() tea.Msg {
		err := p.EndStream(context.Background(), id)
		if err == nil {
			log.Info("Stream ended", "stream", id)
		}
		return endedMsg{err: err}
	}
}

func streamsChanged() tea.Msg {
	return common.StreamsChangedMsg{}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case liveCheckedMsg:
		if u := m.session.CurrentUser(); msg.stream != nil && u != nil && u.Id == msg.userId {
			m.Stream = msg.stream
			m.State = Live
		}
		return m, nil

	case startedMsg:
		m.busy = false
		if msg.err != nil {
			m.Err = msg.err.Error()
			return m, nil
		}
		m.Stream = msg.stream
		m.State = Live
		m.Err = ""
		m.title.Reset()
		m.description.Reset()
		return m, tea.Batch(
			common.Alert("You're live!", fmt.Sprintf("%q is now streaming", msg.stream.Title)),
			streamsChanged,
		)

	case endedMsg:
		m.busy = false
		if msg.err != nil {
			m.State = Live
			m.Err = msg.err.Error()
			return m, nil
		}
		m.Stream = nil
		m.State = Editing
		return m, tea.Batch(m.title.Focus(), streamsChanged)

	case common.SessionChangedMsg:
		m.Stream = nil
		m.State = Editing
		m.Err = ""
		return m, m.Init()

	case tea.KeyMsg:
		switch m.State {
		case Live:
			if msg.String() == "x" {
				m.State = ConfirmEnd
			}
			return m, nil
		case ConfirmEnd:
			switch msg.String() {
			case "y":
				if m.busy {
					return m, nil
				}
				m.busy = true
				return m, m.end()
			case "n", "esc":
				m.State = Live
			}
			return m, nil
		}
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		m.focus = 1 - m.focus
		if m.focus == 0 {
			m.description.Blur()
			return m, m.title.Focus()
		}
		m.title.Blur()
		return m, m.description.Focus()
	case tea.KeyCtrlS:
		if m.busy {
			return m, nil
		}
		if m.session.CurrentUser() == nil {
			return m, common.Alert("Sign in required", "You must be signed in to go live")
		}
		if err := util.ValidateStreamTitle(m.title.Value(), domain.MaxStreamTitle); err != nil {
			m.Err = err.Error()
			return m, nil
		}
		m.busy = true
		m.Err = ""
		return m, m.start()
	case tea.KeyEnter:
		if m.focus == 0 {
			m.focus = 1
			m.title.Blur()
			return m, m.description.Focus()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder
	switch m.State {
	case Live, ConfirmEnd:
		s.WriteString(common.CaptionStyle.Render("you're live"))
		s.WriteString("\n")
		body := common.LiveBadgeStyle.Render("LIVE") + " " + common.Bold.Style().Render(m.Stream.Title)
		if m.Stream.Description != "" {
			body += "\n" + common.MutedStyle.Render(m.Stream.Description)
		}
		body += "\n\n" + common.MutedStyle.Render(fmt.Sprintf("%s viewers • started %s",
			util.FormatCount(m.Stream.ViewerCount), m.Stream.StartedAt.Format("15:04")))
		s.WriteString(common.SurfaceStyle.Render(body))
		s.WriteString("\n\n")
		if m.State == ConfirmEnd {
			s.WriteString(common.ErrorStyle.PaddingLeft(2).Render("End your stream? (y/n)"))
		} else {
			s.WriteString(common.HelpStyle.Render("x: end stream"))
		}
	default:
		s.WriteString(common.CaptionStyle.Render("go live"))
		s.WriteString("\n")
		form := lipgloss.JoinVertical(lipgloss.Left,
			common.MutedStyle.Render("Title"),
			m.title.View(),
			"",
			common.MutedStyle.Render("Description"),
			m.description.View(),
		)
		s.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(form))
		s.WriteString("\n\n")
		left := domain.MaxStreamTitle - len([]rune(m.title.Value()))
		s.WriteString(common.HelpStyle.Render(fmt.Sprintf("title characters left: %d", left)))
	}
	if m.Err != "" {
		s.WriteString("\n")
		s.WriteString(common.ErrorStyle.PaddingLeft(2).Render(m.Err))
	}
	return s.String()
}

func (m Model) Help() string {
	switch m.State {
	case Live:
		return "x: end stream"
	case ConfirmEnd:
		return "y: end • n: keep streaming"
	}
	return "tab: next field • ctrl+s: go live"
}
