// Package search finds users and live streams. Both result lists sit on
// pages synchronized with a Users/Streams tab header.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/ui/tabs"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"
)

type Tab int

const (
	Users Tab = iota
	Streams
)

var labels = []string{"Users", "Streams"}

type poolLoadedMsg struct {
	users   []domain.User
	streams []domain.Stream
	err     error
}

type usersFoundMsg struct {
	query string
	users []domain.User
}

type Model struct {
	Width  int
	Height int

	provider backend.Provider
	input    textinput.Model
	header   tabs.Header
	sync     tabs.Sync
	pool     []domain.User
	found    []domain.User
	streams  []domain.Stream
	selected [2]int
}

func New(p backend.Provider, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Search users and streams"
	ti.Prompt = "🔍 "
	ti.CharLimit = 50
	ti.Focus()

	m := Model{
		provider: p,
		input:    ti,
		header:   tabs.NewHeader(labels, tabs.DefaultMetrics),
		sync:     tabs.NewSync(len(labels), float64(width)),
	}
	m.Resize(width, height)
	return m
}

func (m *Model) Resize(width, height int) {
	m.Width = width
	m.Height = height
	m.input.Width = max(10, width-6)
	m.sync.Resize(float64(width))
}

func (m Model) Active() Tab {
	return Tab(m.sync.Active)
}

func (m Model) Query() string {
	return m.input.Value()
}

// Users returns the user results for the current query.
func (m Model) Users() []domain.User {
	return FilterUsers(mergeUsers(m.pool, m.found), m.Query())
}

// Streams returns the stream results for the current query.
func (m Model) Streams() []domain.Stream {
	return FilterStreams(m.streams, m.Query())
}

func (m Model) Init() tea.Cmd {
	p := m.provider
	return tea.Batch(textinput.Blink, func() tea.Msg {
		ctx := context.Background()
		users, err := p.SearchUsers(ctx, "")
		if err != nil {
			return poolLoadedMsg{err: err}
		}
		streams, err := p.GetLiveStreams(ctx)
		return poolLoadedMsg{users: users, streams: streams, err: err}
	})
}

func (m Model) searchUsers(query string) tea.Cmd {
	p := m.provider
	return func() tea.Msg {
		users, err := p.SearchUsers(context.Background(), query)
		if err != nil {
			log.Warn("User search failed", "query", query, "err", err)
		}
		return usersFoundMsg{query: query, users: users}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case poolLoadedMsg:
		if msg.err != nil {
			return m, common.Alert("Search unavailable", msg.err.Error())
		}
		m.pool = msg.users
		m.streams = msg.streams
		m.clampSelection()
		return m, nil

	case usersFoundMsg:
		if msg.query == strings.TrimSpace(m.Query()) {
			m.found = msg.users
			m.clampSelection()
		}
		return m, nil

	case common.StreamsChangedMsg:
		return m, m.Init()

	case tabs.FrameMsg, tabs.SettleMsg, tabs.PressMsg, tabs.DragMsg:
		_, cmd := m.sync.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		// the header sits below the input row
		if press := m.header.Mouse(msg, msg.X, msg.Y-2); press != nil {
			_, cmd := m.sync.Update(press)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return m, m.sync.Press((m.sync.Active + 1) % len(labels))
		case "shift+tab":
			return m, m.sync.Press((m.sync.Active + len(labels) - 1) % len(labels))
		case "up", "ctrl+p":
			m.selected[m.sync.Active] = max(0, m.selected[m.sync.Active]-1)
			return m, nil
		case "down", "ctrl+n":
			m.selected[m.sync.Active]++
			m.clampSelection()
			return m, nil
		case "esc":
			m.input.Reset()
			m.found = nil
			m.clampSelection()
			return m, nil
		case "enter":
			return m, m.open()
		}

		before := m.Query()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if q := strings.TrimSpace(m.Query()); m.Query() != before && q != "" {
			m.selected = [2]int{}
			return m, tea.Batch(cmd, m.searchUsers(q))
		}
		m.clampSelection()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) clampSelection() {
	counts := [2]int{len(m.Users()), len(m.Streams())}
	for i, n := range counts {
		m.selected[i] = max(0, min(m.selected[i], n-1))
	}
}

func (m Model) open() tea.Cmd {
	switch m.Active() {
	case Users:
		users := m.Users()
		if len(users) == 0 {
			return nil
		}
		return common.Navigate(common.UserProfileScreen, common.Params{UserId: users[m.selected[Users]].Id})
	default:
		streams := m.Streams()
		if len(streams) == 0 {
			return nil
		}
		s := streams[m.selected[Streams]]
		return common.Navigate(common.StreamViewScreen, common.Params{Stream: &s})
	}
}

func (m Model) View() string {
	pageHeight := max(1, m.Height-4)
	pages := []string{m.usersView(pageHeight), m.streamsView(pageHeight)}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.input.View(),
		"",
		m.header.View(m.sync.Progress()),
		m.sync.Pager.View(pages, pageHeight),
	)
}

func (m Model) usersView(height int) string {
	users := m.Users()
	if len(users) == 0 {
		return common.EmptyStyle.Render(fmt.Sprintf("No users found for %q", m.Query()))
	}
	var s strings.Builder
	for i, u := range users {
		if i >= height {
			break
		}
		line := fmt.Sprintf("%s %s · %s followers", u.Name(), u.Handle(), util.FormatCount(u.Followers))
		if u.IsStreaming {
			line += " " + common.LiveBadgeStyle.Render("LIVE")
		}
		s.WriteString(m.row(line, i == m.selected[Users]))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) streamsView(height int) string {
	streams := m.Streams()
	if len(streams) == 0 {
		return common.EmptyStyle.Render(fmt.Sprintf("No live streams found for %q", m.Query()))
	}
	var s strings.Builder
	for i, st := range streams {
		if i >= height {
			break
		}
		line := fmt.Sprintf("%s · %s · 👁 %s · %s",
			truncate.StringWithTail(st.Title, uint(max(10, m.Width/2)), "…"),
			st.Streamer.Handle(),
			util.FormatCount(st.ViewerCount),
			util.TimeAgo(st.StartedAt, time.Now()))
		s.WriteString(m.row(line, i == m.selected[Streams]))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) row(line string, selected bool) string {
	if selected {
		return "→ " + common.SelectedStyle.Render(line)
	}
	return "  " + line
}

func (m Model) Help() string {
	return "type to search • tab: users/streams • ↑/↓: select • enter: open • esc: clear"
}
