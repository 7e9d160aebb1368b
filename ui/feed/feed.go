// Package feed is the home screen: live streams of followed users and all
// live streams on two horizontally paged tabs.
package feed

import (
	"context"
	"strings"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/chat"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/ui/streamlist"
	"github.com/AustinHatem/crema-live/ui/tabs"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

type Tab int

const (
	Following Tab = iota
	Live
)

var labels = []string{"Following", "Live"}

func (t Tab) String() string {
	return labels[t]
}

type streamsLoadedMsg struct {
	tab     Tab
	streams []domain.Stream
	err     error
}

type Model struct {
	Width  int
	Height int

	provider backend.Provider
	session  *auth.Session
	header   tabs.Header
	sync     tabs.Sync
	lists    [2]streamlist.Model
	chat     chat.Model
}

func New(p backend.Provider, s *auth.Session, width, height int) Model {
	m := Model{
		provider: p,
		session:  s,
		header:   tabs.NewHeader(labels, tabs.DefaultMetrics),
		sync:     tabs.NewSync(len(labels), float64(width)),
		lists: [2]streamlist.Model{
			streamlist.New(width, height, "Follow streamers to see them here"),
			streamlist.New(width, height, "No live streams right now"),
		},
		chat: chat.New(chat.Sheet, p, s, width, height),
	}
	m.Resize(width, height)
	return m
}

func (m Model) Active() Tab {
	return Tab(m.sync.Active)
}

// ChatOpen reports whether the chat sheet covers the feed.
func (m Model) ChatOpen() bool {
	return m.chat.IsOpen()
}

// Close tears down the chat sheet's subscription.
func (m *Model) Close() {
	m.chat.Close()
}

func (m *Model) Resize(width, height int) {
	m.Width = width
	m.Height = height
	m.sync.Resize(float64(width))
	for i := range m.lists {
		m.lists[i], _ = m.lists[i].Update(tea.WindowSizeMsg{Width: width, Height: m.pageHeight()})
	}
	m.chat.Resize(width, m.sheetHeight())
}

func (m Model) pageHeight() int {
	return max(1, m.Height-2)
}

func (m Model) sheetHeight() int {
	return max(8, m.pageHeight()*3/5)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(Following), m.load(Live))
}

func (m Model) load(tab Tab) tea.Cmd {
	p := m.provider
	user := m.session.CurrentUser()
	return func() tea.Msg {
		ctx := context.Background()
		var streams []domain.Stream
		var err error
		switch tab {
		case Following:
			if user == nil {
				return streamsLoadedMsg{tab: tab}
			}
			streams, err = p.GetFollowingStreams(ctx, user.Id)
		default:
			streams, err = p.GetLiveStreams(ctx)
		}
		if err != nil {
			log.Error("Failed to load streams", "tab", tab, "err", err)
		}
		return streamsLoadedMsg{tab: tab, streams: streams, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case streamsLoadedMsg:
		if msg.err != nil {
			return m, common.Alert("Could not load streams", msg.err.Error())
		}
		m.lists[msg.tab].SetStreams(msg.streams)
		return m, nil

	case common.StreamsChangedMsg, common.SessionChangedMsg:
		return m, m.Init()

	case streamlist.OpenChatMsg:
		return m, m.OpenChat(msg.Stream)

	case tabs.FrameMsg, tabs.SettleMsg, tabs.PressMsg, tabs.DragMsg:
		_, cmd := m.sync.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.chat.IsOpen() {
			return m, nil
		}
		if press := m.header.Mouse(msg, msg.X, msg.Y); press != nil {
			_, cmd := m.sync.Update(press)
			return m, cmd
		}
		var cmd tea.Cmd
		m.lists[m.sync.Active], cmd = m.lists[m.sync.Active].Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.chat.IsOpen() {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "left", "h":
			return m, m.sync.Press(m.sync.Active - 1)
		case "right", "l":
			return m, m.sync.Press(m.sync.Active + 1)
		case "1":
			return m, m.sync.Press(int(Following))
		case "2":
			return m, m.sync.Press(int(Live))
		case "<":
			return m, m.sync.Drag(-tabs.WheelStep)
		case ">":
			return m, m.sync.Drag(tabs.WheelStep)
		case "r":
			return m, m.Init()
		}
		var cmd tea.Cmd
		m.lists[m.sync.Active], cmd = m.lists[m.sync.Active].Update(msg)
		return m, cmd
	}

	// everything else may belong to the chat overlay
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	pages := []string{m.lists[Following].View(), m.lists[Live].View()}
	body := m.sync.Pager.View(pages, m.pageHeight())

	if m.chat.IsOpen() {
		rows := strings.Split(body, "\n")
		sheet := strings.Split(m.chat.View(), "\n")
		keep := max(0, len(rows)-len(sheet))
		body = strings.Join(append(rows[:keep], sheet...), "\n")
	}
	return m.header.View(m.sync.Progress()) + "\n" + body
}

// Help lists the keys of the current state for the shell's help line.
func (m Model) Help() string {
	if m.chat.IsOpen() {
		return "enter: send • tab: scroll/gifts • esc: close chat"
	}
	return "←/→: switch tab • ↑/↓: next stream • enter: chat • o: watch • p: profile • r: refresh"
}
