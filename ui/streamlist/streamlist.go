// Package streamlist renders a vertically paged list of live streams where
// every stream fills the whole viewport.
package streamlist

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// VisibleThreshold is the share of an item that must be on screen for it to
// count as the current one.
const VisibleThreshold = 0.5

const wheelStep = 3

var (
	titleStyle    = common.Bold.Style()
	streamerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_LIGHT_GRAY))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_PRIMARY))
	cardStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_DARK_GRAY)).
			Padding(0, 1)
)

// VisibleIndex returns the first item at least VisibleThreshold visible when
// the list is scrolled by scrollY rows, or -1 for an empty list.
func VisibleIndex(scrollY, itemHeight float64, count int) int {
	if count == 0 {
		return -1
	}
	if itemHeight <= 0 || scrollY <= 0 {
		return 0
	}
	first := math.Floor(scrollY / itemHeight)
	hidden := (scrollY - first*itemHeight) / itemHeight
	i := int(first)
	if 1-hidden < VisibleThreshold {
		i++
	}
	return min(i, count-1)
}

// OpenChatMsg asks the owner to open the chat sheet for Stream.
type OpenChatMsg struct {
	Stream domain.Stream
}

type Model struct {
	Streams []domain.Stream
	Current int
	Width   int
	Height  int
	Empty   string
	scrollY int
}

func New(width, height int, empty string) Model {
	return Model{Width: width, Height: height, Empty: empty}
}

// SetStreams replaces the list and keeps the current position when it still
// exists.
func (m *Model) SetStreams(streams []domain.Stream) {
	m.Streams = streams
	m.scrollTo(m.scrollY)
}

func (m Model) ItemHeight() int {
	return max(1, m.Height)
}

// Selected returns the current stream, nil for an empty list.
func (m Model) Selected() *domain.Stream {
	if m.Current < 0 || m.Current >= len(m.Streams) {
		return nil
	}
	s := m.Streams[m.Current]
	return &s
}

func (m *Model) scrollTo(y int) {
	limit := max(0, (len(m.Streams)-1)*m.ItemHeight())
	m.scrollY = max(0, min(y, limit))
	m.Current = max(0, VisibleIndex(float64(m.scrollY), float64(m.ItemHeight()), len(m.Streams)))
}

func (m *Model) snap(index int) {
	m.scrollTo(index * m.ItemHeight())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		current := m.Current
		m.Width = msg.Width
		m.Height = msg.Height
		m.snap(current)
		return m, nil

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.scrollTo(m.scrollY + wheelStep)
		case tea.MouseButtonWheelUp:
			m.scrollTo(m.scrollY - wheelStep)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "down", "j":
			m.snap(m.Current + 1)
		case "up", "k":
			// a partly scrolled item snaps back to its own top first
			if m.scrollY > m.Current*m.ItemHeight() {
				m.snap(m.Current)
			} else {
				m.snap(m.Current - 1)
			}
		case "g", "home":
			m.snap(0)
		case "G", "end":
			m.snap(len(m.Streams) - 1)
		case "enter":
			if s := m.Selected(); s != nil {
				stream := *s
				return m, func() tea.Msg { return OpenChatMsg{Stream: stream} }
			}
		case " ", "o":
			if s := m.Selected(); s != nil {
				return m, common.Navigate(common.StreamViewScreen, common.Params{Stream: s})
			}
		case "p":
			if s := m.Selected(); s != nil {
				return m, common.Navigate(common.UserProfileScreen, common.Params{UserId: s.Streamer.Id})
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.Streams) == 0 {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, common.EmptyStyle.Render(m.Empty))
	}

	h := m.ItemHeight()
	first := m.scrollY / h
	var rows []string
	for i := first; i < len(m.Streams) && len(rows) < m.scrollY-first*h+m.Height; i++ {
		rows = append(rows, strings.Split(Card(m.Streams[i], m.Width, h), "\n")...)
	}
	skip := m.scrollY - first*h
	rows = rows[min(skip, len(rows)):]
	if len(rows) > m.Height {
		rows = rows[:m.Height]
	}
	return strings.Join(rows, "\n")
}

// Card renders one stream filling width x height cells.
func Card(s domain.Stream, width, height int) string {
	inner := max(10, width-4)

	var b strings.Builder
	b.WriteString(common.LiveBadgeStyle.Render("LIVE"))
	b.WriteString(" ")
	b.WriteString(common.MutedStyle.Render(fmt.Sprintf("👁 %s", util.FormatCount(s.ViewerCount))))
	if s.Category != "" {
		b.WriteString(common.MutedStyle.Render(" · " + s.Category))
	}
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(truncate.StringWithTail(s.Title, uint(inner), "…")))
	b.WriteString("\n")
	b.WriteString(streamerStyle.Render(fmt.Sprintf("%s %s · started %s", s.Streamer.Name(), s.Streamer.Handle(), util.TimeAgo(s.StartedAt, time.Now()))))
	if s.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(wordwrap.String(s.Description, inner))
	}
	if len(s.Tags) > 0 {
		tags := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			tags[i] = "#" + t
		}
		b.WriteString("\n\n")
		b.WriteString(tagStyle.Render(wordwrap.String(strings.Join(tags, " "), inner)))
	}
	b.WriteString("\n\n")
	b.WriteString(common.HelpStyle.UnsetPadding().Render("enter: chat • o: watch • p: profile"))

	box := cardStyle.Width(max(1, width-2)).Height(max(1, height-2)).MaxHeight(height).Render(b.String())
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(box)
}
