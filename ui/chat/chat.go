// Package chat is the chat overlay of a stream: a bottom sheet over the feed
// or a full-screen stream view. At most one stream is selected at a time and
// a closed overlay holds no messages.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"
)

type State int

const (
	Closed State = iota
	Open
)

type Variant int

const (
	// Sheet sits over the lower part of the feed.
	Sheet Variant = iota
	// Modal fills the screen and has an explicit close key.
	Modal
)

// DismissedIndex is the sheet index reported when the sheet is swiped away.
const DismissedIndex = -1

var (
	usernameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_PRIMARY)).Bold(true)
	giftStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_PRIMARY)).Italic(true)
	sheetStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(lipgloss.Color(common.COLOR_DARK_GRAY)).
			Padding(0, 1)
	handleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_GRAY))
)

// UserSource yields the signed-in user, nil when signed out.
type UserSource interface {
	CurrentUser() *domain.User
}

type Backend interface {
	backend.Chat
	backend.Notifications
}

var lastGen int64

// nextGen is unique across overlays, so events of one never match another.
func nextGen() int {
	return int(atomic.AddInt64(&lastGen, 1))
}

// layoutSettledMsg fires after a message was laid out; the overlay then
// scrolls to the newest message.
type layoutSettledMsg struct {
	gen int
}

type sentMsg struct {
	gen int
	err error
}

// ClosedMsg tells the owner the overlay closed itself.
type ClosedMsg struct{}

type Model struct {
	Variant Variant
	Width   int
	Height  int

	backend  Backend
	users    UserSource
	state    State
	stream   *domain.Stream
	messages []domain.ChatMessage
	// sent by this session and not yet seen in a snapshot
	pending []domain.ChatMessage

	input     textinput.Model
	viewport  viewport.Model
	listFocus bool
	gifts     bool
	giftIndex int
	sub       *subscription
	bind      *binding
	gen       int
	Error     string
}

func New(variant Variant, b Backend, users UserSource, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.CharLimit = util.MaxMessageLength
	ti.Prompt = "› "

	m := Model{
		Variant:  variant,
		backend:  b,
		users:    users,
		input:    ti,
		viewport: viewport.New(0, 0),
	}
	m.Resize(width, height)
	return m
}

func (m Model) State() State {
	return m.state
}

func (m Model) IsOpen() bool {
	return m.state == Open
}

// Stream returns the selected stream, nil when closed.
func (m Model) Stream() *domain.Stream {
	if m.stream == nil {
		return nil
	}
	s := *m.stream
	return &s
}

// Messages returns a copy of the list in display order.
func (m Model) Messages() []domain.ChatMessage {
	return append([]domain.ChatMessage(nil), m.messages...)
}

func (m Model) Input() string {
	return m.input.Value()
}

func (m *Model) SetInput(s string) {
	m.input.SetValue(s)
}

func (m *Model) Resize(width, height int) {
	m.Width = width
	m.Height = height
	m.input.Width = max(10, width-8)
	m.viewport.Width = max(1, width-4)
	m.viewport.Height = max(1, m.listHeight())
	m.refresh()
}

// listHeight leaves room for the stream line, the input and the gift row.
func (m Model) listHeight() int {
	rows := m.Height - 5
	if m.Variant == Modal {
		rows -= 3
	}
	return rows
}

// Open selects stream and loads its chat. The list never carries messages
// from an earlier session.
func (m *Model) Open(stream domain.Stream) tea.Cmd {
	m.teardown()
	m.state = Open
	m.stream = &stream
	m.Error = ""
	m.listFocus = false
	m.input.Focus()
	m.refresh()
	m.bind = &binding{}
	return tea.Batch(textinput.Blink, subscribe(m.backend, stream.Id, m.gen, m.bind))
}

// Close returns to Closed: no selection, an empty input and no subscription.
func (m *Model) Close() {
	m.teardown()
	m.state = Closed
	m.stream = nil
	m.Error = ""
	m.input.Blur()
	m.refresh()
}

// SheetChanged follows the sheet position; DismissedIndex closes it.
func (m *Model) SheetChanged(index int) {
	if index == DismissedIndex {
		m.Close()
	}
}

// teardown drops everything bound to the current session. A fresh gen
// orphans pending snapshots, sends and scroll events.
func (m *Model) teardown() {
	if m.bind != nil {
		m.bind.release()
		m.bind = nil
	}
	m.sub = nil
	m.gen = nextGen()
	m.messages = nil
	m.pending = nil
	m.gifts = false
	m.giftIndex = 0
	m.input.Reset()
}

// Send appends text as a message of the signed-in user. Blank text is
// ignored and leaves the input as it is.
func (m *Model) Send(text string) tea.Cmd {
	if m.state != Open || strings.TrimSpace(text) == "" {
		return nil
	}
	if err := util.ValidateMessage(text); err != nil {
		m.Error = err.Error()
		return nil
	}
	msg, err := m.appendMessage(strings.TrimSpace(text), nil)
	if err != nil {
		m.Error = err.Error()
		return nil
	}
	m.input.Reset()
	return tea.Batch(m.settled(), m.persist(msg, nil))
}

// SendGift appends a gift message and lets the streamer know.
func (m *Model) SendGift(gift domain.Gift) tea.Cmd {
	if m.state != Open {
		return nil
	}
	g := gift
	msg, err := m.appendMessage(fmt.Sprintf("Sent a %s", gift.Name), &g)
	if err != nil {
		m.Error = err.Error()
		return nil
	}
	m.gifts = false
	return tea.Batch(m.settled(), m.persist(msg, &g))
}

func (m *Model) appendMessage(text string, gift *domain.Gift) (domain.ChatMessage, error) {
	user := m.users.CurrentUser()
	if user == nil {
		return domain.ChatMessage{}, auth.ErrNotSignedIn
	}
	var last domain.ChatMessage
	if n := len(m.messages); n > 0 {
		last = m.messages[n-1]
	}
	msg := domain.NewChatMessage(m.stream.Id, user, text, last.Timestamp)
	msg.Gift = gift
	m.messages = append(m.messages, msg)
	m.pending = append(m.pending, msg)
	m.Error = ""
	m.refresh()
	return msg, nil
}

func (m Model) settled() tea.Cmd {
	gen := m.gen
	return func() tea.Msg {
		return layoutSettledMsg{gen: gen}
	}
}

func (m Model) persist(msg domain.ChatMessage, gift *domain.Gift) tea.Cmd {
	b, gen := m.backend, m.gen
	streamer := m.stream.Streamer.Id
	author := m.users.CurrentUser()
	return func() tea.Msg {
		ctx := context.Background()
		if err := b.SendChatMessage(ctx, msg.StreamId, msg); err != nil {
			log.Error("Failed to send chat message", "stream", msg.StreamId, "err", err)
			return sentMsg{gen: gen, err: err}
		}
		if gift != nil && author != nil {
			if err := backend.NotifyGift(ctx, b, author, streamer, *gift); err != nil {
				log.Warn("Failed to notify streamer of gift", "err", err)
			}
		}
		return sentMsg{gen: gen}
	}
}

// merge folds a provider snapshot into the list. Snapshots only hold the
// newest history window, so entries already shown are kept and unseen ones
// are appended in snapshot order; own messages the snapshot does not contain
// yet stay at the end.
func (m *Model) merge(snapshot []domain.ChatMessage) {
	waiting := make(map[uuid.UUID]bool, len(m.pending))
	for _, msg := range m.pending {
		waiting[msg.Id] = true
	}

	shown := make(map[uuid.UUID]bool, len(m.messages)+len(snapshot))
	messages := make([]domain.ChatMessage, 0, len(m.messages)+len(snapshot))
	for _, msg := range m.messages {
		if waiting[msg.Id] {
			continue
		}
		shown[msg.Id] = true
		messages = append(messages, msg)
	}
	for _, msg := range snapshot {
		if !shown[msg.Id] {
			shown[msg.Id] = true
			messages = append(messages, msg)
		}
	}

	var pending []domain.ChatMessage
	for _, msg := range m.pending {
		if !shown[msg.Id] {
			messages = append(messages, msg)
			pending = append(pending, msg)
		}
	}
	m.messages = messages
	m.pending = pending
	m.refresh()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case subscribedMsg:
		// another overlay's, or a released session's; the binding owns it
		if msg.gen != m.gen || m.state != Open {
			return m, nil
		}
		if msg.err != nil {
			m.Error = "Could not load chat"
			return m, common.Alert("Chat unavailable", msg.err.Error())
		}
		if msg.sub == nil {
			return m, nil
		}
		m.sub = msg.sub
		return m, m.sub.wait(m.gen)

	case snapshotMsg:
		if msg.gen != m.gen || m.sub == nil {
			return m, nil
		}
		m.merge(msg.messages)
		return m, tea.Batch(m.sub.wait(m.gen), m.settled())

	case layoutSettledMsg:
		if msg.gen == m.gen && m.state == Open {
			m.viewport.GotoBottom()
		}
		return m, nil

	case sentMsg:
		if msg.gen == m.gen && msg.err != nil {
			m.Error = "Message could not be sent"
		}
		return m, nil

	case tea.KeyMsg:
		if m.state != Open {
			return m, nil
		}
		return m.handleKey(msg)
	}

	if m.state == Open && !m.listFocus {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.gifts {
		switch msg.String() {
		case "left", "h":
			m.giftIndex = (m.giftIndex + len(domain.Gifts) - 1) % len(domain.Gifts)
		case "right", "l":
			m.giftIndex = (m.giftIndex + 1) % len(domain.Gifts)
		case "enter":
			cmd := m.SendGift(domain.Gifts[m.giftIndex])
			return m, cmd
		case "esc", "g":
			m.gifts = false
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.Variant == Modal && !m.listFocus {
			m.focusList()
			return m, nil
		}
		m.SheetChanged(DismissedIndex)
		return m, closed
	case "shift+down":
		if m.Variant == Sheet {
			m.SheetChanged(DismissedIndex)
			return m, closed
		}
	case "tab":
		if m.listFocus {
			m.focusInput()
		} else {
			m.focusList()
		}
		return m, nil
	}

	if m.listFocus {
		switch msg.String() {
		case "x":
			if m.Variant == Modal {
				m.Close()
				return m, closed
			}
		case "g":
			m.gifts = true
		case "i", "enter":
			m.focusInput()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		cmd := m.Send(m.input.Value())
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func closed() tea.Msg {
	return ClosedMsg{}
}

func (m *Model) focusInput() {
	m.listFocus = false
	m.input.Focus()
}

func (m *Model) focusList() {
	m.listFocus = true
	m.input.Blur()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderMessages())
}

func (m Model) renderMessages() string {
	if m.state != Open {
		return ""
	}
	if len(m.messages) == 0 {
		return common.EmptyStyle.Render("No messages yet. Say hi!")
	}
	width := max(10, m.viewport.Width)
	lines := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		text := msg.Message
		if msg.Gift != nil {
			text = giftStyle.Render(fmt.Sprintf("%s %s", msg.Gift.Icon, msg.Message))
		}
		lines = append(lines, wordwrap.String(usernameStyle.Render(msg.Username)+" "+text, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.state != Open {
		return ""
	}
	var b strings.Builder

	if m.Variant == Sheet {
		b.WriteString(lipgloss.PlaceHorizontal(max(1, m.Width-4), lipgloss.Center, handleStyle.Render("───")))
		b.WriteString("\n")
	} else {
		b.WriteString(common.LiveBadgeStyle.Render("LIVE"))
		b.WriteString(" ")
		b.WriteString(common.Bold.Style().Render(m.stream.Title))
		b.WriteString("\n")
		b.WriteString(common.MutedStyle.Render(fmt.Sprintf("%s · %s watching", m.stream.Streamer.Handle(), util.FormatCount(m.stream.ViewerCount))))
		b.WriteString("\n\n")
	}
	b.WriteString(common.Bold.Style().Render("Live chat"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.gifts {
		b.WriteString(m.giftRow())
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	switch {
	case m.Error != "":
		b.WriteString(common.ErrorStyle.Render(m.Error))
	case m.listFocus && m.Variant == Modal:
		b.WriteString(common.HelpStyle.UnsetPadding().Render("↑/↓: scroll • g: gifts • i: type • x: close"))
	case m.listFocus:
		b.WriteString(common.HelpStyle.UnsetPadding().Render("↑/↓: scroll • g: gifts • i: type • esc: close"))
	default:
		b.WriteString(common.HelpStyle.UnsetPadding().Render("enter: send • tab: scroll/gifts • esc: close"))
	}

	if m.Variant == Sheet {
		return sheetStyle.Width(max(1, m.Width-2)).Render(b.String())
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m Model) giftRow() string {
	parts := make([]string, len(domain.Gifts))
	for i, g := range domain.Gifts {
		label := fmt.Sprintf("%s %s %d", g.Icon, g.Name, g.Price)
		if i == m.giftIndex {
			parts[i] = common.ButtonStyle.Render(label)
		} else {
			parts[i] = common.InactiveButtonStyle.Render(label)
		}
	}
	return strings.Join(parts, " ")
}
