package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/backend/fixture"
	"github.com/AustinHatem/crema-live/db"
	"github.com/AustinHatem/crema-live/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type staticUser struct {
	user *domain.User
}

func (s staticUser) CurrentUser() *domain.User {
	return s.user
}

var viewer = &domain.User{Id: fixture.DemoUserId, Username: "demo"}

func liveStream(t *testing.T, p *fixture.Provider) domain.Stream {
	t.Helper()
	streams, err := p.GetLiveStreams(context.Background())
	if err != nil || len(streams) == 0 {
		t.Fatalf("Expected fixture streams, got %v", err)
	}
	return streams[0]
}

// load runs the subscription handshake the way the event loop would.
func load(t *testing.T, m Model, b Backend, stream domain.Stream) Model {
	t.Helper()
	m, cmd := m.Update(subscribe(b, stream.Id, m.gen, m.bind)())
	if cmd == nil {
		t.Fatalf("Expected to wait for a snapshot, error was %q", m.Error)
	}
	m, _ = m.Update(cmd())
	return m
}

func TestOpenLoadsFixtureChat(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{viewer}, 60, 20)

	if m.State() != Closed || m.Stream() != nil {
		t.Fatal("Expected a new overlay to be closed")
	}
	m.Open(stream)
	if m.State() != Open || m.Stream().Id != stream.Id {
		t.Fatal("Expected the stream to be selected")
	}
	m = load(t, m, p, stream)
	if got := len(m.Messages()); got != 5 {
		t.Errorf("Expected 5 fixture messages, got %d", got)
	}
}

func TestSendAppends(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{viewer}, 60, 20)
	m.Open(stream)
	m = load(t, m, p, stream)

	before := m.Messages()
	m.SetInput("hello there")
	cmd := m.Send(m.Input())
	if cmd == nil {
		t.Fatal("Expected a command after sending")
	}
	after := m.Messages()
	if len(after) != len(before)+1 {
		t.Fatalf("Expected one more message, got %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].Id != before[i].Id {
			t.Fatal("Existing messages must keep their order")
		}
	}
	last := after[len(after)-1]
	if last.Message != "hello there" || last.UserId != viewer.Id || last.Id == uuid.Nil {
		t.Errorf("Unexpected message %+v", last)
	}
	if last.Timestamp.Before(before[len(before)-1].Timestamp) {
		t.Error("Timestamps must stay ascending")
	}
	if m.Input() != "" {
		t.Error("Expected the input to be cleared")
	}
}

func TestSendBlankIsNoop(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{viewer}, 60, 20)
	m.Open(stream)
	m = load(t, m, p, stream)

	for _, text := range []string{"", "   ", "\t\n"} {
		m.SetInput(text)
		if cmd := m.Send(text); cmd != nil {
			t.Errorf("Expected no command for %q", text)
		}
		if len(m.Messages()) != 5 {
			t.Errorf("Blank %q must not append", text)
		}
		if m.Input() != text {
			t.Errorf("Blank send must leave the input untouched, got %q", m.Input())
		}
	}
}

func TestSendSignedOut(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{nil}, 60, 20)
	m.Open(stream)
	m = load(t, m, p, stream)

	if cmd := m.Send("hi"); cmd != nil {
		t.Error("Expected no command when signed out")
	}
	if m.Error == "" || len(m.Messages()) != 5 {
		t.Error("Expected an inline error and no new message")
	}
}

func TestSendGift(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Modal, p, staticUser{viewer}, 60, 30)
	m.Open(stream)
	m = load(t, m, p, stream)

	rose, _ := domain.GiftById("2")
	cmd := m.SendGift(rose)
	msgs := m.Messages()
	last := msgs[len(msgs)-1]
	if last.Message != "Sent a Rose" || last.Gift == nil || last.Gift.Id != "2" {
		t.Errorf("Unexpected gift message %+v", last)
	}

	// the persist command notifies the streamer
	for _, msg := range collect(cmd) {
		m, _ = m.Update(msg)
	}
	notes, _ := p.GetUserNotifications(context.Background(), stream.Streamer.Id)
	found := false
	for _, n := range notes {
		if n.Type == domain.NotificationGift && n.ActorId == viewer.Id {
			found = true
		}
	}
	if !found {
		t.Error("Expected a gift notification for the streamer")
	}
}

func TestCloseResets(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{viewer}, 60, 20)
	m.Open(stream)
	m = load(t, m, p, stream)
	m.Send("hi")
	m.SetInput("half typed")

	m.SheetChanged(0)
	if !m.IsOpen() {
		t.Fatal("Only the dismissed index closes the sheet")
	}

	m.SheetChanged(DismissedIndex)
	if m.IsOpen() || m.Stream() != nil || m.Input() != "" || len(m.Messages()) != 0 {
		t.Error("Expected everything to be reset after closing")
	}
}

func TestReopenStartsFresh(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{viewer}, 60, 20)
	m.Open(stream)
	m = load(t, m, p, stream)
	m.Send("only in the first session")
	m.Close()

	m.Open(stream)
	m = load(t, m, p, stream)
	for _, msg := range m.Messages() {
		if msg.Message == "only in the first session" {
			t.Fatal("A reopened session must start from the fixture state")
		}
	}
}

func TestStaleEventsIgnoredAfterClose(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{viewer}, 60, 20)
	m.Open(stream)
	staleGen, staleBind := m.gen, m.bind
	m.Close()
	m.Open(stream)

	stale := subscribe(p, stream.Id, staleGen, staleBind)()
	if sub := stale.(subscribedMsg).sub; sub != nil {
		t.Error("A subscription arriving after close should be released")
	}
	m, cmd := m.Update(stale)
	if cmd != nil {
		t.Error("A subscription for a closed session should be dropped")
	}
	m, _ = m.Update(snapshotMsg{gen: staleGen, messages: []domain.ChatMessage{{Id: uuid.New()}}})
	if len(m.Messages()) != 0 {
		t.Error("A stale snapshot must not reach the new session")
	}
	m, _ = m.Update(layoutSettledMsg{gen: staleGen})
	if !m.IsOpen() {
		t.Error("A stale settle event must not change the state")
	}
}

func TestKeysCloseVariants(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)

	sheet := New(Sheet, p, staticUser{viewer}, 60, 20)
	sheet.Open(stream)
	sheet, cmd := sheet.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if sheet.IsOpen() {
		t.Error("esc should dismiss the sheet")
	}
	if _, ok := cmd().(ClosedMsg); !ok {
		t.Error("Expected a ClosedMsg")
	}

	modal := New(Modal, p, staticUser{viewer}, 60, 30)
	modal.Open(stream)
	modal, _ = modal.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !modal.IsOpen() || modal.Input() != "x" {
		t.Error("x typed into the input must not close the modal")
	}
	modal, _ = modal.Update(tea.KeyMsg{Type: tea.KeyTab})
	modal, _ = modal.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if modal.IsOpen() {
		t.Error("x on the message list should close the modal")
	}
}

func TestEnterSends(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	m := New(Sheet, p, staticUser{viewer}, 60, 20)
	m.Open(stream)
	m = load(t, m, p, stream)

	m.SetInput("typed")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := m.Messages()
	if msgs[len(msgs)-1].Message != "typed" {
		t.Error("Expected enter to send the input")
	}
}

func TestLiveProviderSnapshots(t *testing.T) {
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	user, err := store.CreateAccount(ctx, "viewer@crema.live", "secret1", "viewer", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	id, err := store.CreateStream(ctx, domain.SaveStream{Title: "test", StreamerId: user.Id})
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}
	stream, _ := store.GetStream(ctx, id)

	m := New(Sheet, store, staticUser{user}, 60, 20)
	m.Open(*stream)
	m, cmd := m.Update(subscribe(store, stream.Id, m.gen, m.bind)())
	m, _ = m.Update(cmd())
	if len(m.Messages()) != 0 {
		t.Fatalf("Expected an empty chat, got %d", len(m.Messages()))
	}
	waiting := m.sub.wait(m.gen)

	send := m.Send("persisted")
	for _, msg := range collect(send) {
		m, _ = m.Update(msg)
	}
	m, _ = m.Update(waiting())

	msgs := m.Messages()
	if len(msgs) != 1 || msgs[0].Message != "persisted" {
		t.Fatalf("Expected the stored message once, got %+v", msgs)
	}
	if len(m.pending) != 0 {
		t.Error("A message seen in a snapshot is no longer pending")
	}

	m.Close()
	if got := m.sub; got != nil {
		t.Error("Expected the subscription to be released")
	}
}

// collect runs cmd and any batch it returns, skipping blocking and timed
// commands the test does not need.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestSessionKeepsMessagesPastHistoryWindow(t *testing.T) {
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	user, err := store.CreateAccount(ctx, "busy@crema.live", "secret1", "busy", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	id, err := store.CreateStream(ctx, domain.SaveStream{Title: "busy chat", StreamerId: user.Id})
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}
	stream, _ := store.GetStream(ctx, id)

	base := time.Now().Add(-time.Hour)
	say := func(i int) domain.ChatMessage {
		msg := domain.ChatMessage{
			Id:        uuid.New(),
			StreamId:  id,
			UserId:    user.Id,
			Username:  user.Username,
			Message:   fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.SendChatMessage(ctx, id, msg); err != nil {
			t.Fatalf("SendChatMessage %d failed: %v", i, err)
		}
		return msg
	}

	var first domain.ChatMessage
	for i := 1; i <= backend.ChatHistoryLimit; i++ {
		msg := say(i)
		if i == 1 {
			first = msg
		}
	}

	m := New(Sheet, store, staticUser{user}, 60, 20)
	m.Open(*stream)
	m = load(t, m, store, *stream)
	if got := len(m.Messages()); got != backend.ChatHistoryLimit {
		t.Fatalf("Expected %d messages on open, got %d", backend.ChatHistoryLimit, got)
	}

	// the next snapshot no longer holds the first message
	waiting := m.sub.wait(m.gen)
	say(backend.ChatHistoryLimit + 1)
	m, _ = m.Update(waiting())

	msgs := m.Messages()
	if len(msgs) != backend.ChatHistoryLimit+1 {
		t.Fatalf("Expected %d messages, got %d", backend.ChatHistoryLimit+1, len(msgs))
	}
	if msgs[0].Id != first.Id {
		t.Errorf("Expected the first message to stay, got %q", msgs[0].Message)
	}
	if last := msgs[len(msgs)-1]; last.Message != fmt.Sprintf("message %d", backend.ChatHistoryLimit+1) {
		t.Errorf("Expected the newest message last, got %q", last.Message)
	}
	m.Close()
}

func TestSubscriptionOfAnotherOverlayUntouched(t *testing.T) {
	p := fixture.New()
	stream := liveStream(t, p)
	sheet := New(Sheet, p, staticUser{viewer}, 60, 20)
	modal := New(Modal, p, staticUser{viewer}, 60, 30)
	sheet.Open(stream)

	msg := subscribe(p, stream.Id, sheet.gen, sheet.bind)()
	modal, _ = modal.Update(msg)
	sheet, cmd := sheet.Update(msg)
	if cmd == nil {
		t.Fatal("Expected the sheet to wait for snapshots")
	}
	select {
	case <-msg.(subscribedMsg).sub.done:
		t.Error("A closed overlay must not release the sheet's subscription")
	default:
	}

	sheet.Close()
	select {
	case <-msg.(subscribedMsg).sub.done:
	default:
		t.Error("Closing the sheet should release its subscription")
	}
}
