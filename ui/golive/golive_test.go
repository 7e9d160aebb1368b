package golive

import (
	"context"
	"testing"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend/fixture"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	tea "github.com/charmbracelet/bubbletea"
)

func press(m Model, key string) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

func TestGoLiveAndEnd(t *testing.T) {
	ctx := context.Background()
	p := fixture.New()
	s := auth.NewSession(p, nil, "")
	if err := s.SignInDemo(ctx); err != nil {
		t.Fatalf("SignInDemo failed: %v", err)
	}
	sofia, _ := p.GetUserByUsername(ctx, "sofia_live")
	if err := p.FollowUser(ctx, sofia.Id, fixture.DemoUserId); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}

	m := New(p, s, 80, 24)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.Err == "" || m.State != Editing {
		t.Fatal("Expected an empty title to be rejected")
	}

	m.SetTitle("Testing the new mic")
	m.SetDescription("Say hi")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("Expected ctrl+s to start the stream")
	}
	m, cmd = m.Update(cmd())
	if m.State != Live || m.Stream == nil || m.Stream.Title != "Testing the new mic" {
		t.Fatalf("Expected to be live, got state %d", m.State)
	}
	var alerted, changed bool
	for _, c := range cmd().(tea.BatchMsg) {
		switch c().(type) {
		case common.AlertMsg:
			alerted = true
		case common.StreamsChangedMsg:
			changed = true
		}
	}
	if !alerted || !changed {
		t.Error("Expected a success alert and a stream list reload")
	}
	if m.Title() != "" {
		t.Error("Expected the form to be cleared")
	}

	live, _ := p.GetLiveStreams(ctx)
	if len(live) != 5 {
		t.Errorf("Expected 5 live streams, got %d", len(live))
	}
	notes, _ := p.GetUserNotifications(ctx, sofia.Id)
	if len(notes) == 0 || notes[0].Type != domain.NotificationStreamStart {
		t.Error("Expected followers to be told about the stream")
	}

	m, _ = press(m, "x")
	if m.State != ConfirmEnd {
		t.Fatal("Expected x to ask for confirmation")
	}
	m, _ = press(m, "n")
	if m.State != Live {
		t.Fatal("Expected n to keep streaming")
	}
	m, _ = press(m, "x")
	m, cmd = press(m, "y")
	m, _ = m.Update(cmd())
	if m.State != Editing || m.Stream != nil {
		t.Error("Expected the stream to end")
	}
	live, _ = p.GetLiveStreams(ctx)
	if len(live) != 4 {
		t.Errorf("Expected 4 live streams after ending, got %d", len(live))
	}
}

func TestGoLiveSignedOut(t *testing.T) {
	p := fixture.New()
	m := New(p, auth.NewSession(p, nil, ""), 80, 24)
	if m.Init() != nil {
		t.Error("Expected nothing to load when signed out")
	}
	m.SetTitle("Hello")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if _, ok := cmd().(common.AlertMsg); !ok {
		t.Error("Expected a sign in alert")
	}
}

func TestResumesRunningStream(t *testing.T) {
	ctx := context.Background()
	p := fixture.New()
	s := auth.NewSession(p, nil, "")
	if err := s.SignInDemo(ctx); err != nil {
		t.Fatalf("SignInDemo failed: %v", err)
	}
	if _, err := p.CreateStream(ctx, domain.SaveStream{Title: "Already on", StreamerId: fixture.DemoUserId}); err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}

	m := New(p, s, 80, 24)
	m, _ = m.Update(m.check()())
	if m.State != Live || m.Stream.Title != "Already on" {
		t.Error("Expected the running stream to be picked up")
	}
}
