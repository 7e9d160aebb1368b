package settings

import (
	"context"
	"strings"
	"testing"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/backend/fixture"
	"github.com/AustinHatem/crema-live/ui/common"
	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func signedIn(t *testing.T) (*fixture.Provider, *auth.Session) {
	t.Helper()
	p := fixture.New()
	s := auth.NewSession(p, nil, "")
	if err := s.SignInDemo(context.Background()); err != nil {
		t.Fatalf("SignInDemo failed: %v", err)
	}
	return p, s
}

func TestToggles(t *testing.T) {
	_, s := signedIn(t)
	m := New(s)
	if !m.Push || m.Private {
		t.Fatal("Expected push on and private off by default")
	}
	m, _ = m.Update(key("enter"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key(" "))
	if m.Push || !m.Private {
		t.Errorf("Expected both toggles to flip, got push=%v private=%v", m.Push, m.Private)
	}
}

func TestLogoutConfirmation(t *testing.T) {
	_, s := signedIn(t)
	m := New(s)
	m.Selected = LogOut

	m, _ = m.Update(key("enter"))
	if m.Confirm != ConfirmLogout || !strings.Contains(m.View(), "@demo") {
		t.Fatal("Expected a logout confirmation")
	}
	m, _ = m.Update(key("n"))
	if m.Confirm != NoConfirm || !s.SignedIn() {
		t.Fatal("Expected n to cancel the logout")
	}

	m, _ = m.Update(key("enter"))
	m, cmd := m.Update(key("y"))
	m, cmd = m.Update(cmd())
	if s.SignedIn() {
		t.Error("Expected the session to be signed out")
	}
	if msg, ok := cmd().(common.SessionChangedMsg); !ok || msg.User != nil {
		t.Error("Expected a signed out session change")
	}
}

func TestDeleteAccountNeedsTwoConfirmations(t *testing.T) {
	p, s := signedIn(t)
	m := New(s)
	m.Selected = DeleteAccount

	m, _ = m.Update(key("enter"))
	m, cmd := m.Update(key("y"))
	if cmd != nil || m.Confirm != ConfirmDeleteFinal {
		t.Fatal("Expected the first y to ask again")
	}
	m, _ = m.Update(key("esc"))
	if m.Confirm != NoConfirm || m.Status != "Deletion cancelled" {
		t.Fatal("Expected esc to cancel the deletion")
	}

	m, _ = m.Update(key("enter"))
	m, _ = m.Update(key("y"))
	m, cmd = m.Update(key("y"))
	m, _ = m.Update(cmd())
	if !m.Deleted || s.SignedIn() {
		t.Error("Expected the account to be deleted and signed out")
	}
	if _, err := p.GetUser(context.Background(), fixture.DemoUserId); !backend.IsNotFound(err) {
		t.Errorf("Expected the demo user to be gone, got %v", err)
	}
	if !strings.Contains(m.View(), "Account deleted") {
		t.Error("Expected a goodbye")
	}
}
