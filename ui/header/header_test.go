package header

import (
	"strings"
	"testing"

	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		user   *domain.User
		handle string
	}{
		{"signed out", nil, "guest"},
		{"signed in", &domain.User{Username: "sofia_live"}, "@sofia_live"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(tt.user, "Live", 80)
			if !strings.Contains(out, util.GetNameAndVersion()) {
				t.Errorf("Expected app name in %q", out)
			}
			if !strings.Contains(out, tt.handle) || !strings.Contains(out, "Live") {
				t.Errorf("Expected %q and the title in %q", tt.handle, out)
			}
			if w := lipgloss.Width(out); w != 80 {
				t.Errorf("Expected 80 cells, got %d", w)
			}
		})
	}
}

func TestUpdateTracksSizeAndSession(t *testing.T) {
	m := Model{Title: "Feed"}
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.Width != 100 {
		t.Errorf("Expected width 100, got %d", m.Width)
	}

	u := &domain.User{Username: "demo"}
	m, _ = m.Update(common.SessionChangedMsg{User: u})
	if !strings.Contains(m.View(), "@demo") {
		t.Error("Expected the handle after a session change")
	}

	m, _ = m.Update(common.SessionChangedMsg{})
	if !strings.Contains(m.View(), "guest") {
		t.Error("Expected guest after sign out")
	}
}
