package search

import (
	"testing"

	"github.com/AustinHatem/crema-live/backend/fixture"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/AustinHatem/crema-live/ui/common"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

func TestFilterUsers(t *testing.T) {
	users := []domain.User{
		{Id: uuid.New(), Username: "sofia_live", DisplayName: "Sofia"},
		{Id: uuid.New(), Username: "dj_marco", DisplayName: "DJ Marco"},
		{Id: uuid.New(), Username: "chef_amy", DisplayName: "Chef Amy"},
	}
	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"SOFIA", 1},
		{"marco", 1},
		{"chef", 1},
		{"_", 3},
		{"  amy ", 1},
		{"nobody", 0},
	}
	for _, tt := range tests {
		if got := len(FilterUsers(users, tt.query)); got != tt.want {
			t.Errorf("FilterUsers(%q) returned %d users, want %d", tt.query, got, tt.want)
		}
	}
}

func TestFilterStreams(t *testing.T) {
	streams := []domain.Stream{
		{Title: "Sunset house mix", Streamer: domain.User{Username: "dj_marco"}},
		{Title: "Fresh pasta", Streamer: domain.User{Username: "chef_amy"}},
	}
	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"HOUSE", 1},
		{"amy", 1},
		{"s", 2},
		{"speedrun", 0},
	}
	for _, tt := range tests {
		if got := len(FilterStreams(streams, tt.query)); got != tt.want {
			t.Errorf("FilterStreams(%q) returned %d streams, want %d", tt.query, got, tt.want)
		}
	}
}

func TestMergeUsersDeduplicates(t *testing.T) {
	a := domain.User{Id: uuid.New(), Username: "b"}
	b := domain.User{Id: uuid.New(), Username: "A"}
	merged := mergeUsers([]domain.User{a}, []domain.User{a, b})
	if len(merged) != 2 || merged[0].Username != "A" {
		t.Errorf("Expected [A b], got %+v", merged)
	}
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	// the remote lookup the last keystroke asked for
	m, _ = m.Update(m.searchUsers(m.Query())())
	return m
}

func TestSearchFlow(t *testing.T) {
	m := New(fixture.New(), 80, 24)
	for _, c := range m.Init()().(tea.BatchMsg) {
		if loaded, ok := c().(poolLoadedMsg); ok {
			m, _ = m.Update(loaded)
		}
	}
	if len(m.Users()) != 6 || len(m.Streams()) != 4 {
		t.Fatalf("Expected everything for an empty query, got %d users and %d streams", len(m.Users()), len(m.Streams()))
	}

	m = typeText(m, "amy")
	if users := m.Users(); len(users) != 1 || users[0].Username != "chef_amy" {
		t.Errorf("Expected chef_amy, got %+v", users)
	}
	if streams := m.Streams(); len(streams) != 1 {
		t.Errorf("Expected the pasta stream, got %d streams", len(streams))
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	nav, ok := cmd().(common.NavigateMsg)
	if !ok || nav.Screen != common.UserProfileScreen {
		t.Fatal("Expected enter to open the user profile")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Active() != Streams {
		t.Fatal("Expected tab to switch to streams")
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	nav, ok = cmd().(common.NavigateMsg)
	if !ok || nav.Screen != common.StreamViewScreen || nav.Params.Stream == nil {
		t.Fatal("Expected enter to open the stream view")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Query() != "" || len(m.Users()) != 6 {
		t.Error("Expected esc to clear the query")
	}
}
