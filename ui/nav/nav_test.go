package nav

import (
	"testing"

	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/google/uuid"
)

func TestNavigateAndBack(t *testing.T) {
	s := NewStack(common.FeedScreen)
	userId := uuid.New()

	s.Navigate(common.UserProfileScreen, common.Params{UserId: userId})
	s.Navigate(common.SettingsScreen, common.Params{})
	if s.Depth() != 3 || s.Current().Screen != common.SettingsScreen {
		t.Fatalf("Expected settings on top of 3 entries, got %v of %d", s.Current().Screen, s.Depth())
	}

	if !s.GoBack() {
		t.Fatal("Expected GoBack to pop")
	}
	if cur := s.Current(); cur.Screen != common.UserProfileScreen || cur.Params.UserId != userId {
		t.Errorf("Expected the profile with its params, got %+v", cur)
	}

	s.GoBack()
	if s.GoBack() {
		t.Error("GoBack on the root should report false")
	}
	if s.Current().Screen != common.FeedScreen {
		t.Error("The root must survive")
	}
}

func TestReset(t *testing.T) {
	s := NewStack(common.FeedScreen)
	s.Navigate(common.StreamViewScreen, common.Params{})
	s.Reset(common.NotificationsScreen)
	if s.Depth() != 1 || s.Root() != common.NotificationsScreen || s.Current().Screen != common.NotificationsScreen {
		t.Errorf("Expected a single notifications entry, got %+v", s)
	}
}
