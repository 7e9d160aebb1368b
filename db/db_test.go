package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/google/uuid"
)

// setupTestDB opens an in-memory SQLite database with the schema applied
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser is a helper to create accounts through the public API
func createTestUser(t *testing.T, db *DB, username string) *domain.User {
	t.Helper()
	u, err := db.CreateAccount(context.Background(), username+"@example.com", "secret1", username, time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return u
}

func TestCreateAccountAndAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, db, "alice")
	if u.Username != "alice" || u.DisplayName != "alice" {
		t.Errorf("Unexpected user: %+v", u)
	}
	if u.Birthday.Year() != 1990 {
		t.Errorf("Expected birthday year 1990, got %d", u.Birthday.Year())
	}

	got, err := db.Authenticate(ctx, "ALICE@example.com", "secret1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.Id != u.Id {
		t.Errorf("Expected Id %s, got %s", u.Id, got.Id)
	}

	if _, err := db.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, backend.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for a wrong password, got %v", err)
	}
	if _, err := db.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, backend.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for an unknown email, got %v", err)
	}
}

func TestCreateAccountConflicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "alice")

	if _, err := db.CreateAccount(ctx, "other@example.com", "secret1", "Alice", time.Now()); !errors.Is(err, backend.ErrUsernameTaken) {
		t.Errorf("Expected ErrUsernameTaken, got %v", err)
	}
	if _, err := db.CreateAccount(ctx, "alice@example.com", "secret1", "alice2", time.Now()); !errors.Is(err, backend.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}

	ok, err := db.IsUsernameAvailable(ctx, "ALICE")
	if err != nil {
		t.Fatalf("IsUsernameAvailable failed: %v", err)
	}
	if ok {
		t.Error("Username check should be case-insensitive")
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUser(context.Background(), uuid.New())
	if !backend.IsNotFound(err) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	_, err = db.GetUserByUsername(context.Background(), "ghost")
	if !backend.IsNotFound(err) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")

	name, bio := "Alice Test", "Test bio"
	updated, err := db.UpdateProfile(ctx, u.Id, domain.ProfileUpdate{
		DisplayName: &name,
		Bio:         &bio,
		Languages:   []string{"English", "French"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.DisplayName != name || updated.Bio != bio {
		t.Errorf("Unexpected profile: %+v", updated)
	}

	reread, _ := db.GetUser(ctx, u.Id)
	if reread.DisplayName != name {
		t.Errorf("Expected display name %s, got %s", name, reread.DisplayName)
	}
	if len(reread.Languages) != 2 || reread.Languages[1] != "French" {
		t.Errorf("Expected languages to round-trip, got %v", reread.Languages)
	}
}

func TestSearchUsersPrefix(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "alice")
	createTestUser(t, db, "alfred")
	createTestUser(t, db, "bob")
	createTestUser(t, db, "al_x")

	users, err := db.SearchUsers(ctx, "al")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(users))
	}

	// the underscore is literal, not a wildcard
	users, _ = db.SearchUsers(ctx, "al_")
	if len(users) != 1 || users[0].Username != "al_x" {
		t.Errorf("Expected only al_x, got %v", users)
	}
}

func TestStreamLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")

	id, err := db.CreateStream(ctx, domain.SaveStream{
		Title:      "Hello world",
		StreamerId: u.Id,
		Tags:       []string{"music", "live"},
	})
	if err != nil {
		t.Fatalf("CreateStream failed: %v", err)
	}

	s, err := db.GetStream(ctx, id)
	if err != nil {
		t.Fatalf("GetStream failed: %v", err)
	}
	if !s.IsLive || s.EndedAt != nil {
		t.Error("Expected a live stream")
	}
	if s.Title != "Hello world" || s.Streamer.Username != "alice" {
		t.Errorf("Unexpected stream: %+v", s)
	}
	if !s.Streamer.IsStreaming {
		t.Error("Expected streamer to be marked streaming")
	}
	if len(s.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", s.Tags)
	}

	if err := db.UpdateViewerCount(ctx, id, 42); err != nil {
		t.Fatalf("UpdateViewerCount failed: %v", err)
	}
	if err := db.EndStream(ctx, id); err != nil {
		t.Fatalf("EndStream failed: %v", err)
	}

	s, _ = db.GetStream(ctx, id)
	if s.IsLive || s.EndedAt == nil {
		t.Error("Expected stream to be ended")
	}
	if s.ViewerCount != 42 {
		t.Errorf("Expected 42 viewers, got %d", s.ViewerCount)
	}

	live, _ := db.GetLiveStreams(ctx)
	if len(live) != 0 {
		t.Errorf("Expected no live streams, got %d", len(live))
	}

	if err := db.EndStream(ctx, uuid.New()); !backend.IsNotFound(err) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateStreamEndsPrevious(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")

	first, _ := db.CreateStream(ctx, domain.SaveStream{Title: "one", StreamerId: u.Id})
	second, _ := db.CreateStream(ctx, domain.SaveStream{Title: "two", StreamerId: u.Id})

	live, err := db.GetLiveStreams(ctx)
	if err != nil {
		t.Fatalf("GetLiveStreams failed: %v", err)
	}
	if len(live) != 1 || live[0].Id != second {
		t.Errorf("Expected only the second stream live, got %v", live)
	}
	s, _ := db.GetStream(ctx, first)
	if s.IsLive {
		t.Error("First stream should have been ended")
	}
}

func TestLiveStreamsNewestFirstAndFollowing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	aliceStream, _ := db.CreateStream(ctx, domain.SaveStream{Title: "a", StreamerId: alice.Id})
	time.Sleep(5 * time.Millisecond)
	bobStream, _ := db.CreateStream(ctx, domain.SaveStream{Title: "b", StreamerId: bob.Id})

	live, _ := db.GetLiveStreams(ctx)
	if len(live) != 2 || live[0].Id != bobStream || live[1].Id != aliceStream {
		t.Errorf("Expected newest first, got %v", live)
	}

	if err := db.FollowUser(ctx, carol.Id, alice.Id); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	following, err := db.GetFollowingStreams(ctx, carol.Id)
	if err != nil {
		t.Fatalf("GetFollowingStreams failed: %v", err)
	}
	if len(following) != 1 || following[0].Id != aliceStream {
		t.Errorf("Expected only alice's stream, got %v", following)
	}
}

func TestFollows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.FollowUser(ctx, alice.Id, bob.Id); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	// duplicate follow is ignored
	if err := db.FollowUser(ctx, alice.Id, bob.Id); err != nil {
		t.Fatalf("Duplicate FollowUser failed: %v", err)
	}

	ok, _ := db.IsFollowing(ctx, alice.Id, bob.Id)
	if !ok {
		t.Error("Expected alice to follow bob")
	}
	b, _ := db.GetUser(ctx, bob.Id)
	if b.Followers != 1 {
		t.Errorf("Expected 1 follower, got %d", b.Followers)
	}
	a, _ := db.GetUser(ctx, alice.Id)
	if a.Following != 1 {
		t.Errorf("Expected 1 following, got %d", a.Following)
	}

	ids, _ := db.FollowerIds(ctx, bob.Id)
	if len(ids) != 1 || ids[0] != alice.Id {
		t.Errorf("Expected alice as follower, got %v", ids)
	}

	if err := db.UnfollowUser(ctx, alice.Id, bob.Id); err != nil {
		t.Fatalf("UnfollowUser failed: %v", err)
	}
	ok, _ = db.IsFollowing(ctx, alice.Id, bob.Id)
	if ok {
		t.Error("Expected follow to be removed")
	}

	if err := db.FollowUser(ctx, alice.Id, alice.Id); !errors.Is(err, backend.ErrSelfFollow) {
		t.Errorf("Expected ErrSelfFollow, got %v", err)
	}
	if err := db.FollowUser(ctx, alice.Id, uuid.New()); !backend.IsNotFound(err) {
		t.Errorf("Expected ErrNotFound for unknown target, got %v", err)
	}
}

func TestChatHistoryOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")
	stream, _ := db.CreateStream(ctx, domain.SaveStream{Title: "chat", StreamerId: u.Id})

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	total := backend.ChatHistoryLimit + 5
	for i := 0; i < total; i++ {
		msg := domain.ChatMessage{
			UserId:    u.Id,
			Username:  u.Username,
			Message:   "m",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := db.SendChatMessage(ctx, stream, msg); err != nil {
			t.Fatalf("SendChatMessage failed: %v", err)
		}
	}

	msgs, err := db.ChatMessages(ctx, stream)
	if err != nil {
		t.Fatalf("ChatMessages failed: %v", err)
	}
	if len(msgs) != backend.ChatHistoryLimit {
		t.Fatalf("Expected %d messages, got %d", backend.ChatHistoryLimit, len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("Messages out of order at %d", i)
		}
	}
	want := base.Add(time.Duration(total-1) * time.Second)
	if !msgs[len(msgs)-1].Timestamp.Equal(want) {
		t.Errorf("Expected last message at %v, got %v", want, msgs[len(msgs)-1].Timestamp)
	}
}

func TestSubscribeChatReceivesUpdates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")
	stream, _ := db.CreateStream(ctx, domain.SaveStream{Title: "chat", StreamerId: u.Id})

	var snapshots [][]domain.ChatMessage
	unsubscribe, err := db.SubscribeChat(ctx, stream, func(msgs []domain.ChatMessage) {
		snapshots = append(snapshots, msgs)
	})
	if err != nil {
		t.Fatalf("SubscribeChat failed: %v", err)
	}
	if len(snapshots) != 1 || len(snapshots[0]) != 0 {
		t.Fatalf("Expected an empty initial snapshot, got %v", snapshots)
	}

	gift, _ := domain.GiftById("3")
	msg := domain.NewChatMessage(stream, u, "Sent a Diamond", time.Time{})
	msg.Gift = &gift
	if err := db.SendChatMessage(ctx, stream, msg); err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}
	if len(snapshots) != 2 || len(snapshots[1]) != 1 {
		t.Fatalf("Expected a second snapshot with one message, got %v", snapshots)
	}
	got := snapshots[1][0]
	if got.Id != msg.Id || got.Gift == nil || got.Gift.Name != "Diamond" {
		t.Errorf("Unexpected message: %+v", got)
	}

	unsubscribe()
	_ = db.SendChatMessage(ctx, stream, domain.NewChatMessage(stream, u, "again", time.Time{}))
	if len(snapshots) != 2 {
		t.Error("Expected no snapshots after unsubscribe")
	}
}

func TestNotifications(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := backend.NotifyFollow(ctx, db, bob, alice.Id); err != nil {
		t.Fatalf("NotifyFollow failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	err := db.CreateNotification(ctx, domain.Notification{
		Type:   domain.NotificationMention,
		Title:  "Mentioned in chat",
		UserId: alice.Id,
	})
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	list, err := db.GetUserNotifications(ctx, alice.Id)
	if err != nil {
		t.Fatalf("GetUserNotifications failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(list))
	}
	if list[0].Type != domain.NotificationMention {
		t.Errorf("Expected newest first, got %s", list[0].Type)
	}
	if list[1].ActorId != bob.Id {
		t.Errorf("Expected actor %s, got %s", bob.Id, list[1].ActorId)
	}

	if err := db.MarkNotificationRead(ctx, list[1].Id); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	list, _ = db.GetUserNotifications(ctx, alice.Id)
	if !list[1].Read || list[0].Read {
		t.Error("Expected only the follow notification to be read")
	}

	if err := db.MarkNotificationRead(ctx, uuid.New()); !backend.IsNotFound(err) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	stream, _ := db.CreateStream(ctx, domain.SaveStream{Title: "bye", StreamerId: alice.Id})
	_ = db.FollowUser(ctx, bob.Id, alice.Id)
	if err := backend.NotifyFollow(ctx, db, bob, alice.Id); err != nil {
		t.Fatalf("NotifyFollow failed: %v", err)
	}
	if err := backend.NotifyFollow(ctx, db, alice, bob.Id); err != nil {
		t.Fatalf("NotifyFollow failed: %v", err)
	}

	if err := db.DeleteAccount(ctx, alice.Id); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if notes, _ := db.GetUserNotifications(ctx, bob.Id); len(notes) != 0 {
		t.Errorf("Expected notifications about alice to be deleted, got %d", len(notes))
	}
	if _, err := db.GetStream(ctx, stream); !backend.IsNotFound(err) {
		t.Errorf("Expected stream to be deleted, got %v", err)
	}
	b, _ := db.GetUser(ctx, bob.Id)
	if b.Following != 0 {
		t.Errorf("Expected follow to cascade, got %d following", b.Following)
	}
	if err := db.DeleteAccount(ctx, alice.Id); !backend.IsNotFound(err) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
