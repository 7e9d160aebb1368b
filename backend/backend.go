// Package backend defines the data provider the client talks to. Two
// implementations exist: the in-memory fixture provider (backend/fixture) and
// the sqlite-backed live provider (db). One is chosen at startup.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/AustinHatem/crema-live/domain"
	"github.com/google/uuid"
)

// Limits applied by every provider.
const (
	LiveStreamLimit    = 20
	ChatHistoryLimit   = 50
	NotificationLimit  = 50
	SearchResultsLimit = 20
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("Username is already taken")
	ErrEmailTaken         = errors.New("An account with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrSelfFollow         = errors.New("You cannot follow yourself")
)

type Users interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// SearchUsers returns users whose username starts with term.
	SearchUsers(ctx context.Context, term string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}

type Accounts interface {
	CreateAccount(ctx context.Context, email, password, username string, birthday time.Time) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type Streams interface {
	CreateStream(ctx context.Context, s domain.SaveStream) (uuid.UUID, error)
	GetStream(ctx context.Context, id uuid.UUID) (*domain.Stream, error)
	// GetLiveStreams returns live streams, newest first.
	GetLiveStreams(ctx context.Context) ([]domain.Stream, error)
	// GetFollowingStreams returns live streams of the users userId follows.
	GetFollowingStreams(ctx context.Context, userId uuid.UUID) ([]domain.Stream, error)
	EndStream(ctx context.Context, id uuid.UUID) error
	UpdateViewerCount(ctx context.Context, id uuid.UUID, count int) error
}

// ChatCallback receives the full ordered message list (ascending timestamp).
// It must not block.
type ChatCallback func([]domain.ChatMessage)

type Chat interface {
	SendChatMessage(ctx context.Context, streamId uuid.UUID, msg domain.ChatMessage) error
	ChatMessages(ctx context.Context, streamId uuid.UUID) ([]domain.ChatMessage, error)
	// SubscribeChat delivers the current list, then the list again on every
	// change. The caller must call unsubscribe on teardown.
	SubscribeChat(ctx context.Context, streamId uuid.UUID, cb ChatCallback) (unsubscribe func(), err error)
}

type Follows interface {
	FollowUser(ctx context.Context, followerId, targetId uuid.UUID) error
	UnfollowUser(ctx context.Context, followerId, targetId uuid.UUID) error
	IsFollowing(ctx context.Context, followerId, targetId uuid.UUID) (bool, error)
	FollowerIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error)
}

type Notifications interface {
	CreateNotification(ctx context.Context, n domain.Notification) error
	// GetUserNotifications returns the recipient's notifications, newest first.
	GetUserNotifications(ctx context.Context, userId uuid.UUID) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
}

type Provider interface {
	Users
	Accounts
	Streams
	Chat
	Follows
	Notifications

	Name() string
	Close() error
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
