// Package fixture is the in-memory provider used for demos and tests. Nothing
// it holds survives a restart, and chat sends are not persisted: every chat
// session opens with the same static history.
package fixture

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type follow struct {
	follower  uuid.UUID
	following uuid.UUID
}

type Provider struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*domain.User
	streams       []*domain.Stream
	follows       map[follow]time.Time
	notifications []*domain.Notification
	chat          []domain.ChatMessage
}

var _ backend.Provider = (*Provider)(nil)

func New() *Provider {
	now := time.Now()
	p := &Provider{
		users:   make(map[uuid.UUID]*domain.User),
		follows: make(map[follow]time.Time),
	}
	for _, u := range users(now) {
		p.users[u.Id] = &u
	}
	p.streams = streams(now, p.users)
	p.notifications = notifications(now)
	p.chat = chatMessages(now)
	for _, f := range seedFollows {
		p.follows[follow{f[0], f[1]}] = now.AddDate(0, -1, 0)
	}
	return p
}

func (p *Provider) Name() string { return "fixture" }

func (p *Provider) Close() error { return nil }

// Users

func (p *Provider) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.users[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (p *Provider) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u := p.findUsername(username)
	if u == nil {
		return nil, backend.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (p *Provider) findUsername(username string) *domain.User {
	for _, u := range p.users {
		if strings.EqualFold(u.Username, username) {
			return u
		}
	}
	return nil
}

func (p *Provider) SearchUsers(ctx context.Context, term string) ([]domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	term = strings.ToLower(term)
	var out []domain.User
	for _, u := range p.users {
		if strings.HasPrefix(strings.ToLower(u.Username), term) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > backend.SearchResultsLimit {
		out = out[:backend.SearchResultsLimit]
	}
	return out, nil
}

func (p *Provider) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	update.Apply(u)
	for _, s := range p.streams {
		if s.Streamer.Id == id {
			s.Streamer = *u
		}
	}
	c := *u
	return &c, nil
}

func (p *Provider) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.findUsername(username) == nil, nil
}

// Accounts

func (p *Provider) CreateAccount(ctx context.Context, email, password, username string, birthday time.Time) (*domain.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findUsername(username) != nil {
		return nil, backend.ErrUsernameTaken
	}
	for _, u := range p.users {
		if strings.EqualFold(u.Email, email) {
			return nil, backend.ErrEmailTaken
		}
	}
	u := &domain.User{
		Id:          uuid.New(),
		Username:    username,
		DisplayName: username,
		Email:       email,
		Birthday:    birthday,
		CreatedAt:   time.Now(),
	}
	p.users[u.Id] = u
	log.Info("Fixture account created", "username", username)
	c := *u
	return &c, nil
}

// Authenticate accepts any password. A known email signs into that account,
// anything else signs into the demo account.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	demo, ok := p.users[DemoUserId]
	if !ok {
		return nil, backend.ErrInvalidCredentials
	}
	c := *demo
	return &c, nil
}

func (p *Provider) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[id]; !ok {
		return backend.ErrNotFound
	}
	delete(p.users, id)
	for f := range p.follows {
		if f.follower == id || f.following == id {
			delete(p.follows, f)
		}
	}
	kept := p.streams[:0]
	for _, s := range p.streams {
		if s.Streamer.Id != id {
			kept = append(kept, s)
		}
	}
	p.streams = kept
	notes := p.notifications[:0]
	for _, n := range p.notifications {
		if n.UserId != id && n.ActorId != id {
			notes = append(notes, n)
		}
	}
	p.notifications = notes
	return nil
}

// Streams

func (p *Provider) CreateStream(ctx context.Context, s domain.SaveStream) (uuid.UUID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	streamer, ok := p.users[s.StreamerId]
	if !ok {
		return uuid.Nil, fmt.Errorf("creating stream: %w", backend.ErrNotFound)
	}
	streamer.IsStreaming = true
	stream := &domain.Stream{
		Id:          uuid.New(),
		Title:       s.Title,
		Description: s.Description,
		Thumbnail:   s.Thumbnail,
		Streamer:    *streamer,
		StartedAt:   time.Now(),
		Category:    s.Category,
		Tags:        s.Tags,
		IsLive:      true,
	}
	p.streams = append(p.streams, stream)
	return stream.Id, nil
}

func (p *Provider) GetStream(ctx context.Context, id uuid.UUID) (*domain.Stream, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.streams {
		if s.Id == id {
			c := *s
			return &c, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (p *Provider) GetLiveStreams(ctx context.Context) ([]domain.Stream, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.liveStreams(func(*domain.Stream) bool { return true }), nil
}

func (p *Provider) GetFollowingStreams(ctx context.Context, userId uuid.UUID) ([]domain.Stream, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.liveStreams(func(s *domain.Stream) bool {
		_, ok := p.follows[follow{userId, s.Streamer.Id}]
		return ok
	}), nil
}

func (p *Provider) liveStreams(keep func(*domain.Stream) bool) []domain.Stream {
	var out []domain.Stream
	for _, s := range p.streams {
		if s.IsLive && keep(s) {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > backend.LiveStreamLimit {
		out = out[:backend.LiveStreamLimit]
	}
	return out
}

func (p *Provider) EndStream(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.streams {
		if s.Id == id {
			now := time.Now()
			s.IsLive = false
			s.EndedAt = &now
			if u, ok := p.users[s.Streamer.Id]; ok {
				u.IsStreaming = false
			}
			return nil
		}
	}
	return backend.ErrNotFound
}

func (p *Provider) UpdateViewerCount(ctx context.Context, id uuid.UUID, count int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.streams {
		if s.Id == id {
			s.ViewerCount = count
			return nil
		}
	}
	return backend.ErrNotFound
}

// Chat

// SendChatMessage is accepted and dropped.
func (p *Provider) SendChatMessage(ctx context.Context, streamId uuid.UUID, msg domain.ChatMessage) error {
	return nil
}

func (p *Provider) ChatMessages(ctx context.Context, streamId uuid.UUID) ([]domain.ChatMessage, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.ChatMessage, len(p.chat))
	for i, m := range p.chat {
		m.StreamId = streamId
		out[i] = m
	}
	return out, nil
}

// SubscribeChat delivers the static history once.
func (p *Provider) SubscribeChat(ctx context.Context, streamId uuid.UUID, cb backend.ChatCallback) (func(), error) {
	msgs, err := p.ChatMessages(ctx, streamId)
	if err != nil {
		return nil, err
	}
	cb(msgs)
	return func() {}, nil
}

// Follows

func (p *Provider) FollowUser(ctx context.Context, followerId, targetId uuid.UUID) error {
	if followerId == targetId {
		return backend.ErrSelfFollow
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	follower, ok := p.users[followerId]
	if !ok {
		return backend.ErrNotFound
	}
	target, ok := p.users[targetId]
	if !ok {
		return backend.ErrNotFound
	}
	key := follow{followerId, targetId}
	if _, exists := p.follows[key]; exists {
		return nil
	}
	p.follows[key] = time.Now()
	follower.Following++
	target.Followers++
	return nil
}

func (p *Provider) UnfollowUser(ctx context.Context, followerId, targetId uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := follow{followerId, targetId}
	if _, exists := p.follows[key]; !exists {
		return nil
	}
	delete(p.follows, key)
	if u, ok := p.users[followerId]; ok && u.Following > 0 {
		u.Following--
	}
	if u, ok := p.users[targetId]; ok && u.Followers > 0 {
		u.Followers--
	}
	return nil
}

func (p *Provider) IsFollowing(ctx context.Context, followerId, targetId uuid.UUID) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.follows[follow{followerId, targetId}]
	return ok, nil
}

func (p *Provider) FollowerIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []uuid.UUID
	for f := range p.follows {
		if f.following == userId {
			out = append(out, f.follower)
		}
	}
	return out, nil
}

// Notifications

func (p *Provider) CreateNotification(ctx context.Context, n domain.Notification) error {
	if n.Id == uuid.Nil {
		n.Id = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, &n)
	return nil
}

func (p *Provider) GetUserNotifications(ctx context.Context, userId uuid.UUID) ([]domain.Notification, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []domain.Notification
	for _, n := range p.notifications {
		if n.UserId == userId {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > backend.NotificationLimit {
		out = out[:backend.NotificationLimit]
	}
	return out, nil
}

func (p *Provider) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.notifications {
		if n.Id == id {
			n.Read = true
			return nil
		}
	}
	return backend.ErrNotFound
}
