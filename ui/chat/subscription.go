package chat

import (
	"context"
	"sync"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// subscription forwards provider snapshots into the Bubble Tea loop. Only
// the newest undelivered snapshot is kept, so a slow reader never blocks the
// provider.
type subscription struct {
	snapshots   chan []domain.ChatMessage
	done        chan struct{}
	once        sync.Once
	unsubscribe func()
}

type subscribedMsg struct {
	gen int
	sub *subscription
	err error
}

type snapshotMsg struct {
	gen      int
	messages []domain.ChatMessage
}

func newSubscription() *subscription {
	return &subscription{
		snapshots: make(chan []domain.ChatMessage, 1),
		done:      make(chan struct{}),
	}
}

func (s *subscription) deliver(msgs []domain.ChatMessage) {
	for {
		select {
		case <-s.done:
			return
		case s.snapshots <- msgs:
			return
		default:
			select {
			case <-s.snapshots:
			default:
			}
		}
	}
}

func (s *subscription) close() {
	s.once.Do(func() {
		close(s.done)
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

// wait blocks until the next snapshot or until the subscription closes.
func (s *subscription) wait(gen int) tea.Cmd {
	return func() tea.Msg {
		select {
		case msgs := <-s.snapshots:
			return snapshotMsg{gen: gen, messages: msgs}
		case <-s.done:
			return nil
		}
	}
}

// binding ties a subscription to one open session of one overlay. Releasing
// it closes the subscription, even one still being set up, so a session torn
// down before its subscription arrives does not leak it.
type binding struct {
	mu       sync.Mutex
	released bool
	sub      *subscription
}

func (b *binding) attach(sub *subscription) bool {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		sub.close()
		return false
	}
	b.sub = sub
	b.mu.Unlock()
	return true
}

func (b *binding) release() {
	b.mu.Lock()
	b.released = true
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()
	if sub != nil {
		sub.close()
	}
}

func subscribe(c backend.Chat, streamId uuid.UUID, gen int, b *binding) tea.Cmd {
	return func() tea.Msg {
		sub := newSubscription()
		unsubscribe, err := c.SubscribeChat(context.Background(), streamId, sub.deliver)
		if err != nil {
			return subscribedMsg{gen: gen, err: err}
		}
		sub.unsubscribe = unsubscribe
		if !b.attach(sub) {
			return subscribedMsg{gen: gen}
		}
		return subscribedMsg{gen: gen, sub: sub}
	}
}
