package backend

import (
	"sync"

	"github.com/AustinHatem/crema-live/domain"
	"github.com/google/uuid"
)

// Hub fans chat snapshots out to the subscribers of a stream.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[uuid.UUID]map[int]ChatCallback
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[int]ChatCallback)}
}

func (h *Hub) Subscribe(streamId uuid.UUID, cb ChatCallback) (unsubscribe func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[streamId] == nil {
		h.subs[streamId] = make(map[int]ChatCallback)
	}
	h.subs[streamId][id] = cb
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[streamId], id)
			if len(h.subs[streamId]) == 0 {
				delete(h.subs, streamId)
			}
		})
	}
}

// Publish hands every subscriber its own copy of msgs.
func (h *Hub) Publish(streamId uuid.UUID, msgs []domain.ChatMessage) {
	h.mu.RLock()
	callbacks := make([]ChatCallback, 0, len(h.subs[streamId]))
	for _, cb := range h.subs[streamId] {
		callbacks = append(callbacks, cb)
	}
	h.mu.RUnlock()

	for _, cb := range callbacks {
		cb(append([]domain.ChatMessage(nil), msgs...))
	}
}

func (h *Hub) Subscribers(streamId uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[streamId])
}
