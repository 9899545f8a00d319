// Package notify fans out "workouts changed" signals to per-user subscribers.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Hub delivers at most one pending signal per subscriber: bursts of changes
// coalesce into a single wake-up since receivers recompute from scratch.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[uuid.UUID]map[int]chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]map[int]chan struct{}),
	}
}

// Subscribe registers a listener for uid. The returned cancel func unregisters it
// and closes the channel; calling it more than once is safe.
func (h *Hub) Subscribe(uid uuid.UUID) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan struct{}, 1)
	if h.subs[uid] == nil {
		h.subs[uid] = make(map[int]chan struct{})
	}
	h.subs[uid][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[uid], id)
			if len(h.subs[uid]) == 0 {
				delete(h.subs, uid)
			}
			close(ch)
		})
	}
}

// Publish wakes every subscriber of uid without blocking.
func (h *Hub) Publish(uid uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[uid] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Subscribers(uid uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[uid])
}
