package notify

import (
	"context"
	"sync"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
)

const subscriberBuffer = 32

// Hub fans notifications out to live subscribers (the UI's websocket connections).
// A subscriber that falls behind loses notifications rather than blocking the stores.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan entity.Notification
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan entity.Notification)}
}

func (h *Hub) Notify(_ context.Context, n entity.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Subscribe returns a channel of notifications and a func that ends the subscription
// and closes the channel.
func (h *Hub) Subscribe() (<-chan entity.Notification, func()) {
	ch := make(chan entity.Notification, subscriberBuffer)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
