package storage

import (
	"context"
	"sync"
)

// Hub fans change notifications out to subscribers keyed by logical path.
// Notifications carry no payload: subscribers re-read what they need.
// Each subscriber has a buffer of one, so a burst of writes coalesces into
// a single pending signal and Publish never blocks.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe returns a channel that receives a signal whenever any of keys is
// published. The subscription ends and the channel is closed when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, keys ...string) <-chan struct{} {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	for _, k := range keys {
		set, ok := h.subs[k]
		if !ok {
			set = make(map[chan struct{}]struct{})
			h.subs[k] = set
		}
		set[ch] = struct{}{}
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		for _, k := range keys {
			if set, ok := h.subs[k]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, k)
				}
			}
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish signals every subscriber of each key.
func (h *Hub) Publish(keys ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, k := range keys {
		for ch := range h.subs[k] {
			select {
			case ch <- struct{}{}:
			default:
				// a signal is already pending
			}
		}
	}
}

// Subscribers returns the number of live subscriptions on key.
func (h *Hub) Subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key])
}
