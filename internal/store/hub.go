package store

import "sync"

// Hub is a minimal change-notification fanout shared by the backends.
// Callbacks run synchronously on the writing goroutine, so subscribers must
// not block; the intended use is flipping a dirty flag or scheduling work.
type Hub struct {
	mu          sync.Mutex
	subscribers map[int]func()
	nextID      int
}

func (h *Hub) Subscribe(fn func()) (cancel func()) {
	h.mu.Lock()
	if h.subscribers == nil {
		h.subscribers = make(map[int]func())
	}
	id := h.nextID
	h.nextID++
	h.subscribers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
}

// Notify invokes every subscriber. Called by backends after successful writes.
func (h *Hub) Notify() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
