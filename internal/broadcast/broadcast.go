// Package broadcast is a multi-subscriber, slow-subscriber-tolerant fan-out
// of assignment events. Publish never blocks: a subscriber that falls
// behind its buffer silently drops intermediate events instead of stalling
// the assignment engine or any other subscriber.
package broadcast

import (
	"sync"
	"sync/atomic"

	"dispatch-router/internal/domain"
)

// Hub is the broadcaster. The zero value is not usable; construct with New.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	nextID      uint64
	bufferSize  int

	published atomic.Int64
	dropped   atomic.Int64
}

type subscriber struct {
	ch     chan domain.Assignment
	lagged atomic.Uint64
}

// New creates a Hub whose per-subscriber buffer holds bufferSize events
// before the subscriber starts lagging.
func New(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
		bufferSize:  bufferSize,
	}
}

// Subscription is a live receiver returned by Subscribe. Events returns the
// channel of delivered assignments; Lagged reports how many events this
// subscriber has missed because it fell behind.
type Subscription struct {
	hub *Hub
	id  uint64
	sub *subscriber
}

// Events returns the channel assignments are delivered on. It is closed
// when the Subscription is closed.
func (s *Subscription) Events() <-chan domain.Assignment {
	return s.sub.ch
}

// Lagged returns the number of events this subscriber has missed since it
// subscribed, because its buffer was full when they were published.
func (s *Subscription) Lagged() uint64 {
	return s.sub.lagged.Load()
}

// Close detaches the subscriber from the hub. Safe to call once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.subscribers[s.id]; ok {
		delete(s.hub.subscribers, s.id)
		close(s.sub.ch)
	}
}

// Subscribe returns a fresh receiver whose cursor starts at the current
// write position; events published before Subscribe returns are not
// delivered to it.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	sub := &subscriber{ch: make(chan domain.Assignment, h.bufferSize)}
	h.subscribers[id] = sub

	return &Subscription{hub: h, id: id, sub: sub}
}

// Publish delivers an assignment to every current subscriber. It never
// blocks: a subscriber whose buffer is full drops this event and its lag
// counter increments, instead of stalling the publisher.
func (h *Hub) Publish(event domain.Assignment) {
	h.published.Add(1)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.ch <- event:
		default:
			sub.lagged.Add(1)
			h.dropped.Add(1)
		}
	}
}

// SubscriberCount reports how many subscriptions are currently attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Stats summarizes lifetime publish/drop counters for observability.
type Stats struct {
	Published int64
	Dropped   int64
}

// Stats returns a snapshot of the hub's lifetime counters.
func (h *Hub) Stats() Stats {
	return Stats{Published: h.published.Load(), Dropped: h.dropped.Load()}
}

// Close detaches and closes every current subscription. The hub itself
// remains usable for new Subscribe calls afterward.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		close(sub.ch)
		delete(h.subscribers, id)
	}
}
