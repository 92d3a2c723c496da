// Package registry is the shared state the rest of the system is built
// around: concurrent per-entity stores for couriers, orders, and
// assignments, plus the queue and event broadcaster every producer and the
// assignment engine hold references to. The registry is the sole owner of
// entity records; ingress and the engine mutate through its primitives,
// never by holding their own copies.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"dispatch-router/internal/broadcast"
	"dispatch-router/internal/domain"
	"dispatch-router/internal/queue"
	"dispatch-router/pkg/cache"
	"dispatch-router/pkg/metrics"
)

// ErrNotFound is returned by Get/WithLock when no record exists for the ID.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "registry: entity not found" }

// CourierStore is a concurrent map of couriers keyed by ID.
type CourierStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Courier
}

func newCourierStore() *CourierStore {
	return &CourierStore{items: make(map[uuid.UUID]domain.Courier)}
}

// Upsert inserts or overwrites a courier record.
func (s *CourierStore) Upsert(c domain.Courier) {
	s.mu.Lock()
	s.items[c.ID] = c
	s.mu.Unlock()
}

// Get returns a copy of the courier, or ErrNotFound.
func (s *CourierStore) Get(id uuid.UUID) (domain.Courier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return domain.Courier{}, ErrNotFound
	}
	return c, nil
}

// WithLock takes an exclusive borrow on a single courier record, scoped to
// fn: fn receives the current value and returns the value to store. The
// lock is released on every exit path, including a panic inside fn. fn must
// not perform I/O or block — the store-wide lock is held for its duration.
func (s *CourierStore) WithLock(id uuid.UUID, fn func(domain.Courier) domain.Courier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	s.items[id] = fn(c)
	return nil
}

// Snapshot returns a point-in-time copy of every courier. Point-in-time
// consistency across keys is not guaranteed if Upsert/WithLock race with
// Snapshot; a single entry's value is always internally consistent.
func (s *CourierStore) Snapshot() []domain.Courier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Courier, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	return out
}

// Len reports the current number of couriers.
func (s *CourierStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// OrderStore is a concurrent map of delivery orders keyed by ID.
type OrderStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.DeliveryOrder
}

func newOrderStore() *OrderStore {
	return &OrderStore{items: make(map[uuid.UUID]domain.DeliveryOrder)}
}

// Upsert inserts or overwrites an order record.
func (s *OrderStore) Upsert(o domain.DeliveryOrder) {
	s.mu.Lock()
	s.items[o.ID] = o
	s.mu.Unlock()
}

// Get returns a copy of the order, or ErrNotFound.
func (s *OrderStore) Get(id uuid.UUID) (domain.DeliveryOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.items[id]
	if !ok {
		return domain.DeliveryOrder{}, ErrNotFound
	}
	return o, nil
}

// Snapshot returns a point-in-time copy of every order.
func (s *OrderStore) Snapshot() []domain.DeliveryOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DeliveryOrder, 0, len(s.items))
	for _, o := range s.items {
		out = append(out, o)
	}
	return out
}

// Len reports the current number of orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// AssignmentStore is a concurrent, append-only map of assignments keyed by
// ID. Assignments are immutable once inserted.
type AssignmentStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Assignment
}

func newAssignmentStore() *AssignmentStore {
	return &AssignmentStore{items: make(map[uuid.UUID]domain.Assignment)}
}

// Insert records a new assignment. Assignments are never overwritten by the
// rest of this system, but Insert does not itself enforce that.
func (s *AssignmentStore) Insert(a domain.Assignment) {
	s.mu.Lock()
	s.items[a.ID] = a
	s.mu.Unlock()
}

// Get returns a copy of the assignment, or ErrNotFound.
func (s *AssignmentStore) Get(id uuid.UUID) (domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return domain.Assignment{}, ErrNotFound
	}
	return a, nil
}

// Snapshot returns a point-in-time copy of every assignment.
func (s *AssignmentStore) Snapshot() []domain.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Assignment, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a)
	}
	return out
}

// Len reports the current number of assignments produced so far.
func (s *AssignmentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Registry is the single owner of all entity records plus the shared
// queue/broadcaster/metrics handles. Ingress handlers and the assignment
// engine each hold a reference to the same Registry.
type Registry struct {
	Couriers    *CourierStore
	Orders      *OrderStore
	Assignments *AssignmentStore
	Queue       *queue.OrderQueue
	Events      *broadcast.Hub
	Metrics     *metrics.Metrics

	// AssignmentCache is an optional cache of committed assignments, keyed
	// by order ID, written by the engine on commit. Nil when caching is
	// disabled; every caller must check for nil before use.
	AssignmentCache *cache.AssignmentCache
}

// New constructs a Registry. orderQueueSize and eventBufferSize size the
// bounded queue and the broadcast ring buffer respectively.
func New(orderQueueSize, eventBufferSize int, m *metrics.Metrics) *Registry {
	return &Registry{
		Couriers:    newCourierStore(),
		Orders:      newOrderStore(),
		Assignments: newAssignmentStore(),
		Queue:       queue.New(orderQueueSize),
		Events:      broadcast.New(eventBufferSize),
		Metrics:     m,
	}
}

// Subscribe returns a fresh broadcast receiver for assignment events.
func (r *Registry) Subscribe() *broadcast.Subscription {
	return r.Events.Subscribe()
}
