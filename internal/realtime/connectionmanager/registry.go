package connectionmanager

import (
	"sync"

	"github.com/google/uuid"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
)

type entry[T any] struct {
	id primary.Subscription
	fn T
}

// Registry holds callbacks in registration order. Add and Remove are safe to call repeatedly
// from any goroutine.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries []entry[T]
}

func (r *Registry[T]) Add(fn T) primary.Subscription {
	id := primary.Subscription(uuid.NewString())
	r.mu.Lock()
	r.entries = append(r.entries, entry[T]{id: id, fn: fn})
	r.mu.Unlock()
	return id
}

// Remove drops the callback. Unknown or already removed handles are ignored.
func (r *Registry[T]) Remove(id primary.Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry[T]) Clear() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Snapshot returns the callbacks in registration order.
func (r *Registry[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.fn)
	}
	return out
}

// ConnectionManager owns the subscriber registries shared by everything that listens to the
// real-time channel.
type ConnectionManager struct {
	Updates Registry[primary.UpdateCallback]
	States  Registry[primary.StateListener]
	Logger  primary.Logger
}

func NewConnectionManager(logger primary.Logger) *ConnectionManager {
	return &ConnectionManager{Logger: logger}
}

// DispatchUpdate hands an event to every update subscriber, in registration order, on the
// calling goroutine. A panicking subscriber is logged and does not stop the others.
func (cm *ConnectionManager) DispatchUpdate(ev domain.UpdateEvent) {
	for _, cb := range cm.Updates.Snapshot() {
		cm.safeCall(func() { cb(ev) })
	}
}

func (cm *ConnectionManager) DispatchState(state domain.ConnectionState, err error) {
	for _, l := range cm.States.Snapshot() {
		cm.safeCall(func() { l(state, err) })
	}
}

func (cm *ConnectionManager) safeCall(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			cm.Logger.Error("Subscriber panicked", "panic", rec)
		}
	}()
	fn()
}
