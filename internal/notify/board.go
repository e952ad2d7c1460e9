package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
)

var _ primary.Notifier = (*Board)(nil)

// Change is what sinks receive. Removed is set when a notification was dismissed.
type Change struct {
	Notification domain.Notification
	Removed      bool
}

// Sink receives every board change in the order it happened.
type Sink func(c Change)

// Board keeps one live notification per identifier. A notification with an existing ID replaces
// the previous one in place.
type Board struct {
	mu      sync.RWMutex
	current map[string]domain.Notification
	order   []string

	sinkMu sync.Mutex
	sinks  []Sink

	now func() time.Time
}

func NewBoard(sinks ...Sink) *Board {
	return &Board{
		current: make(map[string]domain.Notification),
		sinks:   sinks,
		now:     time.Now,
	}
}

// AddSink registers a sink for future changes.
func (b *Board) AddSink(s Sink) {
	b.sinkMu.Lock()
	defer b.sinkMu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Notify shows n. An empty ID gets a fresh one so the notification stands alone.
func (b *Board) Notify(n domain.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = b.now()
	}

	b.mu.Lock()
	if prev, ok := b.current[n.ID]; ok && prev.Kind == n.Kind && prev.Message == n.Message {
		b.mu.Unlock()
		return
	}
	if _, ok := b.current[n.ID]; !ok {
		b.order = append(b.order, n.ID)
	}
	b.current[n.ID] = n
	b.mu.Unlock()

	b.emit(Change{Notification: n})
}

func (b *Board) Dismiss(id string) {
	b.mu.Lock()
	n, ok := b.current[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.current, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	b.emit(Change{Notification: n, Removed: true})
}

func (b *Board) Get(id string) (domain.Notification, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.current[id]
	return n, ok
}

// List returns the live notifications, most recently updated first.
func (b *Board) List() []domain.Notification {
	b.mu.RLock()
	out := make([]domain.Notification, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.current[id])
	}
	b.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (b *Board) emit(c Change) {
	b.sinkMu.Lock()
	sinks := append([]Sink(nil), b.sinks...)
	b.sinkMu.Unlock()

	for _, s := range sinks {
		s(c)
	}
}
