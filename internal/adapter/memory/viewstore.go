// Package memory holds in-process stores used when Redis or PostgreSQL are not configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

var (
	_ secondary.ViewStore         = (*ViewStore)(nil)
	_ secondary.HistoryRepository = (*HistoryRepository)(nil)
)

type ViewStore struct {
	mu     sync.RWMutex
	views  map[string]domain.SubmissionView
	active string
}

func NewViewStore() *ViewStore {
	return &ViewStore{views: make(map[string]domain.SubmissionView)}
}

func (s *ViewStore) SaveView(_ context.Context, view domain.SubmissionView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if view.SubmissionID == "" {
		s.active = ""
		return nil
	}
	s.views[view.SubmissionID] = view.Clone()
	s.active = view.SubmissionID
	return nil
}

func (s *ViewStore) GetView(_ context.Context, submissionID string) (*domain.SubmissionView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[submissionID]
	if !ok {
		return nil, nil
	}
	c := v.Clone()
	return &c, nil
}

func (s *ViewStore) GetActiveView(ctx context.Context) (*domain.SubmissionView, error) {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == "" {
		return nil, nil
	}
	return s.GetView(ctx, active)
}

// HistoryRepository keeps entries for the life of the process.
type HistoryRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.HistoryEntry
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{entries: make(map[string]domain.HistoryEntry)}
}

func (r *HistoryRepository) SaveEntry(_ context.Context, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.SubmissionID] = *entry
	return nil
}

func (r *HistoryRepository) ListEntries(_ context.Context, problemID string, limit int) ([]*domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.HistoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if problemID != "" && e.ProblemID != problemID {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
