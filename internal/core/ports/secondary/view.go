package secondary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// ViewStore keeps the latest view snapshot for readers outside the watch process.
type ViewStore interface {
	SaveView(ctx context.Context, view domain.SubmissionView) error
	GetView(ctx context.Context, submissionID string) (*domain.SubmissionView, error)
	GetActiveView(ctx context.Context) (*domain.SubmissionView, error)
}

// HistoryRepository records terminal submission results.
type HistoryRepository interface {
	SaveEntry(ctx context.Context, entry *domain.HistoryEntry) error
	ListEntries(ctx context.Context, problemID string, limit int) ([]*domain.HistoryEntry, error)
}
