package secondary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

type SubmissionPort interface {
	// CreateSubmission posts code for grading. The returned submission carries the identifier
	// that later update events are tagged with.
	CreateSubmission(ctx context.Context, problemID string, req domain.CreateSubmissionRequest) (*domain.Submission, error)
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)
	ListUserSubmissions(ctx context.Context) ([]domain.Submission, error)
}
