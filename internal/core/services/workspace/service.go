package workspace

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// IWorkspaceService is the problem-detail flow: pick a problem and language, then submit.
type IWorkspaceService interface {
	SelectProblem(ctx context.Context, problemID string) (*domain.Problem, error)
	// SelectLanguage switches language and returns its starter code.
	SelectLanguage(lang domain.Language) (string, error)
	Problem() *domain.Problem
	Language() domain.Language
	StarterCode() string
	Submit(ctx context.Context, code string) (*domain.Submission, error)
	// Resume follows a submission created earlier, starting from its fetched state.
	Resume(ctx context.Context, submission *domain.Submission) error
	Close()
}
