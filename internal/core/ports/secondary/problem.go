package secondary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

type ProblemPort interface {
	ListProblems(ctx context.Context) ([]domain.Problem, error)
	GetProblem(ctx context.Context, id string) (*domain.Problem, error)
	CreateProblem(ctx context.Context, p *domain.Problem) (*domain.Problem, error)
	UpdateProblem(ctx context.Context, id string, p *domain.Problem) (*domain.Problem, error)
	DeleteProblem(ctx context.Context, id string) error
}
