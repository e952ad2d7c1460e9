package catalog

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// DifficultyAll disables the difficulty filter.
const DifficultyAll = "all"

// ICatalogService browses the problem catalog.
type ICatalogService interface {
	List(ctx context.Context, search, difficulty string) ([]domain.Problem, error)
	Get(ctx context.Context, id string) (*domain.Problem, error)
	Create(ctx context.Context, p *domain.Problem) (*domain.Problem, error)
	Update(ctx context.Context, id string, p *domain.Problem) (*domain.Problem, error)
	Delete(ctx context.Context, id string) error
}
