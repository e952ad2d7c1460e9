package catalog

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ ICatalogService = (*catalogService)(nil)

// ExampleCount is how many test cases are shown as examples.
const ExampleCount = 2

type catalogService struct {
	problemPort secondary.ProblemPort
	logger      primary.Logger
}

func NewCatalogService(problemPort secondary.ProblemPort, logger primary.Logger) ICatalogService {
	return &catalogService{
		problemPort: problemPort,
		logger:      logger,
	}
}

func (s *catalogService) List(ctx context.Context, search, difficulty string) ([]domain.Problem, error) {
	problems, err := s.problemPort.ListProblems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch problems: %w", err)
	}
	return Filter(problems, search, difficulty), nil
}

func (s *catalogService) Get(ctx context.Context, id string) (*domain.Problem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty problem id", errs.ErrInvalidInput)
	}
	p, err := s.problemPort.GetProblem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch problem %s: %w", id, err)
	}
	return p, nil
}

func (s *catalogService) Create(ctx context.Context, p *domain.Problem) (*domain.Problem, error) {
	if p == nil || strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: problem title is required", errs.ErrInvalidInput)
	}
	return s.problemPort.CreateProblem(ctx, p)
}

func (s *catalogService) Update(ctx context.Context, id string, p *domain.Problem) (*domain.Problem, error) {
	if id == "" || p == nil {
		return nil, fmt.Errorf("%w: problem id and body are required", errs.ErrInvalidInput)
	}
	return s.problemPort.UpdateProblem(ctx, id, p)
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty problem id", errs.ErrInvalidInput)
	}
	return s.problemPort.DeleteProblem(ctx, id)
}

// Filter keeps problems whose title or description contains search, ignoring case, and
// whose difficulty matches. An empty difficulty or DifficultyAll matches everything.
func Filter(problems []domain.Problem, search, difficulty string) []domain.Problem {
	search = strings.ToLower(strings.TrimSpace(search))
	difficulty = strings.TrimSpace(difficulty)

	out := make([]domain.Problem, 0, len(problems))
	for _, p := range problems {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if difficulty != "" && !strings.EqualFold(difficulty, DifficultyAll) &&
			!strings.EqualFold(string(p.Difficulty), difficulty) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// StarterCode returns the user snippet for lang, or an empty string when none exists.
func StarterCode(p *domain.Problem, lang domain.Language) string {
	if p == nil {
		return ""
	}
	stub, ok := p.StubFor(lang)
	if !ok {
		return ""
	}
	return stub.UserSnippet
}
