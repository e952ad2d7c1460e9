package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

var _ secondary.ProblemPort = (*ProblemAPI)(nil)

type ProblemAPI struct {
	*Client
}

func NewProblemAPI(c *Client) *ProblemAPI {
	return &ProblemAPI{Client: c}
}

func (a *ProblemAPI) ListProblems(ctx context.Context) ([]domain.Problem, error) {
	var problems []domain.Problem
	if err := a.do(ctx, http.MethodGet, "/problems", nil, nil, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

func (a *ProblemAPI) GetProblem(ctx context.Context, id string) (*domain.Problem, error) {
	var p domain.Problem
	if err := a.do(ctx, http.MethodGet, "/problems/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *ProblemAPI) CreateProblem(ctx context.Context, p *domain.Problem) (*domain.Problem, error) {
	var created domain.Problem
	if err := a.do(ctx, http.MethodPost, "/problems", nil, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *ProblemAPI) UpdateProblem(ctx context.Context, id string, p *domain.Problem) (*domain.Problem, error) {
	var updated domain.Problem
	if err := a.do(ctx, http.MethodPut, "/problems/"+url.PathEscape(id), nil, p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *ProblemAPI) DeleteProblem(ctx context.Context, id string) error {
	var resp struct {
		Message string `json:"message"`
	}
	if err := a.do(ctx, http.MethodDelete, "/problems/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return err
	}
	a.logger.Info("Problem deleted", "problemId", id, "message", resp.Message)
	return nil
}
