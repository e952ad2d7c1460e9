package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/adapter/logging"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

type fakeProblemPort struct {
	problems []domain.Problem
	err      error
	deleted  []string
}

func (f *fakeProblemPort) ListProblems(context.Context) ([]domain.Problem, error) {
	return f.problems, f.err
}

func (f *fakeProblemPort) GetProblem(_ context.Context, id string) (*domain.Problem, error) {
	for i := range f.problems {
		if f.problems[i].ID == id {
			return &f.problems[i], nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeProblemPort) CreateProblem(_ context.Context, p *domain.Problem) (*domain.Problem, error) {
	c := *p
	c.ID = "new"
	return &c, nil
}

func (f *fakeProblemPort) UpdateProblem(_ context.Context, id string, p *domain.Problem) (*domain.Problem, error) {
	c := *p
	c.ID = id
	return &c, nil
}

func (f *fakeProblemPort) DeleteProblem(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

var sample = []domain.Problem{
	{ID: "1", Title: "Two Sum", Description: "Find two numbers", Difficulty: domain.DifficultyEasy},
	{ID: "2", Title: "Longest Path", Description: "Graph search over a DAG", Difficulty: domain.DifficultyHard},
	{ID: "3", Title: "Median", Description: "Find the median of two arrays", Difficulty: domain.DifficultyMedium},
}

func ids(problems []domain.Problem) []string {
	out := make([]string, 0, len(problems))
	for _, p := range problems {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(sample, "", "")))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(sample, "", "all")))
	assert.Equal(t, []string{"1", "3"}, ids(Filter(sample, "TWO", "")))
	assert.Equal(t, []string{"2"}, ids(Filter(sample, "dag", "all")))
	assert.Equal(t, []string{"1"}, ids(Filter(sample, "", "Easy")))
	assert.Equal(t, []string{"3"}, ids(Filter(sample, "two", "medium")))
	assert.Empty(t, Filter(sample, "nothing", ""))
}

func TestStarterCode(t *testing.T) {
	p := &domain.Problem{CodeStubs: []domain.CodeStub{
		{Language: domain.LanguageJava, UserSnippet: "class Solution {}"},
		{Language: domain.LanguagePython, UserSnippet: "def solve():\n    pass"},
	}}
	assert.Equal(t, "class Solution {}", StarterCode(p, domain.LanguageJava))
	assert.Equal(t, "", StarterCode(p, domain.LanguageCPP))
	assert.Equal(t, "", StarterCode(nil, domain.LanguageJava))
}

func TestCatalogService(t *testing.T) {
	port := &fakeProblemPort{problems: sample}
	svc := NewCatalogService(port, logging.NewNopLogger())
	ctx := context.Background()

	list, err := svc.List(ctx, "median", "all")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(list))

	p, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Longest Path", p.Title)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = svc.Get(ctx, " ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Create(ctx, &domain.Problem{})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	created, err := svc.Create(ctx, &domain.Problem{Title: "X"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)

	updated, err := svc.Update(ctx, "1", &domain.Problem{Title: "Y"})
	require.NoError(t, err)
	assert.Equal(t, "1", updated.ID)

	require.NoError(t, svc.Delete(ctx, "1"))
	assert.Equal(t, []string{"1"}, port.deleted)
}

func TestCatalogService_ListError(t *testing.T) {
	svc := NewCatalogService(&fakeProblemPort{err: errors.New("down")}, logging.NewNopLogger())
	_, err := svc.List(context.Background(), "", "")
	assert.Error(t, err)
}
