package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

var _ secondary.SubmissionPort = (*SubmissionAPI)(nil)

type SubmissionAPI struct {
	*Client
}

func NewSubmissionAPI(c *Client) *SubmissionAPI {
	return &SubmissionAPI{Client: c}
}

// CreateSubmission sends the problem id both in the query string and the body, as the service expects.
func (a *SubmissionAPI) CreateSubmission(ctx context.Context, problemID string, req domain.CreateSubmissionRequest) (*domain.Submission, error) {
	req.ProblemID = problemID
	query := url.Values{"problemId": []string{problemID}}

	var s domain.Submission
	if err := a.do(ctx, http.MethodPost, "/submissions/create", query, req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *SubmissionAPI) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	var s domain.Submission
	if err := a.do(ctx, http.MethodGet, "/submissions/"+url.PathEscape(id), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *SubmissionAPI) ListUserSubmissions(ctx context.Context) ([]domain.Submission, error) {
	var list []domain.Submission
	if err := a.do(ctx, http.MethodGet, "/submissions/user", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
