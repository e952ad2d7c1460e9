package httpapi

import (
	"context"
	"net/http"

	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

var _ secondary.AuthPort = (*AuthAPI)(nil)

// AuthAPI calls the /auth endpoints of the problem service.
type AuthAPI struct {
	*Client
}

func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{Client: c}
}

func (a *AuthAPI) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := a.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Signup(ctx context.Context, creds domain.SignupCredentials) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := a.do(ctx, http.MethodPost, "/auth/signup", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the current token belongs to.
func (a *AuthAPI) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := a.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
