package secondary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// AuthPort talks to the authentication endpoints of the problem service.
type AuthPort interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (*domain.AuthResponse, error)
	Signup(ctx context.Context, creds domain.SignupCredentials) (*domain.AuthResponse, error)
	Me(ctx context.Context) (*domain.User, error)
}

// TokenHolder is implemented by clients that attach a bearer token to requests.
type TokenHolder interface {
	SetToken(token string)
}

// SessionStore persists the bearer token between runs.
type SessionStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
