package auth

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// IAuthService owns the login session shared by both service clients.
type IAuthService interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (*domain.User, error)
	Signup(ctx context.Context, creds domain.SignupCredentials) (*domain.User, error)
	// Restore resumes the stored session. A token the service rejects is discarded.
	Restore(ctx context.Context) (*domain.User, error)
	Logout() error
	CurrentUser() *domain.User
	// UserID identifies the user on the real-time channel.
	UserID(ctx context.Context) (string, error)
}
