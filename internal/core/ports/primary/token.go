package primary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// TokenDecoder reads claims from a bearer token issued by the problem service.
// Tokens are not verified locally; the services remain the authority.
type TokenDecoder interface {
	DecodeTokenPayload(ctx context.Context, token string) (domain.AuthPayload, error)
	UserID(ctx context.Context, token string) (string, error)
	Expired(ctx context.Context, token string) bool
}
