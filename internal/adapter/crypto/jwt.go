package crypto

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ primary.TokenDecoder = (*TokenDecoder)(nil)

// sessionClaims are the claims the problem service puts into a session token.
type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenDecoder reads session token claims without verifying the signature. The client has
// no access to the signing secret.
type TokenDecoder struct {
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenDecoder() *TokenDecoder {
	return &TokenDecoder{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

func (d *TokenDecoder) DecodeTokenPayload(ctx context.Context, token string) (domain.AuthPayload, error) {
	if token == "" {
		return domain.AuthPayload{}, errs.ErrInvalidToken
	}
	claims := &sessionClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return domain.AuthPayload{}, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}

	payload := domain.AuthPayload{UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return payload, nil
}

// UserID returns the userId claim used to authenticate the real-time channel.
func (d *TokenDecoder) UserID(ctx context.Context, token string) (string, error) {
	payload, err := d.DecodeTokenPayload(ctx, token)
	if err != nil {
		return "", err
	}
	if payload.UserID == "" {
		return "", fmt.Errorf("%w: missing userId claim", errs.ErrInvalidToken)
	}
	return payload.UserID, nil
}

// Expired reports whether the token carries an exp claim in the past.
func (d *TokenDecoder) Expired(ctx context.Context, token string) bool {
	payload, err := d.DecodeTokenPayload(ctx, token)
	if err != nil {
		return true
	}
	return payload.ExpiresAt != 0 && d.now().Unix() >= payload.ExpiresAt
}
