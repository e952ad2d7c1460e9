package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ IAuthService = (*authService)(nil)

type authService struct {
	authPort  secondary.AuthPort
	store     secondary.SessionStore
	decoder   primary.TokenDecoder
	holders   []secondary.TokenHolder
	validator *validator.Validate
	logger    primary.Logger

	mu    sync.RWMutex
	token string
	user  *domain.User
}

// NewAuthService builds the session. Every holder receives the bearer token on login and
// loses it on logout.
func NewAuthService(
	authPort secondary.AuthPort,
	store secondary.SessionStore,
	decoder primary.TokenDecoder,
	logger primary.Logger,
	holders ...secondary.TokenHolder,
) IAuthService {
	return &authService{
		authPort:  authPort,
		store:     store,
		decoder:   decoder,
		holders:   holders,
		validator: validator.New(),
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.User, error) {
	if err := s.validator.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	resp, err := s.authPort.Login(ctx, creds)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %v", errs.InvalidCredentials, err)
		}
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *authService) Signup(ctx context.Context, creds domain.SignupCredentials) (*domain.User, error) {
	if err := s.validator.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	resp, err := s.authPort.Signup(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *authService) establish(ctx context.Context, resp *domain.AuthResponse) (*domain.User, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: empty token in response", errs.ErrInvalidToken)
	}
	s.apply(resp.Token, nil)

	user := resp.User
	if me, err := s.authPort.Me(ctx); err != nil {
		s.logger.Warn("Failed to fetch current user, using login response", "error", err)
	} else {
		user = *me
	}
	s.apply(resp.Token, &user)

	if err := s.store.Save(resp.Token); err != nil {
		s.logger.Error("Failed to persist session", "error", err)
	}
	s.logger.Info("Logged in", "userId", user.ID, "email", user.Email)
	return &user, nil
}

func (s *authService) Restore(ctx context.Context) (*domain.User, error) {
	token, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if s.decoder.Expired(ctx, token) {
		s.logger.Info("Stored session expired")
		s.discard()
		return nil, fmt.Errorf("%w: session expired", errs.ErrInvalidToken)
	}

	s.apply(token, nil)
	user, err := s.authPort.Me(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			s.logger.Warn("Stored session rejected", "error", err)
			s.discard()
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
		}
		return nil, err
	}
	s.apply(token, user)
	return user, nil
}

func (s *authService) Logout() error {
	s.discard()
	s.logger.Info("Logged out")
	return nil
}

func (s *authService) discard() {
	s.apply("", nil)
	if err := s.store.Clear(); err != nil {
		s.logger.Error("Failed to clear session", "error", err)
	}
}

func (s *authService) apply(token string, user *domain.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	for _, h := range s.holders {
		h.SetToken(token)
	}
}

func (s *authService) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *authService) UserID(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, user := s.token, s.user
	s.mu.RUnlock()

	if token == "" {
		return "", errs.ErrNoSession
	}
	if user != nil && user.ID != "" {
		return user.ID, nil
	}
	return s.decoder.UserID(ctx, token)
}
