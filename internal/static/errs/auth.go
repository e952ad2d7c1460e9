package errs

import "errors"

var InvalidCredentials = errors.New("invalid credentials")

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("not logged in")
)
