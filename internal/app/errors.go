package app

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidCredential   = errors.New("invalid email or password")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrNotFound            = errors.New("resource not found")
	ErrForbidden           = errors.New("access denied")
	ErrUpstreamUnavailable = errors.New("ml backend unavailable")
)
