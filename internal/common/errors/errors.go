package commonerrors

import "errors"

var (
	ErrMissingRequiredEnv    = errors.New("missing required environment variable")
	ErrInvalidSessionSecret  = errors.New("SESSION_SECRET must be at least 32 bytes")
	ErrUnsupportedDatabase   = errors.New("unsupported database url")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)
