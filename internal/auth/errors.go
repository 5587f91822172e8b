package auth

import "errors"

var (
	// ErrInvalidCredentials is the single answer for every authentication
	// failure: unknown email, wrong password, missing, expired or revoked
	// token.  Collapsing the causes into one error (and one HTTP message)
	// prevents account enumeration and token-state probing.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken signals a registration against an email that already
	// has an identity.  Handlers translate it into HTTP 409.
	ErrEmailTaken = errors.New("email already exists")
)
