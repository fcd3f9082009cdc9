package auth

import "errors"

var (
	// ErrTokenInvalid is returned for a token that fails signature, expiry,
	// issuer or subject checks.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrMissingSource is returned when minting a token without a source.
	ErrMissingSource = errors.New("auth: source is required")

	// ErrNoSecret is returned when minting a token without a secret.
	ErrNoSecret = errors.New("auth: signing secret is required")
)
