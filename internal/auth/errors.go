package auth

import "errors"

// Token errors. Each is a distinct, reportable condition.
var (
	// ErrTokenExpired indicates the token's exp claim is in the past
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid indicates a bad signature, malformed token, missing claims or wrong token type
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrTokenRevoked indicates the refresh token has been blacklisted
	ErrTokenRevoked = errors.New("token has been revoked")
)
