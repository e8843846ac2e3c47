package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrAccountLocked      = errors.New("auth: account locked")
	ErrAccountExpired     = errors.New("auth: account expired")
	ErrCredentialsExpired = errors.New("auth: credentials expired")
	ErrUnknownRole        = errors.New("auth: none of the requested roles exist")
	ErrInvalidInput       = errors.New("auth: invalid input")
)

// Token verification failures. ErrInvalidToken covers structurally broken
// tokens; the others name the exact claim or signature check that failed.
var (
	ErrInvalidToken      = errors.New("auth: invalid token")
	ErrInvalidSignature  = errors.New("auth: invalid token signature")
	ErrTokenExpired      = errors.New("auth: token expired")
	ErrTokenNotYetValid  = errors.New("auth: token not yet valid")
	ErrIssuerMismatch    = errors.New("auth: token issuer mismatch")
)

// TokenInvalid reports whether err is any of the token verification failures.
func TokenInvalid(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenNotYetValid) ||
		errors.Is(err, ErrIssuerMismatch)
}
