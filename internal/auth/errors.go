package auth

import "errors"

var (
	// ErrMissingToken is returned when the handshake carries no access token.
	ErrMissingToken = errors.New("missing token")
	// ErrMalformedToken is returned for tokens that cannot be decoded or lack required claims.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature is returned when the token signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpiredToken is returned for tokens past their expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrDirectory is returned when the user directory lookup itself fails.
	ErrDirectory = errors.New("user directory unavailable")
)

// Failure names why a connection was downgraded to anonymous.
type Failure string

const (
	FailureMissingToken     Failure = "missing_token"
	FailureMalformedToken   Failure = "malformed_token"
	FailureInvalidSignature Failure = "invalid_signature"
	FailureExpiredToken     Failure = "expired_token"
	FailureDirectory        Failure = "directory_error"
	FailureUnexpected       Failure = "unexpected"
)

// Classify maps an authentication error to its Failure kind.
func Classify(err error) Failure {
	switch {
	case errors.Is(err, ErrMissingToken):
		return FailureMissingToken
	case errors.Is(err, ErrMalformedToken):
		return FailureMalformedToken
	case errors.Is(err, ErrInvalidSignature):
		return FailureInvalidSignature
	case errors.Is(err, ErrExpiredToken):
		return FailureExpiredToken
	case errors.Is(err, ErrDirectory):
		return FailureDirectory
	default:
		return FailureUnexpected
	}
}
