package auth

import (
	"fmt"
	"strings"
)

// DefaultCookieName is the cookie that carries the access token.
const DefaultCookieName = "access_token"

// TokenFromCookie returns the value of the named cookie in a Cookie header.
// Segments are split on "; " and the last segment with a matching key wins,
// so cookies that follow the token do not break extraction.
func TokenFromCookie(header, name string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: no cookie header", ErrMissingToken)
	}

	prefix := name + "="
	token, found := "", false
	for _, segment := range strings.Split(header, "; ") {
		segment = strings.TrimSpace(segment)
		if value, ok := strings.CutPrefix(segment, prefix); ok {
			token, found = value, true
		}
	}

	if !found {
		return "", fmt.Errorf("%w: no %s cookie", ErrMissingToken, name)
	}
	if token == "" {
		return "", fmt.Errorf("%w: empty %s cookie", ErrMissingToken, name)
	}
	return token, nil
}
