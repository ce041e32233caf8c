package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/core"
)

// IdentityResolver turns a verified subject into an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID int64) (core.Identity, error)
}

// Authenticator validates the access token found in a Cookie header.
type Authenticator struct {
	jwt        *JWTConfig
	cookieName string
	resolver   IdentityResolver
	log        *zerolog.Logger
}

// NewAuthenticator builds an authenticator. An empty cookieName uses DefaultCookieName.
func NewAuthenticator(cfg *JWTConfig, cookieName string, resolver IdentityResolver, logger *zerolog.Logger) *Authenticator {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Authenticator{
		jwt:        cfg,
		cookieName: cookieName,
		resolver:   resolver,
		log:        logger,
	}
}

// Verify extracts and validates the token and resolves its subject.
func (a *Authenticator) Verify(ctx context.Context, cookieHeader string) (core.Identity, error) {
	token, err := TokenFromCookie(cookieHeader, a.cookieName)
	if err != nil {
		return core.Anonymous(), err
	}

	claims, err := ValidateToken(a.jwt, token)
	if err != nil {
		return core.Anonymous(), err
	}

	return a.resolver.Resolve(ctx, claims.UserID)
}

// Authenticate is Verify with every failure downgraded to core.Anonymous.
// It never panics and never returns an error.
func (a *Authenticator) Authenticate(ctx context.Context, cookieHeader string) (identity core.Identity) {
	defer func() {
		if r := recover(); r != nil {
			identity = a.fallback(fmt.Errorf("panic: %v", r))
		}
	}()

	identity, err := a.Verify(ctx, cookieHeader)
	if err != nil {
		return a.fallback(err)
	}
	return identity
}

func (a *Authenticator) fallback(err error) core.Identity {
	failure := Classify(err)
	switch failure {
	case FailureMissingToken:
		a.log.Debug().Str("reason", string(failure)).Msg("no access token, continuing as anonymous")
		return core.Anonymous()
	case FailureMalformedToken, FailureInvalidSignature, FailureExpiredToken:
		a.log.Debug().Err(err).Str("reason", string(failure)).Msg("rejected access token, continuing as anonymous")
		return core.Anonymous()
	case FailureDirectory:
		a.log.Warn().Err(err).Str("reason", string(failure)).Msg("user lookup failed, continuing as anonymous")
		return core.Anonymous()
	default:
		a.log.Error().Err(err).Str("reason", string(failure)).Msg("unexpected authentication error, continuing as anonymous")
		return core.Anonymous()
	}
}
