package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/core"
)

// ContextKeyIdentity is the gin context key for the connection identity.
const ContextKeyIdentity = "identity"

// Authenticator resolves the identity of a connection attempt from its Cookie header.
type Authenticator interface {
	Authenticate(ctx context.Context, cookieHeader string) core.Identity
}

// ConnectionGate attaches an identity to every request before the handler runs.
// It never aborts: a failing or panicking authenticator yields core.Anonymous.
func ConnectionGate(authn Authenticator, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := authenticateSafely(c.Request.Context(), authn, cookieHeader(c), logger)
		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

func authenticateSafely(ctx context.Context, authn Authenticator, header string, logger *zerolog.Logger) (identity core.Identity) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Err(fmt.Errorf("panic: %v", r)).Msg("authenticator panicked, continuing as anonymous")
			identity = core.Anonymous()
		}
	}()

	if authn == nil {
		return core.Anonymous()
	}
	return authn.Authenticate(ctx, header)
}

// cookieHeader joins every Cookie header line the client sent.
func cookieHeader(c *gin.Context) string {
	return strings.Join(c.Request.Header.Values("Cookie"), "; ")
}

// IdentityFrom returns the identity attached by ConnectionGate.
func IdentityFrom(c *gin.Context) core.Identity {
	if v, ok := c.Get(ContextKeyIdentity); ok {
		if identity, ok := v.(core.Identity); ok {
			return identity
		}
	}
	return core.Anonymous()
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}

// RecoveryMiddleware turns handler panics into 500 responses.
func RecoveryMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
		c.AbortWithStatusJSON(stdhttp.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	})
}
