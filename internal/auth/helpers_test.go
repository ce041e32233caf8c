package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/store"
	"github.com/vovakirdan/chatrelay/internal/store/sqlite"
)

const testSecret = "test-secret-change-me"

func testJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:     []byte(testSecret),
		AccessTTL:  5 * time.Minute,
		RefreshTTL: time.Hour,
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// signClaims signs arbitrary claims, for building tokens the service would never issue.
func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

type resolverFunc func(ctx context.Context, userID int64) (core.Identity, error)

func (f resolverFunc) Resolve(ctx context.Context, userID int64) (core.Identity, error) {
	return f(ctx, userID)
}
