package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Issuer = "chatrelay"

	token, err := GenerateToken(cfg, 42, TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Issuer != "chatrelay" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidateTokenFailures(t *testing.T) {
	cfg := testJWTConfig()
	future := time.Now().Add(time.Minute).Unix()
	past := time.Now().Add(-time.Minute).Unix()

	refresh, err := GenerateToken(cfg, 1, TokenTypeRefresh, time.Minute)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}
	wrongIssuer, err := GenerateToken(&JWTConfig{Secret: cfg.Secret, Issuer: "someone-else"}, 1, TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	issuerCfg := *cfg
	issuerCfg.Issuer = "chatrelay"

	tests := []struct {
		name  string
		cfg   *JWTConfig
		token string
		want  error
	}{
		{
			name:  "wrong secret",
			token: signClaims(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": 1, "exp": future}),
			want:  ErrInvalidSignature,
		},
		{
			name:  "expired",
			token: signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": 1, "exp": past}),
			want:  ErrExpiredToken,
		},
		{
			name:  "other algorithm",
			token: signClaims(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"user_id": 1, "exp": future}),
			want:  ErrInvalidSignature,
		},
		{
			name:  "unsigned",
			token: signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"user_id": 1, "exp": future}),
			want:  ErrInvalidSignature,
		},
		{
			name:  "garbage",
			token: "not.a.token",
			want:  ErrMalformedToken,
		},
		{
			name:  "missing expiry",
			token: signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": 1}),
			want:  ErrMalformedToken,
		},
		{
			name:  "missing user id",
			token: signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": future}),
			want:  ErrMalformedToken,
		},
		{
			name:  "string user id",
			token: signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": "1", "exp": future}),
			want:  ErrMalformedToken,
		},
		{
			name:  "refresh token",
			token: refresh,
			want:  ErrMalformedToken,
		},
		{
			name:  "wrong issuer",
			cfg:   &issuerCfg,
			token: wrongIssuer,
			want:  ErrMalformedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cfg
			if c == nil {
				c = cfg
			}
			if _, err := ValidateToken(c, tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Failure
	}{
		{ErrMissingToken, FailureMissingToken},
		{ErrMalformedToken, FailureMalformedToken},
		{ErrInvalidSignature, FailureInvalidSignature},
		{ErrExpiredToken, FailureExpiredToken},
		{ErrDirectory, FailureDirectory},
		{errors.New("boom"), FailureUnexpected},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
